package amm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"ammcore/internal/events"
	"ammcore/internal/quote"
	"ammcore/internal/transfer"
)

// LiquidityResult reports the shares and token amounts a liquidity operation
// actually moved.
type LiquidityResult struct {
	Shares *uint256.Int
	X      *uint256.Int
	Y      *uint256.Int
}

// AddRequest deposits up to (AmountX, AmountY) for at least MinShares.
type AddRequest struct {
	AmountX   *uint256.Int
	AmountY   *uint256.Int
	MinShares *uint256.Int
}

// RemoveRequest redeems Shares for at least (MinX, MinY).
type RemoveRequest struct {
	Shares *uint256.Int
	MinX   *uint256.Int
	MinY   *uint256.Int
}

// Initialize makes the first deposit, sets the price, and makes caller the
// fee recipient.
func (e *Engine) Initialize(ctx context.Context, caller common.Address, amountX, amountY *uint256.Int) (LiquidityResult, error) {
	var res LiquidityResult
	err := e.execute(ctx, "initialize", 1, func(u *unit) error {
		var err error
		res, err = e.initialize(u, caller, amountX, amountY)
		return err
	})
	if err != nil {
		return LiquidityResult{}, err
	}
	return res, nil
}

// AddLiquidity deposits both tokens at the current price.
func (e *Engine) AddLiquidity(ctx context.Context, caller common.Address, req AddRequest) (LiquidityResult, error) {
	var res LiquidityResult
	err := e.execute(ctx, "add-liquidity", 1, func(u *unit) error {
		var err error
		res, err = e.addLiquidity(u, caller, req)
		return err
	})
	if err != nil {
		return LiquidityResult{}, err
	}
	return res, nil
}

// RemoveLiquidity burns shares for a proportional part of both reserves.
func (e *Engine) RemoveLiquidity(ctx context.Context, caller common.Address, req RemoveRequest) (LiquidityResult, error) {
	var res LiquidityResult
	err := e.execute(ctx, "remove-liquidity", 1, func(u *unit) error {
		var err error
		res, err = e.removeLiquidity(u, caller, req)
		return err
	})
	if err != nil {
		return LiquidityResult{}, err
	}
	return res, nil
}

func (e *Engine) initialize(u *unit, caller common.Address, amountX, amountY *uint256.Int) (LiquidityResult, error) {
	if e.ledger.Pool().Initialized() {
		return LiquidityResult{}, ErrAlreadyInitialized
	}
	if err := checkAmount("amount x", amountX); err != nil {
		return LiquidityResult{}, err
	}
	if err := checkAmount("amount y", amountY); err != nil {
		return LiquidityResult{}, err
	}

	d, err := quote.AddLiquidity(amountX, amountY, new(uint256.Int), new(uint256.Int), new(uint256.Int))
	if err != nil {
		return LiquidityResult{}, fromQuote(err)
	}
	if !d.Shares.Gt(&e.minLiq) {
		return LiquidityResult{}, fmt.Errorf("%w: %s shares, need more than %s", ErrBelowMinLiquidity, d.Shares.Dec(), e.minLiq.Dec())
	}

	if err := e.ledger.SetFeeRecipient(caller); err != nil {
		return LiquidityResult{}, fmt.Errorf("%w: %w", ErrAlreadyInitialized, err)
	}
	if err := e.pull(u, caller, d.X, d.Y, "initialize"); err != nil {
		return LiquidityResult{}, err
	}
	e.ledger.Deposit(d.X, d.Y)
	e.ledger.Mint(caller, d.Shares)

	u.emit(events.NewLiquidity(events.NameInitialized, caller, d.Shares, d.X, d.Y))
	return LiquidityResult{Shares: d.Shares, X: d.X, Y: d.Y}, nil
}

func (e *Engine) addLiquidity(u *unit, caller common.Address, req AddRequest) (LiquidityResult, error) {
	pool := e.ledger.Pool()
	if !pool.Initialized() {
		return LiquidityResult{}, ErrNotInitialized
	}
	if err := checkAmount("amount x", req.AmountX); err != nil {
		return LiquidityResult{}, err
	}
	if err := checkAmount("amount y", req.AmountY); err != nil {
		return LiquidityResult{}, err
	}

	d, err := quote.AddLiquidity(req.AmountX, req.AmountY, &pool.ReserveX, &pool.ReserveY, &pool.TotalShares)
	if err != nil {
		return LiquidityResult{}, fromQuote(err)
	}
	if req.MinShares != nil && d.Shares.Lt(req.MinShares) {
		return LiquidityResult{}, fmt.Errorf("%w: %s shares below minimum %s", ErrSlippageExceeded, d.Shares.Dec(), req.MinShares.Dec())
	}
	if d.Shares.IsZero() {
		return LiquidityResult{}, ErrZeroShares
	}

	if err := e.pull(u, caller, d.X, d.Y, "add liquidity"); err != nil {
		return LiquidityResult{}, err
	}
	e.ledger.Deposit(d.X, d.Y)
	e.ledger.Mint(caller, d.Shares)

	u.emit(events.NewLiquidity(events.NameLiquidityAdded, caller, d.Shares, d.X, d.Y))
	return LiquidityResult{Shares: d.Shares, X: d.X, Y: d.Y}, nil
}

func (e *Engine) removeLiquidity(u *unit, caller common.Address, req RemoveRequest) (LiquidityResult, error) {
	pool := e.ledger.Pool()
	if !pool.Initialized() {
		return LiquidityResult{}, ErrNotInitialized
	}
	if err := checkAmount("shares", req.Shares); err != nil {
		return LiquidityResult{}, err
	}
	if bal := e.ledger.ShareBalance(caller); bal.Lt(req.Shares) {
		return LiquidityResult{}, fmt.Errorf("%w: holds %s, redeeming %s", ErrInsufficientBalance, bal.Dec(), req.Shares.Dec())
	}

	x, y, err := quote.RemoveLiquidity(req.Shares, &pool.ReserveX, &pool.ReserveY, &pool.TotalShares)
	if err != nil {
		return LiquidityResult{}, fromQuote(err)
	}
	if (req.MinX != nil && x.Lt(req.MinX)) || (req.MinY != nil && y.Lt(req.MinY)) {
		return LiquidityResult{}, fmt.Errorf("%w: out (%s, %s)", ErrSlippageExceeded, x.Dec(), y.Dec())
	}

	if err := e.move(u, ErrTransferOutFailed, transfer.Transfer{
		Token: e.cfg.TokenX, Amount: x, From: e.cfg.Custody, To: caller, Memo: "remove liquidity x",
	}); err != nil {
		return LiquidityResult{}, err
	}
	if err := e.move(u, ErrTransferOutFailed, transfer.Transfer{
		Token: e.cfg.TokenY, Amount: y, From: e.cfg.Custody, To: caller, Memo: "remove liquidity y",
	}); err != nil {
		return LiquidityResult{}, err
	}
	if err := e.ledger.Withdraw(x, y); err != nil {
		return LiquidityResult{}, fmt.Errorf("commit remove: %w", err)
	}
	if err := e.ledger.Burn(caller, req.Shares); err != nil {
		return LiquidityResult{}, fmt.Errorf("%w: %w", ErrInsufficientBalance, err)
	}

	shares := new(uint256.Int).Set(req.Shares)
	u.emit(events.NewLiquidity(events.NameLiquidityRemoved, caller, shares, x, y))
	return LiquidityResult{Shares: shares, X: x, Y: y}, nil
}

// pull moves a deposit from caller into custody.
func (e *Engine) pull(u *unit, caller common.Address, x, y *uint256.Int, memo string) error {
	if err := e.move(u, ErrTransferInFailed, transfer.Transfer{
		Token: e.cfg.TokenX, Amount: x, From: caller, To: e.cfg.Custody, Memo: memo + " x",
	}); err != nil {
		return err
	}
	return e.move(u, ErrTransferInFailed, transfer.Transfer{
		Token: e.cfg.TokenY, Amount: y, From: caller, To: e.cfg.Custody, Memo: memo + " y",
	})
}
