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

// Direction selects the input side of a swap.
type Direction int

const (
	// XToY sells token X for token Y.
	XToY Direction = iota
	// YToX sells token Y for token X.
	YToX
)

func (d Direction) String() string {
	if d == YToX {
		return "y-to-x"
	}
	return "x-to-y"
}

// SwapRequest is a single swap item. A zero Recipient pays out to the caller.
type SwapRequest struct {
	Amount    *uint256.Int
	MinOut    *uint256.Int
	Recipient common.Address
	Deadline  uint64
}

// SwapResult reports what a committed swap moved.
type SwapResult struct {
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	Fee       *uint256.Int
	Recipient common.Address
}

// SwapForward sells req.Amount of token X for token Y.
func (e *Engine) SwapForward(ctx context.Context, caller common.Address, req SwapRequest) (SwapResult, error) {
	return e.swapOne(ctx, "swap-forward", caller, XToY, req)
}

// SwapBackward sells req.Amount of token Y for token X.
func (e *Engine) SwapBackward(ctx context.Context, caller common.Address, req SwapRequest) (SwapResult, error) {
	return e.swapOne(ctx, "swap-backward", caller, YToX, req)
}

func (e *Engine) swapOne(ctx context.Context, op string, caller common.Address, dir Direction, req SwapRequest) (SwapResult, error) {
	var res SwapResult
	err := e.execute(ctx, op, 1, func(u *unit) error {
		var err error
		res, err = e.swap(u, caller, dir, req)
		return err
	})
	if err != nil {
		return SwapResult{}, err
	}
	return res, nil
}

// swap applies one swap inside u. Preconditions are checked in a fixed order
// and the ledger is only touched after every transfer has succeeded.
func (e *Engine) swap(u *unit, caller common.Address, dir Direction, req SwapRequest) (SwapResult, error) {
	if u.height > req.Deadline {
		return SwapResult{}, fmt.Errorf("%w: height %d past deadline %d", ErrDeadlineExpired, u.height, req.Deadline)
	}
	if err := checkAmount("amount", req.Amount); err != nil {
		return SwapResult{}, err
	}

	pool := e.ledger.Pool()
	reserveIn, reserveOut := &pool.ReserveX, &pool.ReserveY
	tokenIn, tokenOut := e.cfg.TokenX, e.cfg.TokenY
	if dir == YToX {
		reserveIn, reserveOut = reserveOut, reserveIn
		tokenIn, tokenOut = tokenOut, tokenIn
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return SwapResult{}, ErrZeroReserves
	}
	feeRecipient, ok := pool.FeeRecipient()
	if !ok {
		return SwapResult{}, ErrNotInitialized
	}

	q, err := quote.Forward(req.Amount, reserveIn, reserveOut)
	if err != nil {
		return SwapResult{}, fromQuote(err)
	}
	if req.MinOut != nil && q.AmountOut.Lt(req.MinOut) {
		return SwapResult{}, fmt.Errorf("%w: out %s below minimum %s", ErrSlippageExceeded, q.AmountOut.Dec(), req.MinOut.Dec())
	}
	if !q.AmountOut.Lt(reserveOut) {
		return SwapResult{}, ErrInsufficientLiquidity
	}

	recipient := req.Recipient
	if recipient == (common.Address{}) {
		recipient = caller
	}

	if caller != feeRecipient {
		if err := e.move(u, ErrFeeTransferFailed, transfer.Transfer{
			Token: tokenIn, Amount: q.Fee, From: caller, To: feeRecipient, Memo: "swap fee",
		}); err != nil {
			return SwapResult{}, err
		}
	}
	if err := e.move(u, ErrTransferInFailed, transfer.Transfer{
		Token: tokenIn, Amount: q.NetIn, From: caller, To: e.cfg.Custody, Memo: "swap in",
	}); err != nil {
		return SwapResult{}, err
	}
	if err := e.move(u, ErrTransferOutFailed, transfer.Transfer{
		Token: tokenOut, Amount: q.AmountOut, From: e.cfg.Custody, To: recipient, Memo: "swap out",
	}); err != nil {
		return SwapResult{}, err
	}

	zero := new(uint256.Int)
	if dir == XToY {
		e.ledger.Deposit(q.NetIn, zero)
		err = e.ledger.Withdraw(zero, q.AmountOut)
		e.ledger.RecordFees(q.Fee, zero)
	} else {
		e.ledger.Deposit(zero, q.NetIn)
		err = e.ledger.Withdraw(q.AmountOut, zero)
		e.ledger.RecordFees(zero, q.Fee)
	}
	if err != nil {
		return SwapResult{}, fmt.Errorf("commit swap: %w", err)
	}

	u.emit(events.NewSwap(caller, recipient, dir == XToY, q.AmountIn, q.AmountOut, q.Fee))
	return SwapResult{
		AmountIn:  q.AmountIn,
		AmountOut: q.AmountOut,
		Fee:       q.Fee,
		Recipient: recipient,
	}, nil
}
