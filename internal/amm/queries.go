package amm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"ammcore/internal/model"
	"ammcore/internal/quote"
)

// FeeInfo describes the swap fee and who receives it.
type FeeInfo struct {
	FeeBps    uint64
	BpsDenom  uint64
	Recipient common.Address
	// RecipientSet is false until the pool is initialized.
	RecipientSet bool
}

// Position is an account's shares and its proportional claim on the reserves.
type Position struct {
	Shares *uint256.Int
	X      *uint256.Int
	Y      *uint256.Int
}

// Metadata identifies the pool.
type Metadata struct {
	Name     string
	Version  string
	FeeBps   uint64
	BpsDenom uint64
	TokenX   common.Address
	TokenY   common.Address
	Custody  common.Address
}

// Metadata returns static pool information.
func (e *Engine) Metadata() Metadata {
	return Metadata{
		Name:     e.cfg.Name,
		Version:  Version,
		FeeBps:   quote.FeeBps,
		BpsDenom: quote.BpsDenom,
		TokenX:   e.cfg.TokenX,
		TokenY:   e.cfg.TokenY,
		Custody:  e.cfg.Custody,
	}
}

// Initialized reports whether the pool has been initialized.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Pool().Initialized()
}

// Reserves returns the current reserves.
func (e *Engine) Reserves() (x, y *uint256.Int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool := e.ledger.Pool()
	return new(uint256.Int).Set(&pool.ReserveX), new(uint256.Int).Set(&pool.ReserveY)
}

// FeeInfo returns the fee rate and recipient.
func (e *Engine) FeeInfo() FeeInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool := e.ledger.Pool()
	recipient, ok := pool.FeeRecipient()
	return FeeInfo{
		FeeBps:       quote.FeeBps,
		BpsDenom:     quote.BpsDenom,
		Recipient:    recipient,
		RecipientSet: ok,
	}
}

// CumulativeFees returns the fees recorded on each token since initialization.
func (e *Engine) CumulativeFees() (x, y *uint256.Int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool := e.ledger.Pool()
	return new(uint256.Int).Set(&pool.TotalFeesX), new(uint256.Int).Set(&pool.TotalFeesY)
}

// TotalShares returns the outstanding share supply.
func (e *Engine) TotalShares() *uint256.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	pool := e.ledger.Pool()
	return new(uint256.Int).Set(&pool.TotalShares)
}

// ShareBalance returns the shares held by account.
func (e *Engine) ShareBalance(account common.Address) *uint256.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.ShareBalance(account)
}

// Holders returns every account holding shares.
func (e *Engine) Holders() []common.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Holders()
}

// Position returns account's shares and what redeeming them would pay out now.
func (e *Engine) Position(account common.Address) Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := Position{
		Shares: e.ledger.ShareBalance(account),
		X:      new(uint256.Int),
		Y:      new(uint256.Int),
	}
	if pos.Shares.IsZero() {
		return pos
	}
	pool := e.ledger.Pool()
	x, y, err := quote.RemoveLiquidity(pos.Shares, &pool.ReserveX, &pool.ReserveY, &pool.TotalShares)
	if err == nil {
		pos.X, pos.Y = x, y
	}
	return pos
}

// QuoteForward prices selling dx of token X at the current reserves.
func (e *Engine) QuoteForward(dx *uint256.Int) (SwapResult, error) {
	return e.quoteSwap(XToY, dx)
}

// QuoteBackward prices selling dy of token Y at the current reserves.
func (e *Engine) QuoteBackward(dy *uint256.Int) (SwapResult, error) {
	return e.quoteSwap(YToX, dy)
}

func (e *Engine) quoteSwap(dir Direction, amount *uint256.Int) (SwapResult, error) {
	if err := checkAmount("amount", amount); err != nil {
		return SwapResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	pool := e.ledger.Pool()
	reserveIn, reserveOut := &pool.ReserveX, &pool.ReserveY
	if dir == YToX {
		reserveIn, reserveOut = reserveOut, reserveIn
	}
	q, err := quote.Forward(amount, reserveIn, reserveOut)
	if err != nil {
		return SwapResult{}, fromQuote(err)
	}
	return SwapResult{AmountIn: q.AmountIn, AmountOut: q.AmountOut, Fee: q.Fee}, nil
}

// QuoteAddLiquidity returns the shares a deposit would mint and the amounts it
// would consume.
func (e *Engine) QuoteAddLiquidity(dx, dy *uint256.Int) (LiquidityResult, error) {
	if err := checkAmount("amount x", dx); err != nil {
		return LiquidityResult{}, err
	}
	if err := checkAmount("amount y", dy); err != nil {
		return LiquidityResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	pool := e.ledger.Pool()
	d, err := quote.AddLiquidity(dx, dy, &pool.ReserveX, &pool.ReserveY, &pool.TotalShares)
	if err != nil {
		return LiquidityResult{}, fromQuote(err)
	}
	return LiquidityResult{Shares: d.Shares, X: d.X, Y: d.Y}, nil
}

// QuoteRemoveLiquidity returns what redeeming shares would pay out.
func (e *Engine) QuoteRemoveLiquidity(shares *uint256.Int) (LiquidityResult, error) {
	if err := checkAmount("shares", shares); err != nil {
		return LiquidityResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	pool := e.ledger.Pool()
	x, y, err := quote.RemoveLiquidity(shares, &pool.ReserveX, &pool.ReserveY, &pool.TotalShares)
	if err != nil {
		return LiquidityResult{}, fromQuote(err)
	}
	return LiquidityResult{Shares: new(uint256.Int).Set(shares), X: x, Y: y}, nil
}

// Export writes the pool identity, ledger and commit sequence into st.
func (e *Engine) Export(st *model.PoolState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.Export(st)
	st.Name = e.cfg.Name
	st.TokenX = e.cfg.TokenX.Hex()
	st.TokenY = e.cfg.TokenY.Hex()
	st.Custody = e.cfg.Custody.Hex()
	st.Sequence = e.cfg.Sequence
}
