// Package quote implements the pool's pricing math on fixed-width unsigned
// integers. All division truncates toward zero and nothing here mutates state.
package quote

import (
	"errors"

	"github.com/holiman/uint256"
)

const (
	// FeeBps is the swap fee charged on the input side, in basis points.
	FeeBps = 30
	// BpsDenom represents 100% in basis points.
	BpsDenom = 10000
)

var (
	feeBps   = uint256.NewInt(FeeBps)
	bpsDenom = uint256.NewInt(BpsDenom)

	// MaxAmount is the largest amount accepted as an operation input (2^128 - 1).
	MaxAmount = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)
)

var (
	// ErrZeroAmount is returned when an input amount is zero.
	ErrZeroAmount = errors.New("amount must be greater than zero")
	// ErrZeroReserves is returned when either reserve is empty.
	ErrZeroReserves = errors.New("reserves must be greater than zero")
	// ErrInsufficientLiquidity is returned when a swap would drain the output reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for swap")
	// ErrNoShares is returned when a redemption is quoted against an empty share supply.
	ErrNoShares = errors.New("no shares outstanding")
	// ErrOverflow is returned when an intermediate product does not fit in 256 bits.
	ErrOverflow = errors.New("arithmetic overflow")
)

// Swap is the result of a directional swap quote.
type Swap struct {
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	Fee       *uint256.Int
	// NetIn is the part of AmountIn that enters the pool reserves.
	NetIn *uint256.Int
}

// Deposit is the result of a liquidity deposit quote. X and Y are the amounts
// actually consumed, which may be smaller than the requested ones.
type Deposit struct {
	Shares *uint256.Int
	X      *uint256.Int
	Y      *uint256.Int
}

// Fee returns floor(amount * FeeBps / BpsDenom).
func Fee(amount *uint256.Int) (*uint256.Int, error) {
	fee, overflow := new(uint256.Int).MulOverflow(amount, feeBps)
	if overflow {
		return nil, ErrOverflow
	}
	return fee.Div(fee, bpsDenom), nil
}

// Forward quotes a swap of amountIn against (reserveIn, reserveOut). It serves
// both directions: the Y->X quote is Forward with the reserves swapped.
func Forward(amountIn, reserveIn, reserveOut *uint256.Int) (Swap, error) {
	if amountIn.IsZero() {
		return Swap{}, ErrZeroAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return Swap{}, ErrZeroReserves
	}

	fee, err := Fee(amountIn)
	if err != nil {
		return Swap{}, err
	}
	netIn := new(uint256.Int).Sub(amountIn, fee)

	numerator, overflow := new(uint256.Int).MulOverflow(reserveOut, netIn)
	if overflow {
		return Swap{}, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).AddOverflow(reserveIn, netIn)
	if overflow {
		return Swap{}, ErrOverflow
	}
	out := numerator.Div(numerator, denominator)
	if !out.Lt(reserveOut) {
		return Swap{}, ErrInsufficientLiquidity
	}

	return Swap{
		AmountIn:  new(uint256.Int).Set(amountIn),
		AmountOut: out,
		Fee:       fee,
		NetIn:     netIn,
	}, nil
}

// AddLiquidity quotes a deposit of (dx, dy). The first deposit sets the price
// and mints ISqrt(dx*dy) shares; later deposits mint against the tighter side
// and consume only the amounts backing those shares.
func AddLiquidity(dx, dy, reserveX, reserveY, totalShares *uint256.Int) (Deposit, error) {
	if totalShares.IsZero() {
		product, overflow := new(uint256.Int).MulOverflow(dx, dy)
		if overflow {
			return Deposit{}, ErrOverflow
		}
		return Deposit{
			Shares: ISqrt(product),
			X:      new(uint256.Int).Set(dx),
			Y:      new(uint256.Int).Set(dy),
		}, nil
	}
	if reserveX.IsZero() || reserveY.IsZero() {
		return Deposit{}, ErrZeroReserves
	}

	fromX, err := mulDiv(dx, totalShares, reserveX)
	if err != nil {
		return Deposit{}, err
	}
	fromY, err := mulDiv(dy, totalShares, reserveY)
	if err != nil {
		return Deposit{}, err
	}
	shares := fromX
	if fromY.Lt(fromX) {
		shares = fromY
	}

	optimalX, err := mulDiv(shares, reserveX, totalShares)
	if err != nil {
		return Deposit{}, err
	}
	optimalY, err := mulDiv(shares, reserveY, totalShares)
	if err != nil {
		return Deposit{}, err
	}

	return Deposit{Shares: shares, X: optimalX, Y: optimalY}, nil
}

// RemoveLiquidity quotes the proportional redemption of shares. No fee applies.
func RemoveLiquidity(shares, reserveX, reserveY, totalShares *uint256.Int) (x, y *uint256.Int, err error) {
	if totalShares.IsZero() {
		return nil, nil, ErrNoShares
	}
	if shares.IsZero() {
		return nil, nil, ErrZeroAmount
	}
	if x, err = mulDiv(shares, reserveX, totalShares); err != nil {
		return nil, nil, err
	}
	if y, err = mulDiv(shares, reserveY, totalShares); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// ISqrt approximates the integer square root of n with a fixed number of
// Newton steps seeded at n/2. The result is exact for small n only; the step
// count and seed are part of the share issuance rules and must not change.
func ISqrt(n *uint256.Int) *uint256.Int {
	if n.LtUint64(2) {
		return new(uint256.Int).Set(n)
	}
	if n.LtUint64(4) {
		return uint256.NewInt(1)
	}

	x := new(uint256.Int).Rsh(n, 1)
	q := new(uint256.Int)
	for i := 0; i < 7; i++ {
		q.Div(n, x)
		x.Add(x, q)
		x.Rsh(x, 1)
	}

	sq, overflow := new(uint256.Int).MulOverflow(x, x)
	if !overflow && !sq.Gt(n) {
		return x
	}
	return x.SubUint64(x, 1)
}

// mulDiv returns floor(a * b / c); c must be non-zero.
func mulDiv(a, b, c *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return product.Div(product, c), nil
}
