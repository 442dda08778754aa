// Package events describes the events a pool emits, and encodes and decodes
// them as ABI logs for the journal.
package events

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Event names.
const (
	NameInitialized      = "Initialized"
	NameSwap             = "Swap"
	NameLiquidityAdded   = "LiquidityAdded"
	NameLiquidityRemoved = "LiquidityRemoved"
)

// Event is a single pool event. Swap events use Sender, Recipient, XToY,
// AmountIn, AmountOut and Fee. Liquidity events use Sender as the provider
// with Shares, AmountX and AmountY.
type Event struct {
	Name      string
	Sender    common.Address
	Recipient common.Address
	XToY      bool
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	Fee       *uint256.Int
	Shares    *uint256.Int
	AmountX   *uint256.Int
	AmountY   *uint256.Int
}

// Receipt groups the events of one committed unit of work.
type Receipt struct {
	Seq    uint64
	Height uint64
	Op     string
	Events []Event
}

// NewSwap builds a Swap event.
func NewSwap(sender, recipient common.Address, xToY bool, in, out, fee *uint256.Int) Event {
	return Event{
		Name:      NameSwap,
		Sender:    sender,
		Recipient: recipient,
		XToY:      xToY,
		AmountIn:  new(uint256.Int).Set(in),
		AmountOut: new(uint256.Int).Set(out),
		Fee:       new(uint256.Int).Set(fee),
	}
}

// NewLiquidity builds an Initialized, LiquidityAdded or LiquidityRemoved event.
func NewLiquidity(name string, provider common.Address, shares, x, y *uint256.Int) Event {
	return Event{
		Name:    name,
		Sender:  provider,
		Shares:  new(uint256.Int).Set(shares),
		AmountX: new(uint256.Int).Set(x),
		AmountY: new(uint256.Int).Set(y),
	}
}
