package stats

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"ammcore/internal/events"
	"ammcore/internal/model"
)

// Accumulator holds aggregate values for one block-height window.
type Accumulator struct {
	PoolMeta     model.PoolMeta
	WindowStart  uint64
	WindowEnd    uint64
	SwapCount    uint64
	VolumeX      *uint256.Int
	VolumeY      *uint256.Int
	FeeX         *uint256.Int
	FeeY         *uint256.Int
	AddCount     uint64
	RemoveCount  uint64
	SharesMinted *uint256.Int
	SharesBurned *uint256.Int
}

func NewAccumulator(meta model.PoolMeta, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		PoolMeta:     meta,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		VolumeX:      new(uint256.Int),
		VolumeY:      new(uint256.Int),
		FeeX:         new(uint256.Int),
		FeeY:         new(uint256.Int),
		SharesMinted: new(uint256.Int),
		SharesBurned: new(uint256.Int),
	}
}

func (a *Accumulator) AddEvent(record model.TypedEventRecord) error {
	switch record.EventName {
	case events.NameSwap:
		var swap model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		return a.applySwap(swap)
	case events.NameInitialized, events.NameLiquidityAdded, events.NameLiquidityRemoved:
		var liq model.LiquidityEventData
		if err := json.Unmarshal(record.Decoded, &liq); err != nil {
			return fmt.Errorf("decode %s: %w", record.EventName, err)
		}
		return a.applyLiquidity(record.EventName, liq)
	default:
		return nil
	}
}

func (a *Accumulator) applySwap(swap model.SwapEventData) error {
	in, err := parseAmount(swap.AmountIn)
	if err != nil {
		return err
	}
	out, err := parseAmount(swap.AmountOut)
	if err != nil {
		return err
	}
	fee, err := parseAmount(swap.Fee)
	if err != nil {
		return err
	}

	if swap.XToY {
		a.VolumeX.Add(a.VolumeX, in)
		a.VolumeY.Add(a.VolumeY, out)
		a.FeeX.Add(a.FeeX, fee)
	} else {
		a.VolumeY.Add(a.VolumeY, in)
		a.VolumeX.Add(a.VolumeX, out)
		a.FeeY.Add(a.FeeY, fee)
	}
	a.SwapCount++
	return nil
}

func (a *Accumulator) applyLiquidity(name string, liq model.LiquidityEventData) error {
	shares, err := parseAmount(liq.Shares)
	if err != nil {
		return err
	}
	if name == events.NameLiquidityRemoved {
		a.RemoveCount++
		a.SharesBurned.Add(a.SharesBurned, shares)
		return nil
	}
	a.AddCount++
	a.SharesMinted.Add(a.SharesMinted, shares)
	return nil
}

// Stats converts the accumulator into its persisted form.
func (a *Accumulator) Stats(windowSize uint64) model.WindowStats {
	return model.WindowStats{
		PoolName:       a.PoolMeta.Name,
		WindowSize:     windowSize,
		WindowStart:    a.WindowStart,
		WindowEnd:      a.WindowEnd,
		SwapCount:      a.SwapCount,
		VolumeX:        a.VolumeX.Dec(),
		VolumeY:        a.VolumeY.Dec(),
		FeeX:           a.FeeX.Dec(),
		FeeY:           a.FeeY.Dec(),
		AddCount:       a.AddCount,
		RemoveCount:    a.RemoveCount,
		SharesMinted:   a.SharesMinted.Dec(),
		SharesBurned:   a.SharesBurned.Dec(),
		VolumeXDisplay: FormatAmount(a.VolumeX, a.PoolMeta.DecimalsX),
		VolumeYDisplay: FormatAmount(a.VolumeY, a.PoolMeta.DecimalsY),
	}
}

func parseAmount(value string) (*uint256.Int, error) {
	if value == "" {
		return new(uint256.Int), nil
	}
	parsed, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return parsed, nil
}
