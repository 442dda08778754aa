// Package stats rolls decoded pool events up into fixed block-height windows.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"ammcore/internal/model"
	"ammcore/internal/storage"
)

// Config controls aggregation behavior.
type Config struct {
	// WindowSize is the number of blocks per window.
	WindowSize uint64
	// FromBlock skips events below this height.
	FromBlock uint64
}

// Aggregator groups typed events into window accumulators.
type Aggregator struct {
	cfg          Config
	logger       *zap.Logger
	accumulators map[uint64]*Accumulator
	skipped      int
}

func NewAggregator(cfg Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		cfg:          cfg,
		logger:       logger,
		accumulators: make(map[uint64]*Accumulator),
	}
}

// Add folds one typed event into its window.
func (a *Aggregator) Add(record model.TypedEventRecord) error {
	if a.cfg.WindowSize == 0 {
		return fmt.Errorf("window size must be greater than zero")
	}
	if record.BlockNumber < a.cfg.FromBlock {
		a.skipped++
		return nil
	}

	start := record.BlockNumber / a.cfg.WindowSize * a.cfg.WindowSize
	acc, ok := a.accumulators[start]
	if !ok {
		acc = NewAccumulator(record.PoolMeta, start, start+a.cfg.WindowSize-1)
		a.accumulators[start] = acc
	}
	if err := acc.AddEvent(record); err != nil {
		return fmt.Errorf("block %d log %d: %w", record.BlockNumber, record.LogIndex, err)
	}
	return nil
}

// ReadFrom folds every typed event JSON line of r.
func (a *Aggregator) ReadFrom(r io.Reader) error {
	return storage.ScanLines(r, func(line []byte) error {
		var record model.TypedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("parse typed event: %w", err)
		}
		return a.Add(record)
	})
}

// Windows returns the window stats ordered by window start.
func (a *Aggregator) Windows() []model.WindowStats {
	starts := make([]uint64, 0, len(a.accumulators))
	for start := range a.accumulators {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	out := make([]model.WindowStats, 0, len(starts))
	for _, start := range starts {
		out = append(out, a.accumulators[start].Stats(a.cfg.WindowSize))
	}
	a.logger.Debug("windows built",
		zap.Int("windows", len(out)),
		zap.Int("skipped", a.skipped),
	)
	return out
}
