// Package amm executes swaps and liquidity operations against a single
// constant-product pool. Every call runs as one atomic unit of work: it either
// commits all of its reserve, share and transfer effects, or none of them.
package amm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammcore/internal/clock"
	"ammcore/internal/events"
	"ammcore/internal/ledger"
	"ammcore/internal/transfer"
)

// Version is reported by Metadata.
const Version = "1.0.0"

// Defaults applied to zero Config fields.
const (
	DefaultMinimumLiquidity  = 1000
	DefaultMaxSwapBatch      = 10
	DefaultMaxLiquidityBatch = 5
)

// Config describes the pool an Engine operates.
type Config struct {
	Name    string
	TokenX  common.Address
	TokenY  common.Address
	Custody common.Address
	// MinimumLiquidity is the share floor an initial deposit must exceed.
	MinimumLiquidity  uint64
	MaxSwapBatch      int
	MaxLiquidityBatch int
	// Sequence is the number of the last committed unit of work.
	Sequence uint64
}

// Engine owns the pool ledger and serializes every unit of work on it.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	minLiq   uint256.Int
	ledger   *ledger.Ledger
	vault    transfer.Vault
	clock    clock.Source
	metrics  *Metrics
	logger   *zap.Logger
	receipts []events.Receipt
}

// NewEngine builds an Engine with its dependencies. metrics and logger may be nil.
func NewEngine(cfg Config, l *ledger.Ledger, vault transfer.Vault, clk clock.Source, metrics *Metrics, logger *zap.Logger) (*Engine, error) {
	if l == nil {
		return nil, fmt.Errorf("ledger is nil")
	}
	if vault == nil {
		return nil, fmt.Errorf("vault is nil")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock is nil")
	}
	if cfg.TokenX == cfg.TokenY {
		return nil, fmt.Errorf("token x and token y must differ")
	}
	if cfg.Custody == (common.Address{}) {
		return nil, fmt.Errorf("custody address is required")
	}
	if cfg.MinimumLiquidity == 0 {
		cfg.MinimumLiquidity = DefaultMinimumLiquidity
	}
	if cfg.MaxSwapBatch <= 0 {
		cfg.MaxSwapBatch = DefaultMaxSwapBatch
	}
	if cfg.MaxLiquidityBatch <= 0 {
		cfg.MaxLiquidityBatch = DefaultMaxLiquidityBatch
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		cfg:     cfg,
		ledger:  l,
		vault:   vault,
		clock:   clk,
		metrics: metrics,
		logger:  logger.With(zap.String("pool", cfg.Name)),
	}
	e.minLiq.SetUint64(cfg.MinimumLiquidity)
	return e, nil
}

// Sequence returns the number of the last committed unit of work.
func (e *Engine) Sequence() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Sequence
}

// TakeReceipts returns the receipts committed since the previous call and
// clears them.
func (e *Engine) TakeReceipts() []events.Receipt {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.receipts
	e.receipts = nil
	return out
}

// unit is the context shared by the steps of one unit of work.
type unit struct {
	ctx    context.Context
	height uint64
	events []events.Event
}

func (u *unit) emit(ev events.Event) {
	u.events = append(u.events, ev)
}

// execute runs fn as one unit of work. The block height is read once up front.
// On any error the ledger and vault are rolled back and no events escape.
func (e *Engine) execute(ctx context.Context, op string, items int, fn func(u *unit) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	height, err := e.clock.Height(ctx)
	if err != nil {
		err = fmt.Errorf("read height: %w", err)
		e.reject(op, err)
		return err
	}

	u := &unit{ctx: ctx, height: height}
	ledgerSnap := e.ledger.Snapshot()
	vaultSnap := e.vault.Snapshot()

	err = fn(u)
	if err == nil {
		if checkErr := e.ledger.Check(); checkErr != nil {
			err = fmt.Errorf("ledger check: %w", checkErr)
		}
	}
	if err != nil {
		e.ledger.Restore(ledgerSnap)
		e.vault.RevertToSnapshot(vaultSnap)
		e.reject(op, err)
		return err
	}

	if c, ok := e.vault.(transfer.Compactor); ok {
		c.DiscardJournal()
	}
	e.cfg.Sequence++
	e.receipts = append(e.receipts, events.Receipt{
		Seq:    e.cfg.Sequence,
		Height: height,
		Op:     op,
		Events: u.events,
	})
	e.metrics.committed(op, items, e.ledger.Pool())
	e.logger.Info("unit committed",
		zap.String("op", op),
		zap.Int("items", items),
		zap.Uint64("height", height),
		zap.Uint64("seq", e.cfg.Sequence),
	)
	return nil
}

func (e *Engine) reject(op string, err error) {
	e.metrics.rejected(op, err)
	e.logger.Warn("unit rejected",
		zap.String("op", op),
		zap.Uint16("code", uint16(CodeOf(err))),
		zap.Error(err),
	)
}

// move executes a transfer of a non-zero amount and wraps failures with code.
func (e *Engine) move(u *unit, code *CodeError, t transfer.Transfer) error {
	if t.Amount.IsZero() {
		return nil
	}
	e.logger.Debug("transfer",
		zap.String("token", t.Token.Hex()),
		zap.String("amount", t.Amount.Dec()),
		zap.String("from", t.From.Hex()),
		zap.String("to", t.To.Hex()),
		zap.String("memo", t.Memo),
	)
	if err := e.vault.Transfer(u.ctx, t); err != nil {
		return fmt.Errorf("%w: %s: %w", code, t.Memo, err)
	}
	return nil
}
