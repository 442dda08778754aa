package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammcore/internal/amm"
	"ammcore/internal/chain"
	"ammcore/internal/clock"
	"ammcore/internal/config"
	"ammcore/internal/events"
	"ammcore/internal/ledger"
	"ammcore/internal/model"
	"ammcore/internal/storage"
	"ammcore/internal/storage/postgres"
	"ammcore/internal/transfer"
)

// session is one CLI invocation against a persisted pool.
type session struct {
	cfg      config.Config
	logger   *zap.Logger
	state    storage.StateStore
	sink     storage.EventSink
	stored   model.PoolState
	bank     *transfer.Bank
	engine   *amm.Engine
	encoder  *events.Encoder
	registry *prometheus.Registry
	closers  []func()
}

// withSession loads the pool, runs fn, and prints its result as JSON. When
// mutate is set and fn succeeds, the state is saved and committed events are
// appended to the journal. A failed fn saves nothing.
func withSession(cmd *cobra.Command, mutate bool, fn func(ctx context.Context, s *session) (interface{}, error)) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	result, runErr := fn(ctx, s)
	if err := s.writeMetrics(); err != nil {
		logger.Warn("write metrics failed", zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}

	if mutate {
		if err := s.commit(ctx); err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func openSession(ctx context.Context, cfg config.Config, logger *zap.Logger) (*session, error) {
	tokens, err := parseAddresses([]string{cfg.TokenX, cfg.TokenY, cfg.Custody})
	if err != nil {
		return nil, err
	}
	if len(tokens) != 3 {
		return nil, fmt.Errorf("token-x, token-y and custody are required")
	}

	s := &session{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		s.state = &postgres.StateStore{Store: store, Name: cfg.Name}
		s.sink = store
	} else {
		s.state = &storage.FileStateStore{Path: cfg.StateFile}
		s.sink = storage.NewJsonlStorage(cfg.Journal)
	}

	if err := s.load(ctx, tokens[0], tokens[1], tokens[2]); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) load(ctx context.Context, tokenX, tokenY, custody common.Address) error {
	st, found, err := s.state.Load(ctx)
	if err != nil {
		return err
	}
	if found {
		if err := checkStoredPool(st, s.cfg.Name, tokenX, tokenY, custody); err != nil {
			return err
		}
	}
	s.stored = st

	l, err := ledger.Import(st)
	if err != nil {
		return err
	}
	s.bank, err = transfer.ImportBank(st.Balances)
	if err != nil {
		return err
	}

	clk, err := s.clock(ctx, st.Height)
	if err != nil {
		return err
	}

	s.engine, err = amm.NewEngine(amm.Config{
		Name:              s.cfg.Name,
		TokenX:            tokenX,
		TokenY:            tokenY,
		Custody:           custody,
		MinimumLiquidity:  s.cfg.MinimumLiquidity,
		MaxSwapBatch:      s.cfg.MaxSwapBatch,
		MaxLiquidityBatch: s.cfg.MaxLiquidityBatch,
		Sequence:          st.Sequence,
	}, l, s.bank, clk, amm.NewMetrics(s.registry), s.logger)
	if err != nil {
		return err
	}

	s.encoder, err = events.NewEncoder(s.cfg.Name, custody)
	return err
}

func (s *session) clock(ctx context.Context, stored uint64) (clock.Source, error) {
	if s.cfg.RPCURL == "" {
		height := stored
		if s.cfg.Height != 0 {
			height = s.cfg.Height
		}
		return clock.NewManual(height), nil
	}

	client, err := chain.NewClient(ctx, s.cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	s.closers = append(s.closers, client.Close)
	return chain.NewHeightSource(client, s.cfg.MaxRetries, s.cfg.RetryBackoff, s.logger), nil
}

func checkStoredPool(st model.PoolState, name string, tokenX, tokenY, custody common.Address) error {
	checks := []struct {
		field  string
		stored string
		want   string
	}{
		{"name", st.Name, name},
		{"token_x", st.TokenX, tokenX.Hex()},
		{"token_y", st.TokenY, tokenY.Hex()},
		{"custody", st.Custody, custody.Hex()},
	}
	for _, c := range checks {
		if c.stored != "" && c.stored != c.want {
			return fmt.Errorf("stored pool %s is %s, config has %s", c.field, c.stored, c.want)
		}
	}
	return nil
}

// commit saves the pool and bank, then appends the events of every unit of
// work committed during the session.
func (s *session) commit(ctx context.Context) error {
	receipts := s.engine.TakeReceipts()

	st := s.stored
	s.engine.Export(&st)
	st.Balances = s.bank.Export()
	if n := len(receipts); n > 0 {
		st.Height = receipts[n-1].Height
	} else if s.cfg.RPCURL == "" && s.cfg.Height != 0 {
		st.Height = s.cfg.Height
	}
	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.state.Save(ctx, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	var logs []model.LogRecord
	for _, r := range receipts {
		records, err := s.encoder.Encode(r)
		if err != nil {
			return fmt.Errorf("encode receipt %d: %w", r.Seq, err)
		}
		logs = append(logs, records...)
	}
	if len(logs) > 0 {
		if err := s.sink.PutLogBatch(ctx, logs); err != nil {
			return fmt.Errorf("append journal: %w", err)
		}
	}

	s.logger.Info("state saved",
		zap.String("pool", s.cfg.Name),
		zap.Uint64("sequence", st.Sequence),
		zap.Uint64("height", st.Height),
		zap.Int("events", len(logs)),
	)
	return nil
}

func (s *session) writeMetrics() error {
	if s.cfg.MetricsFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.cfg.MetricsFile, s.registry)
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
