package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammcore/internal/config"
	"ammcore/internal/stats"
	"ammcore/internal/storage/postgres"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate typed events into block-height windows",
		RunE:  runStats,
	}
	cmd.Flags().String("in", "./data/typed_events.jsonl", "input typed events JSONL")
	cmd.Flags().Uint64("window-size", 100, "blocks per window")
	cmd.Flags().Uint64("from", 0, "skip events below this height")
	cmd.Flags().Bool("persist", false, "upsert windows into Postgres (requires pg-dsn)")
	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadStats(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Pool.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	aggregator := stats.NewAggregator(stats.Config{
		WindowSize: cfg.WindowSize,
		FromBlock:  cfg.FromBlock,
	}, logger)
	if err := aggregator.ReadFrom(inputFile); err != nil {
		return err
	}
	windows := aggregator.Windows()

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	for _, w := range windows {
		if err := enc.Encode(w); err != nil {
			return fmt.Errorf("write window: %w", err)
		}
	}

	logger.Info("stats complete",
		zap.String("in", cfg.In),
		zap.Uint64("window_size", cfg.WindowSize),
		zap.Int("windows", len(windows)),
		zap.Bool("persist", cfg.Persist),
	)
	if !cfg.Persist {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.Pool.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	return store.UpsertWindowStats(ctx, windows)
}
