package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ammcore/internal/amm"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		var coded *amm.CodeError
		if errors.As(err, &coded) {
			fmt.Fprintf(os.Stderr, "error %d: %v\n", coded.Code, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "amm",
		Short:         "Constant-product pool with a paper token bank",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("name", "x-y", "pool name")
	flags.String("state-file", "./data/pool.json", "pool state file")
	flags.String("journal", "./data/events.jsonl", "committed event journal JSONL")
	flags.String("pg-dsn", "", "Postgres DSN; replaces the state file and journal when set")
	flags.String("rpc", "", "RPC URL used as the deadline clock")
	flags.Uint64("height", 0, "current height when no RPC is set, 0 keeps the stored height")
	flags.String("token-x", "0x0000000000000000000000000000000000000001", "token X address")
	flags.String("token-y", "0x0000000000000000000000000000000000000002", "token Y address")
	flags.String("custody", "0x00000000000000000000000000000000000000cc", "pool custody account")
	flags.Uint8("decimals-x", 0, "token X decimals for display")
	flags.Uint8("decimals-y", 0, "token Y decimals for display")
	flags.Uint64("minimum-liquidity", amm.DefaultMinimumLiquidity, "share floor of the initial deposit")
	flags.Int("max-swap-batch", amm.DefaultMaxSwapBatch, "maximum swaps per batch")
	flags.Int("max-liquidity-batch", amm.DefaultMaxLiquidityBatch, "maximum liquidity items per batch")
	flags.Int("max-retries", 5, "maximum retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("metrics-file", "", "write metrics in text format to this file")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newInitCmd(),
		newSwapCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newBulkCmd(),
		newQuoteCmd(),
		newInfoCmd(),
		newFundCmd(),
		newDecodeCmd(),
		newStatsCmd(),
	)
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
