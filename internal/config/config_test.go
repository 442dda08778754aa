package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, "x-y", cfg.Name)
	require.Equal(t, "./data/pool.json", cfg.StateFile)
	require.Equal(t, uint64(1000), cfg.MinimumLiquidity)
	require.Equal(t, 10, cfg.MaxSwapBatch)
	require.Equal(t, 5, cfg.MaxLiquidityBatch)
	require.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	require.Empty(t, cfg.Accounts)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "amm.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("name: file-pool\ndecimals-x: 6\nmax-swap-batch: 4\naccount:\n  - 0xa1\n  - 0xb0\n"), 0o644))

	t.Setenv("AMM_MAX_SWAP_BATCH", "7")
	t.Setenv("AMM_RETRY_BACKOFF", "2s")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("name", "", "")
	flags.Uint64("height", 0, "")
	require.NoError(t, flags.Parse([]string{"--name", "flag-pool", "--height", "42"}))

	cfg, err := Load(cfgFile, flags)
	require.NoError(t, err)
	require.Equal(t, "flag-pool", cfg.Name)
	require.Equal(t, uint64(42), cfg.Height)
	require.Equal(t, uint8(6), cfg.DecimalsX)
	require.Equal(t, 7, cfg.MaxSwapBatch)
	require.Equal(t, 2*time.Second, cfg.RetryBackoff)
	require.Equal(t, []string{"0xa1", "0xb0"}, cfg.Accounts)
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestLoadStats(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadStats("", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(100), cfg.WindowSize)
	require.Equal(t, "./data/typed_events.jsonl", cfg.In)

	t.Setenv("AMM_PERSIST", "true")
	_, err = LoadStats("", nil)
	require.Error(t, err)

	t.Setenv("AMM_PERSIST", "false")
	t.Setenv("AMM_WINDOW_SIZE", "0")
	_, err = LoadStats("", nil)
	require.Error(t, err)
}

func TestLoadDecodeFallsBackToJournal(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AMM_JOURNAL", "/tmp/journal.jsonl")

	cfg, err := LoadDecode("", nil)
	require.NoError(t, err)
	require.Equal(t, "/tmp/journal.jsonl", cfg.In)
	require.Equal(t, "./data/decode_errors.jsonl", cfg.Errors)
}

func TestSplitAndClean(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitAndClean(" a, ,b "))
	require.Nil(t, splitAndClean(""))
}
