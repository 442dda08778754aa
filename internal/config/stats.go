package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// StatsConfig holds configuration for window stats.
type StatsConfig struct {
	Pool       Config
	In         string
	WindowSize uint64
	FromBlock  uint64
	Persist    bool
}

// LoadStats merges config file, environment variables, and flags into StatsConfig.
func LoadStats(cfgFile string, flags *pflag.FlagSet) (StatsConfig, error) {
	pool, err := Load(cfgFile, flags)
	if err != nil {
		return StatsConfig{}, err
	}

	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"in":          "./data/typed_events.jsonl",
		"window-size": uint64(100),
	})
	if err != nil {
		return StatsConfig{}, err
	}

	cfg := StatsConfig{
		Pool:       pool,
		In:         v.GetString("in"),
		WindowSize: v.GetUint64("window-size"),
		FromBlock:  v.GetUint64("from"),
		Persist:    v.GetBool("persist"),
	}
	if cfg.WindowSize == 0 {
		return StatsConfig{}, fmt.Errorf("window size must be greater than zero")
	}
	if cfg.Persist && pool.PGDSN == "" {
		return StatsConfig{}, fmt.Errorf("pg dsn is required to persist stats")
	}
	return cfg, nil
}
