package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the pool settings shared by every command, loaded from flags,
// env, or config file.
type Config struct {
	Name              string
	StateFile         string
	Journal           string
	PGDSN             string
	RPCURL            string
	Height            uint64
	TokenX            string
	TokenY            string
	Custody           string
	DecimalsX         uint8
	DecimalsY         uint8
	MinimumLiquidity  uint64
	MaxSwapBatch      int
	MaxLiquidityBatch int
	MaxRetries        int
	RetryBackoff      time.Duration
	MetricsFile       string
	LogLevel          string
	Accounts          []string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"name":                "x-y",
		"state-file":          "./data/pool.json",
		"journal":             "./data/events.jsonl",
		"token-x":             "0x0000000000000000000000000000000000000001",
		"token-y":             "0x0000000000000000000000000000000000000002",
		"custody":             "0x00000000000000000000000000000000000000cc",
		"minimum-liquidity":   uint64(1000),
		"max-swap-batch":      10,
		"max-liquidity-batch": 5,
		"max-retries":         5,
		"retry-backoff":       500 * time.Millisecond,
		"log-level":           "info",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Name:              v.GetString("name"),
		StateFile:         v.GetString("state-file"),
		Journal:           v.GetString("journal"),
		PGDSN:             v.GetString("pg-dsn"),
		RPCURL:            v.GetString("rpc"),
		Height:            v.GetUint64("height"),
		TokenX:            v.GetString("token-x"),
		TokenY:            v.GetString("token-y"),
		Custody:           v.GetString("custody"),
		DecimalsX:         v.GetUint8("decimals-x"),
		DecimalsY:         v.GetUint8("decimals-y"),
		MinimumLiquidity:  v.GetUint64("minimum-liquidity"),
		MaxSwapBatch:      v.GetInt("max-swap-batch"),
		MaxLiquidityBatch: v.GetInt("max-liquidity-batch"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		MetricsFile:       v.GetString("metrics-file"),
		LogLevel:          v.GetString("log-level"),
		Accounts:          getStringSlice(v, "account"),
	}

	if cfg.Name == "" {
		return Config{}, fmt.Errorf("pool name is required")
	}
	if cfg.MaxRetries < 0 {
		return Config{}, fmt.Errorf("max retries must not be negative")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("AMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
