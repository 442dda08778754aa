package config

import (
	"github.com/spf13/pflag"
)

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	Pool   Config
	In     string
	Out    string
	Errors string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	pool, err := Load(cfgFile, flags)
	if err != nil {
		return DecodeConfig{}, err
	}

	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":    "./data/typed_events.jsonl",
		"errors": "./data/decode_errors.jsonl",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	in := v.GetString("in")
	if in == "" {
		in = pool.Journal
	}
	return DecodeConfig{
		Pool:   pool,
		In:     in,
		Out:    v.GetString("out"),
		Errors: v.GetString("errors"),
	}, nil
}
