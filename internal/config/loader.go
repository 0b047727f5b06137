package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TALLY_CONFIG is set
//  3. env (prefix TALLY_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TALLY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TALLY_ADDR, TALLY_QUEUE_SIZE, ...
	// Map env keys like TALLY_QUEUE_SIZE -> queue_size (flat keys).
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("TALLY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tally_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.AggregationMethod {
	case "mean", "median", "trimmed_mean":
	default:
		return fmt.Errorf("%w: unknown aggregation_method %q", ErrInvalidConfig, cfg.AggregationMethod)
	}
	switch cfg.TeamCombine {
	case "average", "best":
	default:
		return fmt.Errorf("%w: unknown team_combine %q", ErrInvalidConfig, cfg.TeamCombine)
	}
	if cfg.TrimFraction < 0 || cfg.TrimFraction >= 0.5 {
		return fmt.Errorf("%w: trim_fraction must be in [0, 0.5)", ErrInvalidConfig)
	}
	return nil
}
