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

const (
	envPrefix  = "GRADESWAP_"
	envFileVar = "GRADESWAP_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GRADESWAP_CONFIG is set
//  3. env (prefix GRADESWAP_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GRADESWAP_MAX_PLAN_SWAPS -> max_plan_swaps. Underscores are kept to
	// match the flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxSuggestions < 0:
		return fmt.Errorf("%w: max_suggestions must not be negative", ErrInvalidConfig)
	case c.MaxPlanSwaps < 0:
		return fmt.Errorf("%w: max_plan_swaps must not be negative", ErrInvalidConfig)
	case c.ExploreConcurrency < 1:
		return fmt.Errorf("%w: explore_concurrency must be at least 1", ErrInvalidConfig)
	case c.DonorMaxRankDrop < 0 || c.DonorMaxAverageDrop < 0:
		return fmt.Errorf("%w: donor limits must not be negative", ErrInvalidConfig)
	}
	return nil
}
