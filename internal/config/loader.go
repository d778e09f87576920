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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if STEADIHAND_CONFIG is set
//  3. env (prefix STEADIHAND_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("STEADIHAND_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: STEADIHAND_ADDR, STEADIHAND_QUEUE_SIZE, ...
	// Map env keys like STEADIHAND_QUEUE_SIZE -> queue_size (flat keys);
	// preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("STEADIHAND_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "steadihand_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the pipeline treats as programmer errors:
// an empty tracked-finger set and non-positive normalization maxima are
// fatal, not recoverable data conditions.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case len(c.TrackedFingers) == 0:
		return fmt.Errorf("%w: tracked_fingers must not be empty", ErrInvalidConfig)
	case c.TremorMax <= 0:
		return fmt.Errorf("%w: tremor_max must be positive", ErrInvalidConfig)
	case c.DriftMax <= 0:
		return fmt.Errorf("%w: drift_max must be positive", ErrInvalidConfig)
	case c.FatigueMax <= 0:
		return fmt.Errorf("%w: fatigue_max must be positive", ErrInvalidConfig)
	case c.WeightTremor < 0 || c.WeightDrift < 0 || c.WeightFatigue < 0:
		return fmt.Errorf("%w: metric weights must not be negative", ErrInvalidConfig)
	}
	return nil
}
