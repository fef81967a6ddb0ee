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

// Environment variable names.
const (
	envPrefix     = "LITTER_"
	envConfigFile = "LITTER_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if LITTER_CONFIG is set
//  3. env (prefix LITTER_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// LITTER_MODEL_DIR -> model_dir. Underscores are preserved to match the
	// flat koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values both binaries rely on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ModelDir) == "":
		return fmt.Errorf("%w: model_dir must not be empty", ErrInvalidConfig)
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("%w: confidence_threshold must be within [0,1]", ErrInvalidConfig)
	case c.HoldoutRatio < 0 || c.HoldoutRatio >= 1:
		return fmt.Errorf("%w: holdout_ratio must be within [0,1)", ErrInvalidConfig)
	case c.Estimators <= 0:
		return fmt.Errorf("%w: n_estimators must be positive", ErrInvalidConfig)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max_depth must not be negative", ErrInvalidConfig)
	case c.MinSamplesSplit < 2:
		return fmt.Errorf("%w: min_samples_split must be at least 2", ErrInvalidConfig)
	case c.MinSamplesLeaf < 1:
		return fmt.Errorf("%w: min_samples_leaf must be at least 1", ErrInvalidConfig)
	case c.MaxFeatures < 0:
		return fmt.Errorf("%w: max_features must not be negative", ErrInvalidConfig)
	case c.SyntheticSamples <= 0:
		return fmt.Errorf("%w: synthetic_samples must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
