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
//  1. defaults (New(ctx))
//  2. file (YAML) if STUDBOOK_CONFIG is set
//  3. env (prefix STUDBOOK_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("STUDBOOK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: STUDBOOK_PEDIGREE_DEPTH, STUDBOOK_LOG_LEVEL, ...
	// Map env keys like STUDBOOK_PEDIGREE_DEPTH -> pedigree_depth (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("STUDBOOK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "studbook_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.PedigreeDepth < 1 {
		return fmt.Errorf("%w: pedigree_depth must be positive, got %d", ErrInvalidConfig, c.PedigreeDepth)
	}
	if c.InbreedingCeiling < 0 || c.InbreedingCeiling > 1 {
		return fmt.Errorf("%w: inbreeding_ceiling must be within [0,1], got %g", ErrInvalidConfig, c.InbreedingCeiling)
	}
	if c.LookupConcurrency < 1 {
		return fmt.Errorf("%w: lookup_concurrency must be positive, got %d", ErrInvalidConfig, c.LookupConcurrency)
	}
	if !c.AllowNegativeWeights {
		for code, w := range c.TraitWeights {
			if w < 0 {
				return fmt.Errorf("%w: negative weight %g for trait %q without allow_negative_weights", ErrInvalidConfig, w, code)
			}
		}
	}
	return nil
}
