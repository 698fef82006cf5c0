// Package config defines planner configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// PedigreeDepth is the number of ancestor generations expanded per tree.
	PedigreeDepth int `koanf:"pedigree_depth"`

	// InbreedingCeiling excludes pairs whose projected coefficient exceeds it.
	InbreedingCeiling float64 `koanf:"inbreeding_ceiling"`

	// LookupConcurrency bounds concurrent registry lookups during pre-fetch.
	LookupConcurrency int `koanf:"lookup_concurrency"`

	// LookupTimeoutMS bounds a single registry lookup.
	LookupTimeoutMS int `koanf:"lookup_timeout_ms"`

	// ScoringWorkers sets the number of concurrent pair-scoring workers.
	ScoringWorkers int `koanf:"scoring_workers"`

	// TraitWeights is the selection index applied when planning.
	TraitWeights map[string]float64 `koanf:"trait_weights"`

	// AllowNegativeWeights permits negative selection-index weights, e.g.
	// for traits where lower is better.
	AllowNegativeWeights bool `koanf:"allow_negative_weights"`

	// Demo herd generation, used by cmd/planner only.
	HerdFounders    int   `koanf:"herd_founders"`
	HerdGenerations int   `koanf:"herd_generations"`
	HerdSeed        int64 `koanf:"herd_seed"`
	PlanSires       int   `koanf:"plan_sires"`
	PlanDams        int   `koanf:"plan_dams"`
	SireCapacity    int   `koanf:"sire_capacity"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		PedigreeDepth:     5,
		InbreedingCeiling: 0.0625,
		LookupConcurrency: runtime.NumCPU() * 2,
		LookupTimeoutMS:   2000,
		ScoringWorkers:    runtime.NumCPU(),
		TraitWeights: map[string]float64{
			"milk_yield": 1.0,
			"fertility":  2.5,
		},
		AllowNegativeWeights: false,
		HerdFounders:         24,
		HerdGenerations:      4,
		HerdSeed:             42,
		PlanSires:            4,
		PlanDams:             12,
		SireCapacity:         3,
	}
}
