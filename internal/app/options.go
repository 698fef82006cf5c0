package app

import (
	"time"

	"github.com/okian/studbook/pkg/logger"
)

// Option applies a configuration option to the Planner.
type Option func(*Planner)

// WithMaxDepth sets the number of ancestor generations expanded per tree.
func WithMaxDepth(depth int) Option {
	return func(p *Planner) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// WithLookupConcurrency bounds concurrent registry lookups during pre-fetch.
func WithLookupConcurrency(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.lookupConcurrency = n
		}
	}
}

// WithLookupTimeout bounds a single registry lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(p *Planner) {
		if d > 0 {
			p.lookupTimeout = d
		}
	}
}

// WithScoringWorkers sets the number of concurrent pair-scoring workers.
func WithScoringWorkers(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.scoringWorkers = n
		}
	}
}

// WithNegativeWeightsAllowed permits negative selection-index weights.
func WithNegativeWeightsAllowed(allowed bool) Option {
	return func(p *Planner) {
		p.allowNegativeWeights = allowed
	}
}

// WithLogger sets a custom logger for the planner.
func WithLogger(l logger.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}
