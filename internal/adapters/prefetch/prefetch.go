// Package prefetch resolves all pedigree data ahead of pairwise scoring.
//
// Planning must never issue an external lookup from inside the scoring
// loop, so every subject tree is built up front through the run-scoped
// registry cache. The cache bounds and coalesces the actual lookups; the
// pool only bounds tree-level parallelism.
package prefetch

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/studbook/internal/domain/pedigree"
	"github.com/okian/studbook/pkg/logger"
	"github.com/okian/studbook/pkg/metrics"
)

// BuildFunc builds one ancestry tree through the shared run-scoped cache.
type BuildFunc func(ctx context.Context, subjectID string) (*pedigree.Tree, error)

// Pool fans tree construction out over a bounded set of workers.
type Pool struct {
	build   BuildFunc
	workers int
	logger  logger.Logger
}

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithWorkers sets the number of concurrent tree builders.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool creates a pre-fetch pool around build.
func NewPool(build BuildFunc, opts ...Option) *Pool {
	p := &Pool{
		build:   build,
		workers: runtime.NumCPU() * 2,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("prefetch")
	}
	return p
}

// Run builds a tree for every distinct subject id and returns them keyed
// by id. A subject whose build fails is logged and omitted from the
// result; downstream treats a missing tree as an unresolved record rather
// than aborting the run.
func (p *Pool) Run(ctx context.Context, subjectIDs []string) map[string]*pedigree.Tree {
	start := time.Now()
	ids := distinct(subjectIDs)

	jobs := make(chan string)
	trees := make(map[string]*pedigree.Tree, len(ids))
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				tree, err := p.build(ctx, id)
				if err != nil {
					p.logger.Warn(ctx, "tree build failed",
						logger.String("subject", id),
						logger.Error(err),
					)
					continue
				}
				mu.Lock()
				trees[id] = tree
				mu.Unlock()
			}
		}()
	}

feed:
	for _, id := range ids {
		select {
		case jobs <- id:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	metrics.ObservePrefetchDuration(time.Since(start).Seconds())
	return trees
}

// distinct preserves first-seen order while dropping duplicates and
// empties.
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
