package registry

import (
	"context"
	"sync"
	"time"

	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultConcurrency   = 8
	defaultLookupTimeout = 2 * time.Second
)

// Cache memoizes Source lookups for the duration of one planning run.
//
// Guarantees:
//   - at most one in-flight source lookup per id; concurrent callers for
//     the same id coalesce onto the first caller's result
//   - at most the configured number of concurrent source lookups overall
//   - a failed or timed-out lookup resolves to an unrecorded animal and
//     stays resolved that way for the rest of the run
//
// A Cache is created at the start of a planning invocation and discarded
// with it; it is never shared across runs.
type Cache struct {
	source  Source
	sem     chan struct{}
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

// entry is a single memoized lookup. ready is closed once rec/err are set.
type entry struct {
	ready chan struct{}
	rec   *model.AnimalRecord
	err   error
}

// CacheOption applies a configuration option to the Cache.
type CacheOption func(*Cache)

// WithConcurrency bounds the number of concurrent source lookups.
func WithConcurrency(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		}
	}
}

// WithLookupTimeout bounds the duration of a single source lookup.
func WithLookupTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewCache creates a run-scoped cache over source.
func NewCache(source Source, opts ...CacheOption) *Cache {
	c := &Cache{
		source:  source,
		sem:     make(chan struct{}, defaultConcurrency),
		timeout: defaultLookupTimeout,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record returns the memoized record for id, issuing at most one source
// lookup for it across the whole run.
func (c *Cache) Record(ctx context.Context, id string) (*model.AnimalRecord, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		c.mu.Unlock()
		select {
		case <-e.ready:
			metrics.RecordLookupCacheHit()
			return e.rec, e.err
		default:
		}
		metrics.RecordLookupCoalescedWait()
		select {
		case <-e.ready:
			return e.rec, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &entry{ready: make(chan struct{})}
	c.entries[id] = e
	c.mu.Unlock()

	e.rec, e.err = c.fetch(ctx, id)
	close(e.ready)
	return e.rec, e.err
}

// fetch performs the single source lookup for id under the concurrency
// bound and the per-lookup timeout.
func (c *Cache) fetch(ctx context.Context, id string) (*model.AnimalRecord, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	rec, err := c.source.Record(lookupCtx, id)
	metrics.ObserveLookupLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordLookupIssued()
	if err != nil {
		metrics.RecordLookupFailure()
		return nil, err
	}
	return rec, nil
}

// Len returns the number of memoized ids, in-flight ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
