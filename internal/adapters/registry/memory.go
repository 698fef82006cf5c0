package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/studbook/internal/domain/model"
)

// MemorySource implements Source over an in-memory record set. It counts
// the lookups it serves so tests can assert the at-most-one-lookup-per-id
// invariant of the pre-fetch phase.
type MemorySource struct {
	mu      sync.RWMutex
	records map[string]model.AnimalRecord
	calls   atomic.Int64
}

// MemoryOption applies a configuration option to the MemorySource.
type MemoryOption func(*MemorySource)

// WithRecords seeds the source with an initial record set.
func WithRecords(records []model.AnimalRecord) MemoryOption {
	return func(s *MemorySource) {
		for _, r := range records {
			s.records[r.ID] = r
		}
	}
}

// NewMemorySource creates an in-memory record source.
func NewMemorySource(opts ...MemoryOption) *MemorySource {
	s := &MemorySource{
		records: make(map[string]model.AnimalRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores or replaces a record.
func (s *MemorySource) Put(record model.AnimalRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
}

// Record returns the stored record for id, or ErrNotFound.
func (s *MemorySource) Record(ctx context.Context, id string) (*model.AnimalRecord, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	s.calls.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &r, nil
}

// Calls returns how many lookups this source has served.
func (s *MemorySource) Calls() int64 {
	return s.calls.Load()
}

// Len returns the number of stored records.
func (s *MemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
