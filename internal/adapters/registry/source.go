// Package registry defines the animal record lookup collaborator and the
// run-scoped cache that fronts it during planning.
//
// A record carries both parentage and trait data, so one lookup per animal
// covers tree building and scoring alike.
package registry

import (
	"context"

	"github.com/okian/studbook/internal/domain/model"
)

// Source resolves animal records from wherever the breeding program keeps
// them. Implementations live outside this engine; MemorySource exists for
// tests and demos.
type Source interface {
	// Record returns the stored record for id.
	// Returns ErrNotFound when no record exists for id.
	Record(ctx context.Context, id string) (*model.AnimalRecord, error)
}
