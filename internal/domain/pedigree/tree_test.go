package pedigree_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/internal/domain/pedigree"
)

var errMissing = errors.New("no such record")

// fakeResolver serves records from a map and counts lookups per id.
type fakeResolver struct {
	records map[string]model.AnimalRecord
	calls   map[string]int
}

func newFakeResolver(records ...model.AnimalRecord) *fakeResolver {
	f := &fakeResolver{
		records: make(map[string]model.AnimalRecord, len(records)),
		calls:   make(map[string]int),
	}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeResolver) Record(_ context.Context, id string) (*model.AnimalRecord, error) {
	f.calls[id]++
	r, ok := f.records[id]
	if !ok {
		return nil, errMissing
	}
	return &r, nil
}

func rec(id, sire, dam string) model.AnimalRecord {
	return model.AnimalRecord{ID: id, SireID: sire, DamID: dam}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	r := newFakeResolver()

	_, err := pedigree.Build(context.Background(), "a", 0, r)
	require.ErrorIs(t, err, pedigree.ErrInvalidDepth)

	_, err = pedigree.Build(context.Background(), "a", -3, r)
	require.ErrorIs(t, err, pedigree.ErrInvalidDepth)

	_, err = pedigree.Build(context.Background(), "", 4, r)
	require.ErrorIs(t, err, pedigree.ErrEmptySubject)
}

func TestBuildExpandsBothSides(t *testing.T) {
	r := newFakeResolver(
		rec("x", "s", "d"),
		rec("s", "gs", ""),
		rec("d", "", "gd"),
		rec("gs", "", ""),
		rec("gd", "", ""),
	)

	tree, err := pedigree.Build(context.Background(), "x", 3, r)
	require.NoError(t, err)
	require.NotNil(t, tree.Root.Record)

	assert.Equal(t, "s", tree.Root.Sire.ID)
	assert.Equal(t, "d", tree.Root.Dam.ID)
	assert.Equal(t, "gs", tree.Root.Sire.Sire.ID)
	assert.Nil(t, tree.Root.Sire.Dam)
	assert.Equal(t, "gd", tree.Root.Dam.Dam.ID)
	assert.Equal(t, 2, tree.Root.Dam.Dam.Depth)
	assert.Equal(t, 3, tree.MaxDepth)
}

func TestBuildStopsAtDepthBudget(t *testing.T) {
	// Straight sire line a -> b -> c -> d.
	r := newFakeResolver(
		rec("a", "b", ""),
		rec("b", "c", ""),
		rec("c", "d", ""),
		rec("d", "", ""),
	)

	tree, err := pedigree.Build(context.Background(), "a", 2, r)
	require.NoError(t, err)

	c := tree.Root.Sire.Sire
	require.NotNil(t, c)
	assert.Equal(t, "c", c.ID)
	assert.NotNil(t, c.Record, "node at the depth budget still gets its record")
	assert.Nil(t, c.Sire, "node at the depth budget is not expanded")
	assert.Zero(t, r.calls["d"], "ancestors beyond the budget are never looked up")
}

func TestBuildTruncatesUnknownAncestors(t *testing.T) {
	r := newFakeResolver(rec("a", "ghost", ""))

	tree, err := pedigree.Build(context.Background(), "a", 4, r)
	require.NoError(t, err, "an unresolvable ancestor is a truncation, not an error")

	ghost := tree.Root.Sire
	require.NotNil(t, ghost)
	assert.Nil(t, ghost.Record)
	assert.Nil(t, ghost.Sire)
	assert.Nil(t, ghost.Dam)
}

func TestBuildTruncatesCycles(t *testing.T) {
	// Corrupt data: a and b are each other's sire.
	r := newFakeResolver(
		rec("a", "b", ""),
		rec("b", "a", ""),
	)

	tree, err := pedigree.Build(context.Background(), "a", 10, r)
	require.NoError(t, err, "cyclic ancestry must not be an error")

	again := tree.Root.Sire.Sire
	require.NotNil(t, again, "the repeated id still occurs as a node")
	assert.Equal(t, "a", again.ID)
	assert.Nil(t, again.Sire, "the repeated id is a leaf")
}

func TestBuildUnresolvedRootIsSoft(t *testing.T) {
	r := newFakeResolver()

	tree, err := pedigree.Build(context.Background(), "nobody", 3, r)
	require.NoError(t, err)
	assert.Nil(t, tree.Root.Record)
}

func TestBuildHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newFakeResolver(rec("a", "b", ""), rec("b", "", ""))
	tree, err := pedigree.Build(ctx, "a", 3, r)
	require.NoError(t, err, "cancellation degrades to truncation")
	require.NotNil(t, tree)
	assert.Nil(t, tree.Root.Record)
}
