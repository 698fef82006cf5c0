// Package pedigree builds bounded-depth ancestry trees from record lookups
// and enumerates ancestors shared between two trees.
//
// Trees are expanded breadth-first. Expansion stops at the depth budget, at
// ids with no stored record, and at ids repeated on the current
// root-to-node path (cyclic ancestry data). None of these conditions is an
// error; they only truncate the tree.
package pedigree

import (
	"context"
	"fmt"

	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/pkg/metrics"
)

// Resolver supplies animal records during tree construction. Implementations
// are expected to memoize: Build may ask for the same id more than once when
// an ancestor is reachable via several paths.
type Resolver interface {
	// Record returns the stored record for id. Any error is treated as an
	// unresolved record and truncates expansion at that node.
	Record(ctx context.Context, id string) (*model.AnimalRecord, error)
}

// Node is one individual in an ancestry tree.
//
// Record is nil when the lookup failed or the id has no stored record.
// Depth counts generations from the tree root (root is 0).
type Node struct {
	ID     string
	Depth  int
	Record *model.AnimalRecord
	Sire   *Node
	Dam    *Node

	parent *Node // toward the root; backs the per-path cycle guard
}

// Tree is an ancestry tree rooted at one individual, together with the
// depth budget it was built under.
type Tree struct {
	Root     *Node
	MaxDepth int
}

// Build expands the ancestry of subjectID breadth-first up to maxDepth
// generations. The subject itself is the root at depth 0.
//
// A cancelled context stops expansion and returns the tree built so far;
// unexplored ancestors then simply look unrecorded downstream.
func Build(ctx context.Context, subjectID string, maxDepth int, resolver Resolver) (*Tree, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, maxDepth)
	}
	if subjectID == "" {
		return nil, ErrEmptySubject
	}

	root := &Node{ID: subjectID}
	queue := []*Node{root}
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return &Tree{Root: root, MaxDepth: maxDepth}, nil
		default:
		}

		n := queue[0]
		queue = queue[1:]

		rec, err := resolver.Record(ctx, n.ID)
		if err != nil || rec == nil {
			continue // unresolved record, leaf
		}
		n.Record = rec

		if n.Depth == maxDepth {
			continue // depth budget spent, not explored further
		}
		if onPath(n.parent, n.ID) {
			continue // id repeats on the root-to-node path, truncate the cycle
		}

		if rec.SireID != "" {
			n.Sire = &Node{ID: rec.SireID, Depth: n.Depth + 1, parent: n}
			queue = append(queue, n.Sire)
		}
		if rec.DamID != "" {
			n.Dam = &Node{ID: rec.DamID, Depth: n.Depth + 1, parent: n}
			queue = append(queue, n.Dam)
		}
	}

	metrics.RecordTreeBuilt()
	return &Tree{Root: root, MaxDepth: maxDepth}, nil
}

// onPath reports whether id occurs on the ancestor chain starting at n.
func onPath(n *Node, id string) bool {
	for ; n != nil; n = n.parent {
		if n.ID == id {
			return true
		}
	}
	return false
}
