// Package inbreeding applies Wright's path-coefficient method over the
// common ancestors of a sire-side and a dam-side ancestry tree.
//
// For every shared ancestor A and every pair of generation distances
// (n1, n2) at which A occurs on the two sides, the offspring coefficient
// accumulates (1/2)^(n1+n2+1) * (1 + F_A), where F_A is A's own
// coefficient. Accumulation is plain float64; the smallest term at the
// supported depths is far above underflow.
package inbreeding

import (
	"math"

	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/internal/domain/pedigree"
)

// Risk band boundaries. The MODERATE band is inclusive at both ends.
const (
	moderateFloor = 0.0625
	moderateCeil  = 0.125
)

// Result is the computed coefficient for one sire/dam combination.
type Result struct {
	Coefficient float64
	Risk        model.RiskLevel

	// InsufficientData is set when a root record could not be resolved at
	// all. The coefficient is then zero by necessity, not by evidence.
	InsufficientData bool
}

// Classify maps a coefficient to its risk band.
func Classify(f float64) model.RiskLevel {
	switch {
	case f < moderateFloor:
		return model.RiskLow
	case f <= moderateCeil:
		return model.RiskModerate
	default:
		return model.RiskHigh
	}
}

// AncestorPolicy supplies a common ancestor's own inbreeding coefficient.
type AncestorPolicy func(ancestor *pedigree.Node) float64

// TruncateAncestors treats every common ancestor as non-inbred.
func TruncateAncestors(*pedigree.Node) float64 { return 0 }

// Calculator sums path contributions for the offspring of two rooted
// trees. A Calculator is scoped to one planning run: ancestor coefficients
// are memoized across calls, keyed by occurrence node. The same id can
// occur at several depths with differently truncated subtrees, so the
// memoized value belongs to the node, never to the id; a Calculator shared
// across many pairs therefore scores each pair the same regardless of the
// order the pairs arrive in.
//
// Without an explicit policy, an ancestor's own coefficient is resolved
// recursively from the subtree already in hand; parents beyond the depth
// budget are absent from the subtree, so the recursion truncates to zero
// there. That truncation is an approximation, not a verified zero.
type Calculator struct {
	policy AncestorPolicy
	memo   map[*pedigree.Node]float64
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithAncestorPolicy overrides the recursive default for ancestors' own
// coefficients.
func WithAncestorPolicy(p AncestorPolicy) Option {
	return func(c *Calculator) {
		if p != nil {
			c.policy = p
		}
	}
}

// New creates a Calculator for one planning run.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		memo: make(map[*pedigree.Node]float64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Coefficient computes the inbreeding coefficient of the (hypothetical or
// recorded) offspring of the two tree roots. An existing individual is the
// special case where the roots are its recorded parents; the subject
// itself appears in neither tree.
//
// The computation is symmetric in its two arguments.
func (c *Calculator) Coefficient(sireTree, damTree *pedigree.Tree) Result {
	if unresolved(sireTree) || unresolved(damTree) {
		return Result{Risk: model.RiskLow, InsufficientData: true}
	}
	f := c.sum(pedigree.CommonAncestors(sireTree, damTree))
	return Result{Coefficient: f, Risk: Classify(f)}
}

func unresolved(t *pedigree.Tree) bool {
	return t == nil || t.Root == nil || t.Root.Record == nil
}

// sum accumulates the path contributions of every shared ancestor, in id
// order for reproducible floating-point results.
func (c *Calculator) sum(shared []pedigree.SharedAncestor) float64 {
	var f float64
	for _, a := range shared {
		fa := c.ancestorCoefficient(a.Node)
		for _, n1 := range a.SireDepths {
			for _, n2 := range a.DamDepths {
				f += math.Pow(0.5, float64(n1+n2+1)) * (1 + fa)
			}
		}
	}
	return f
}

func (c *Calculator) ancestorCoefficient(n *pedigree.Node) float64 {
	if c.policy != nil {
		return c.policy(n)
	}
	if n == nil || n.Sire == nil || n.Dam == nil {
		return 0
	}
	if v, ok := c.memo[n]; ok {
		return v
	}
	c.memo[n] = 0 // re-entrancy guard while the node's own value is computed
	v := c.sum(pedigree.SharedBetween(n.Sire, n.Dam))
	c.memo[n] = v
	return v
}
