// Package app wires the planning service that exposes the engine's public
// operations: pedigree trees, inbreeding coefficients, pair scoring, and
// full mating plans.
//
// Each operation owns a run-scoped registry cache: the cache is created
// when the operation starts and discarded when it returns, so no lookup
// state leaks between runs.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/studbook/internal/adapters/prefetch"
	"github.com/okian/studbook/internal/adapters/registry"
	"github.com/okian/studbook/internal/domain/inbreeding"
	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/internal/domain/pedigree"
	"github.com/okian/studbook/internal/domain/scoring"
	"github.com/okian/studbook/pkg/logger"
	"github.com/okian/studbook/pkg/metrics"
)

// Default planner configuration constants.
const (
	defaultMaxDepth      = 5
	defaultLookupTimeout = 2 * time.Second
)

// Planner is the mating plan service. It is safe for concurrent use; all
// per-run state lives in the run-scoped cache and calculators.
type Planner struct {
	source registry.Source

	maxDepth             int
	lookupConcurrency    int
	lookupTimeout        time.Duration
	scoringWorkers       int
	allowNegativeWeights bool

	logger logger.Logger
}

// New constructs a Planner over the given record source.
func New(source registry.Source, opts ...Option) *Planner {
	p := &Planner{
		source:            source,
		maxDepth:          defaultMaxDepth,
		lookupConcurrency: runtime.NumCPU() * 2,
		lookupTimeout:     defaultLookupTimeout,
		scoringWorkers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("planner")
	}
	return p
}

// newRunCache creates the lookup cache for one planning invocation.
func (p *Planner) newRunCache() *registry.Cache {
	return registry.NewCache(p.source,
		registry.WithConcurrency(p.lookupConcurrency),
		registry.WithLookupTimeout(p.lookupTimeout),
	)
}

// BuildPedigreeTree expands the ancestry of subjectID to maxDepth
// generations. Unresolvable ancestors truncate the tree; an unresolvable
// subject itself is a hard error.
func (p *Planner) BuildPedigreeTree(ctx context.Context, subjectID string, maxDepth int) (*pedigree.Tree, error) {
	tree, err := pedigree.Build(ctx, subjectID, maxDepth, p.newRunCache())
	if err != nil {
		return nil, err
	}
	if tree.Root.Record == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subjectID)
	}
	return tree, nil
}

// InbreedingCoefficient projects the coefficient of the offspring of
// sireID x damID. For an existing individual, pass its recorded parents.
// When either root cannot be resolved at all, the result carries a zero
// coefficient with InsufficientData set rather than an error.
func (p *Planner) InbreedingCoefficient(ctx context.Context, sireID, damID string, maxDepth int) (inbreeding.Result, error) {
	cache := p.newRunCache()
	sireTree, err := pedigree.Build(ctx, sireID, maxDepth, cache)
	if err != nil {
		return inbreeding.Result{}, err
	}
	damTree, err := pedigree.Build(ctx, damID, maxDepth, cache)
	if err != nil {
		return inbreeding.Result{}, err
	}
	return inbreeding.New().Coefficient(sireTree, damTree), nil
}

// ScorePair scores one candidate sire/dam combination against index under
// the given inbreeding ceiling.
func (p *Planner) ScorePair(ctx context.Context, sire, dam model.AnimalRecord, index model.SelectionIndex, maxInbreeding float64) (model.MatingPair, error) {
	if err := p.validateIndex(index); err != nil {
		return model.MatingPair{}, err
	}
	if maxInbreeding < 0 || maxInbreeding > 1 {
		return model.MatingPair{}, fmt.Errorf("%w: got %g", ErrCeilingRange, maxInbreeding)
	}

	cache := p.newRunCache()
	calc := inbreeding.New()
	coefficient := func(ctx context.Context, sireID, damID string) (inbreeding.Result, error) {
		sireTree, err := pedigree.Build(ctx, sireID, p.maxDepth, cache)
		if err != nil {
			return inbreeding.Result{}, err
		}
		damTree, err := pedigree.Build(ctx, damID, p.maxDepth, cache)
		if err != nil {
			return inbreeding.Result{}, err
		}
		return calc.Coefficient(sireTree, damTree), nil
	}
	return scoring.New(index, maxInbreeding, coefficient).Score(ctx, sire, dam)
}

// PlanMatings scores every sire/dam combination and assigns dams to sires
// under per-sire capacity and the inbreeding ceiling.
//
// The run has three phases: a mandatory concurrent pre-fetch that resolves
// every record and tree, a pure scoring phase over the resulting snapshot,
// and a greedy deterministic assignment. No external lookup happens after
// the pre-fetch phase.
func (p *Planner) PlanMatings(ctx context.Context, sires []model.SireAllocation, dams []string, index model.SelectionIndex, maxInbreeding float64) (*model.MatingPlan, error) {
	if len(dams) == 0 {
		return nil, ErrNoDams
	}
	if maxInbreeding < 0 || maxInbreeding > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrCeilingRange, maxInbreeding)
	}
	for _, s := range sires {
		if s.Capacity < 0 {
			return nil, fmt.Errorf("%w: sire %s has capacity %d", ErrInvalidCapacity, s.SireID, s.Capacity)
		}
	}
	if err := p.validateIndex(index); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()
	cache := p.newRunCache()

	// Pre-fetch phase: every record and tree needed for scoring.
	subjects := make([]string, 0, len(sires)+len(dams))
	for _, s := range sires {
		subjects = append(subjects, s.SireID)
	}
	subjects = append(subjects, dams...)

	pool := prefetch.NewPool(
		func(ctx context.Context, id string) (*pedigree.Tree, error) {
			return pedigree.Build(ctx, id, p.maxDepth, cache)
		},
		prefetch.WithWorkers(p.lookupConcurrency),
		prefetch.WithLogger(p.logger),
	)
	trees := pool.Run(ctx, subjects)
	p.logger.Info(ctx, "pre-fetch complete",
		logger.String("run", runID),
		logger.Int("subjects", len(subjects)),
		logger.Int("resolvedIDs", cache.Len()),
	)

	// Scoring phase: pure computation over the pre-fetched snapshot.
	pairs := p.scoreAll(ctx, sires, dams, trees, index, maxInbreeding)

	// Assignment phase: greedy over eligible pairs, best score first.
	plan := assemble(runID, sires, dams, pairs)

	metrics.RecordPlanBuilt()
	metrics.UpdateUnassignedDams(len(plan.UnassignedDams))
	metrics.ObservePlanDuration(time.Since(start).Seconds())
	p.logger.Info(ctx, "mating plan built",
		logger.String("run", runID),
		logger.Int("assignments", plan.AssignedDams()),
		logger.Int("unassignedDams", len(plan.UnassignedDams)),
		logger.Int("excludedPairs", len(plan.ExcludedPairs)),
	)
	return plan, nil
}

// scoreAll scores every sire/dam combination in parallel. Pairs land in a
// slice indexed by combination, so worker interleaving cannot change the
// output. Each worker carries its own calculator; the memo is cheap to
// rebuild and this keeps the workers free of shared mutable state.
func (p *Planner) scoreAll(ctx context.Context, sires []model.SireAllocation, dams []string, trees map[string]*pedigree.Tree, index model.SelectionIndex, maxInbreeding float64) []model.MatingPair {
	pairs := make([]model.MatingPair, len(sires)*len(dams))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.scoringWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			calc := inbreeding.New()
			coefficient := func(_ context.Context, sireID, damID string) (inbreeding.Result, error) {
				return calc.Coefficient(trees[sireID], trees[damID]), nil
			}
			scorer := scoring.New(index, maxInbreeding, coefficient)
			for idx := range jobs {
				sireID := sires[idx/len(dams)].SireID
				damID := dams[idx%len(dams)]
				pairs[idx] = p.scoreOne(ctx, scorer, trees, sireID, damID)
			}
		}()
	}
	for idx := range pairs {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return pairs
}

// scoreOne scores a single combination, degrading unresolvable records to
// an excluded pair instead of failing the run.
func (p *Planner) scoreOne(ctx context.Context, scorer *scoring.Scorer, trees map[string]*pedigree.Tree, sireID, damID string) model.MatingPair {
	sireRec := rootRecord(trees[sireID])
	damRec := rootRecord(trees[damID])
	if sireRec == nil || damRec == nil {
		missing := sireID
		if sireRec != nil {
			missing = damID
		}
		return model.MatingPair{
			SireID:            sireID,
			DamID:             damID,
			Risk:              model.RiskLow,
			InbreedingUnknown: true,
			Excluded:          true,
			ExclusionReason:   fmt.Sprintf("no record resolved for %s", missing),
		}
	}

	pair, err := scorer.Score(ctx, *sireRec, *damRec)
	if err != nil {
		// Only cancellation reaches here; keep the pair visible either way.
		return model.MatingPair{
			SireID:            sireID,
			DamID:             damID,
			Risk:              model.RiskLow,
			InbreedingUnknown: true,
			Excluded:          true,
			ExclusionReason:   fmt.Sprintf("scoring aborted: %v", err),
		}
	}
	return pair
}

func rootRecord(t *pedigree.Tree) *model.AnimalRecord {
	if t == nil || t.Root == nil {
		return nil
	}
	return t.Root.Record
}

// assemble runs the greedy assignment and gathers the plan output.
//
// Eligible pairs are taken in descending score order, ties broken by
// (sire id, dam id) ascending, so identical inputs always produce an
// identical plan. An excluded pair is never assignable, even when a dam
// has no other option; such a dam stays unassigned.
func assemble(runID string, sires []model.SireAllocation, dams []string, pairs []model.MatingPair) *model.MatingPlan {
	eligible := make([]int, 0, len(pairs))
	excluded := make([]model.MatingPair, 0)
	for i, pr := range pairs {
		if pr.Excluded {
			excluded = append(excluded, pr)
			continue
		}
		eligible = append(eligible, i)
	}
	sort.Slice(eligible, func(a, b int) bool {
		pa, pb := pairs[eligible[a]], pairs[eligible[b]]
		if pa.Score != pb.Score {
			return pa.Score > pb.Score
		}
		if pa.SireID != pb.SireID {
			return pa.SireID < pb.SireID
		}
		return pa.DamID < pb.DamID
	})
	sort.Slice(excluded, func(a, b int) bool {
		if excluded[a].SireID != excluded[b].SireID {
			return excluded[a].SireID < excluded[b].SireID
		}
		return excluded[a].DamID < excluded[b].DamID
	})

	capacity := make(map[string]int, len(sires))
	for _, s := range sires {
		capacity[s.SireID] += s.Capacity
	}

	assigned := make(map[string]bool, len(dams))
	assignments := make([]model.MatingPair, 0, len(dams))
	for _, i := range eligible {
		pr := pairs[i]
		if assigned[pr.DamID] || capacity[pr.SireID] <= 0 {
			continue
		}
		assigned[pr.DamID] = true
		capacity[pr.SireID]--
		assignments = append(assignments, pr)
	}

	unassigned := make([]string, 0)
	for _, d := range dams {
		if !assigned[d] {
			unassigned = append(unassigned, d)
		}
	}

	return &model.MatingPlan{
		RunID:          runID,
		Assignments:    assignments,
		UnassignedDams: unassigned,
		ExcludedPairs:  excluded,
	}
}

func (p *Planner) validateIndex(index model.SelectionIndex) error {
	if p.allowNegativeWeights {
		return nil
	}
	for code, w := range index.Weights {
		if w < 0 {
			return fmt.Errorf("%w: trait %q has weight %g", ErrNegativeWeight, code, w)
		}
	}
	return nil
}
