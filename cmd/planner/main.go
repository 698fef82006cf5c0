// Command planner generates a synthetic herd, plans matings for it, and
// logs the resulting plan. Configuration comes from the environment and an
// optional YAML file (STUDBOOK_CONFIG); there are no flags.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/studbook/internal/adapters/registry"
	app "github.com/okian/studbook/internal/app"
	"github.com/okian/studbook/internal/config"
	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/internal/herdgen"
	"github.com/okian/studbook/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	herd := herdgen.New(
		herdgen.WithFounders(cfg.HerdFounders),
		herdgen.WithGenerations(cfg.HerdGenerations),
		herdgen.WithSeed(cfg.HerdSeed),
		herdgen.WithTraits(traitCodes(cfg.TraitWeights)),
	).Generate()
	source := registry.NewMemorySource(registry.WithRecords(herd.Records))
	log.Info(ctx, "synthetic herd generated",
		logger.Int("records", source.Len()),
		logger.Int("sireCandidates", len(herd.SireIDs)),
		logger.Int("damCandidates", len(herd.DamIDs)),
	)

	planner := app.New(source,
		app.WithMaxDepth(cfg.PedigreeDepth),
		app.WithLookupConcurrency(cfg.LookupConcurrency),
		app.WithLookupTimeout(time.Duration(cfg.LookupTimeoutMS)*time.Millisecond),
		app.WithScoringWorkers(cfg.ScoringWorkers),
		app.WithNegativeWeightsAllowed(cfg.AllowNegativeWeights),
		app.WithLogger(log),
	)

	sires := make([]model.SireAllocation, 0, cfg.PlanSires)
	for _, id := range firstN(herd.SireIDs, cfg.PlanSires) {
		sires = append(sires, model.SireAllocation{SireID: id, Capacity: cfg.SireCapacity})
	}
	dams := firstN(herd.DamIDs, cfg.PlanDams)
	index := model.SelectionIndex{Name: "configured", Weights: cfg.TraitWeights}

	plan, err := planner.PlanMatings(ctx, sires, dams, index, cfg.InbreedingCeiling)
	if err != nil {
		log.Error(ctx, "planning failed", logger.Error(err))
		return
	}

	for _, a := range plan.Assignments {
		log.Info(ctx, "assignment",
			logger.String("sire", a.SireID),
			logger.String("dam", a.DamID),
			logger.Float64("score", a.Score),
			logger.Float64("inbreeding", a.ProjectedInbreeding),
			logger.String("risk", string(a.Risk)),
		)
	}
	for _, d := range plan.UnassignedDams {
		log.Warn(ctx, "dam left unassigned", logger.String("dam", d))
	}
	log.Info(ctx, "plan summary",
		logger.String("run", plan.RunID),
		logger.Int("assignments", plan.AssignedDams()),
		logger.Int("unassignedDams", len(plan.UnassignedDams)),
		logger.Int("excludedPairs", len(plan.ExcludedPairs)),
		logger.Int("registryLookups", int(source.Calls())),
	)
}

func firstN(ids []string, n int) []string {
	if n > len(ids) {
		n = len(ids)
	}
	return ids[:n]
}

func traitCodes(weights map[string]float64) []string {
	codes := make([]string, 0, len(weights))
	for code := range weights {
		codes = append(codes, code)
	}
	return codes
}
