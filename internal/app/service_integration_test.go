package app_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/studbook/internal/adapters/registry"
	app "github.com/okian/studbook/internal/app"
	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/internal/herdgen"
)

func TestPlanMatingsLookupsAreBoundedByDistinctIDs(t *testing.T) {
	Convey("Given a pedigree of 8 animals shared across every combination", t, func() {
		// Every sire and dam pulls in the same four founders, so a naive
		// per-pair resolution would issue far more than 8 lookups.
		source := registry.NewMemorySource(registry.WithRecords([]model.AnimalRecord{
			founder("g1", 100),
			founder("g2", 95),
			founder("g3", 90),
			founder("g4", 85),
			child("s1", "g1", "g2", 98),
			child("s2", "g1", "g3", 96),
			child("d1", "g3", "g4", 88),
			child("d2", "g2", "g4", 86),
		}))
		planner := app.New(source, app.WithMaxDepth(4), app.WithScoringWorkers(4))

		Convey("When a plan covers all 4 sire/dam combinations", func() {
			plan, err := planner.PlanMatings(context.Background(),
				[]model.SireAllocation{alloc("s1", 2), alloc("s2", 2)},
				[]string{"d1", "d2"},
				milkIndex, 0.1,
			)

			Convey("Then each distinct animal is looked up exactly once", func() {
				So(err, ShouldBeNil)
				So(source.Calls(), ShouldEqual, 8)
			})

			Convey("Then every dam is accounted for", func() {
				So(err, ShouldBeNil)
				So(len(plan.Assignments)+len(plan.UnassignedDams), ShouldEqual, 2)
			})
		})

		Convey("When a second plan runs on the same planner", func() {
			_, err1 := planner.PlanMatings(context.Background(),
				[]model.SireAllocation{alloc("s1", 2)}, []string{"d1"}, milkIndex, 0.1)
			_, err2 := planner.PlanMatings(context.Background(),
				[]model.SireAllocation{alloc("s1", 2)}, []string{"d1"}, milkIndex, 0.1)

			Convey("Then each run resolves its own lookups, nothing is shared", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				// s1, d1 and their shared founders g1..g4 resolve per run.
				So(source.Calls(), ShouldEqual, 12)
			})
		})
	})
}

func TestPlanMatingsOverGeneratedHerd(t *testing.T) {
	Convey("Given a synthetic multi-generation herd", t, func() {
		herd := herdgen.New(
			herdgen.WithFounders(12),
			herdgen.WithGenerations(3),
			herdgen.WithSeed(7),
		).Generate()
		So(len(herd.SireIDs), ShouldBeGreaterThanOrEqualTo, 3)
		So(len(herd.DamIDs), ShouldBeGreaterThanOrEqualTo, 6)

		source := registry.NewMemorySource(registry.WithRecords(herd.Records))
		planner := app.New(source, app.WithMaxDepth(4), app.WithScoringWorkers(4))

		sires := make([]model.SireAllocation, 0, 3)
		for _, id := range herd.SireIDs[:3] {
			sires = append(sires, alloc(id, 2))
		}
		dams := herd.DamIDs[:6]

		Convey("When a plan is built over related animals", func() {
			plan, err := planner.PlanMatings(context.Background(), sires, dams,
				model.SelectionIndex{
					Name:    "production",
					Weights: map[string]float64{"milk_yield": 1.0, "fertility": 2.5},
				},
				0.0625,
			)

			Convey("Then the plan is complete and internally consistent", func() {
				So(err, ShouldBeNil)
				So(len(plan.Assignments)+len(plan.UnassignedDams), ShouldEqual, len(dams))
				So(plan.RunID, ShouldNotBeEmpty)

				perSire := map[string]int{}
				for _, a := range plan.Assignments {
					perSire[a.SireID]++
					So(a.Excluded, ShouldBeFalse)
					So(a.ProjectedInbreeding, ShouldBeLessThanOrEqualTo, 0.0625)
				}
				for id, n := range perSire {
					So(n, ShouldBeLessThanOrEqualTo, 2)
					So(id, ShouldNotBeEmpty)
				}
				for _, ex := range plan.ExcludedPairs {
					So(ex.ExclusionReason, ShouldNotBeEmpty)
				}
			})

			Convey("Then lookups stay bounded by the herd size", func() {
				So(err, ShouldBeNil)
				So(source.Calls(), ShouldBeLessThanOrEqualTo, int64(len(herd.Records)))
			})
		})
	})
}
