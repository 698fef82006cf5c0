package prefetch_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/studbook/internal/adapters/prefetch"
	"github.com/okian/studbook/internal/domain/model"
	"github.com/okian/studbook/internal/domain/pedigree"
)

func TestPoolBuildsAllTrees(t *testing.T) {
	Convey("Given a pool over a counting build function", t, func() {
		var mu sync.Mutex
		built := make(map[string]int)
		build := func(_ context.Context, id string) (*pedigree.Tree, error) {
			mu.Lock()
			built[id]++
			mu.Unlock()
			if id == "broken" {
				return nil, errors.New("boom")
			}
			return &pedigree.Tree{
				Root:     &pedigree.Node{ID: id, Record: &model.AnimalRecord{ID: id}},
				MaxDepth: 3,
			}, nil
		}
		pool := prefetch.NewPool(build, prefetch.WithWorkers(4))

		Convey("When run over a list with duplicates and empties", func() {
			trees := pool.Run(context.Background(), []string{"a", "b", "a", "", "c", "b"})

			Convey("Then each distinct id is built exactly once", func() {
				So(trees, ShouldHaveLength, 3)
				So(built["a"], ShouldEqual, 1)
				So(built["b"], ShouldEqual, 1)
				So(built["c"], ShouldEqual, 1)
				So(trees["a"].Root.Record.ID, ShouldEqual, "a")
			})
		})

		Convey("When one subject fails to build", func() {
			trees := pool.Run(context.Background(), []string{"a", "broken", "c"})

			Convey("Then the failure is omitted and the rest survive", func() {
				So(trees, ShouldHaveLength, 2)
				So(trees["broken"], ShouldBeNil)
				So(trees["a"], ShouldNotBeNil)
				So(trees["c"], ShouldNotBeNil)
			})
		})
	})
}

func TestPoolHonorsCancellation(t *testing.T) {
	Convey("Given a pool and an already-cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		build := func(_ context.Context, id string) (*pedigree.Tree, error) {
			return &pedigree.Tree{Root: &pedigree.Node{ID: id}, MaxDepth: 1}, nil
		}
		pool := prefetch.NewPool(build, prefetch.WithWorkers(2))

		Convey("When run with work pending", func() {
			trees := pool.Run(ctx, []string{"a", "b", "c", "d"})

			Convey("Then it returns without hanging", func() {
				So(len(trees), ShouldBeLessThanOrEqualTo, 4)
			})
		})
	})
}
