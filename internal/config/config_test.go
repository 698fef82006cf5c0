package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/studbook/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.PedigreeDepth, convey.ShouldEqual, 5)
			convey.So(cfg.InbreedingCeiling, convey.ShouldEqual, 0.0625)
			convey.So(cfg.LookupConcurrency, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.LookupTimeoutMS, convey.ShouldEqual, 2000)
			convey.So(cfg.ScoringWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.TraitWeights, convey.ShouldContainKey, "milk_yield")
			convey.So(cfg.AllowNegativeWeights, convey.ShouldBeFalse)
			convey.So(cfg.HerdFounders, convey.ShouldEqual, 24)
			convey.So(cfg.SireCapacity, convey.ShouldEqual, 3)
		})
	})
}
