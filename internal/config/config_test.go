package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/gradeswap/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MaxSuggestions, convey.ShouldEqual, 50)
			convey.So(cfg.MaxPlanSwaps, convey.ShouldEqual, 0)
			convey.So(cfg.ExploreConcurrency, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DonorMaxRankDrop, convey.ShouldEqual, 0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a config with a bad value", t, func() {
		cfg := config.New()
		cfg.ExploreConcurrency = 0

		convey.Convey("Then Validate reports ErrInvalidConfig", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "explore_concurrency")
		})
	})
}
