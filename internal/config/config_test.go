package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the documented defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.MinSamples, convey.ShouldEqual, 30)
			convey.So(cfg.TrainingWindowMonths, convey.ShouldEqual, 36)
			convey.So(cfg.RandomSeed, convey.ShouldEqual, 42)
			convey.So(cfg.TopK, convey.ShouldEqual, 5)
			convey.So(cfg.MinProbability, convey.ShouldEqual, 0.05)
			convey.So(cfg.ExperienceBandYears, convey.ShouldEqual, 3)
			convey.So(cfg.SimilarAlumniLimit, convey.ShouldEqual, 5)
			convey.So(cfg.RetryMaxAttempts, convey.ShouldEqual, 3)
			convey.So(cfg.CacheEnabled(), convey.ShouldBeFalse)
		})

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given configs that break constraints", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"unknown driver", func(c *config.Config) { c.DatabaseDriver = "oracle" }},
			{"empty dsn", func(c *config.Config) { c.DatabaseDSN = "" }},
			{"zero top k", func(c *config.Config) { c.TopK = 0 }},
			{"top k above five", func(c *config.Config) { c.TopK = 6 }},
			{"probability one", func(c *config.Config) { c.MinProbability = 1 }},
			{"no retries", func(c *config.Config) { c.RetryMaxAttempts = 0 }},
			{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"zero cache ttl", func(c *config.Config) { c.CacheTTL = 0 }},
			{"negative job timeout", func(c *config.Config) { c.JobTimeout = -time.Second }},
		}
		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" is rejected", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
