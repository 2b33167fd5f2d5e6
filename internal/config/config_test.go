package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			convey.So(cfg.ChunkSize, convey.ShouldEqual, 10)
			convey.So(cfg.ResolveConcurrency, convey.ShouldEqual, 4)
			convey.So(cfg.ResolvePolicy, convey.ShouldEqual, "fail_fast")
			convey.So(cfg.SessionStore, convey.ShouldEqual, "memory")
			convey.So(cfg.SessionTTL, convey.ShouldEqual, 12*time.Hour)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configurations", t, func() {
		ctx := context.Background()
		cases := map[string]func(c *config.Config){
			"empty addr":            func(c *config.Config) { c.Addr = "" },
			"unknown driver":        func(c *config.Config) { c.StoreDriver = "cassandra" },
			"zero chunk size":       func(c *config.Config) { c.ChunkSize = 0 },
			"chunk over ceiling":    func(c *config.Config) { c.ChunkSize = 11 },
			"zero concurrency":      func(c *config.Config) { c.ResolveConcurrency = 0 },
			"unknown policy":        func(c *config.Config) { c.ResolvePolicy = "retry" },
			"redis without address": func(c *config.Config) { c.SessionStore = "redis" },
			"unknown session store": func(c *config.Config) { c.SessionStore = "cookie" },
			"zero ttl":              func(c *config.Config) { c.SessionTTL = 0 },
		}

		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New(ctx)
				mutate(cfg)
				err := cfg.Validate(ctx)

				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
