package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 10)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://localhost:3000"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PORTAL_ADDR", ":8080")
			_ = os.Setenv("PORTAL_CHUNK_SIZE", "5")
			_ = os.Setenv("PORTAL_RESOLVE_POLICY", "best_effort")
			_ = os.Setenv("PORTAL_SESSION_TTL", "30m")
			_ = os.Setenv("PORTAL_ACCESS_CODES", "EARLY, VIP ,")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 5)
				convey.So(cfg.ResolvePolicy, convey.ShouldEqual, "best_effort")
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.AccessCodes, convey.ShouldResemble, []string{"EARLY", "VIP"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# file layer
addr: ":9090"
store_driver: sqlite
store_dsn: /tmp/portal.db
resolve_concurrency: 2
access_codes:
  - ALPHA
  - BETA
cors_allowed_origins:
  - https://portal.example.com
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PORTAL_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.StoreDSN, convey.ShouldEqual, "/tmp/portal.db")
				convey.So(cfg.ResolveConcurrency, convey.ShouldEqual, 2)
				convey.So(cfg.AccessCodes, convey.ShouldResemble, []string{"ALPHA", "BETA"})
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://portal.example.com"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
resolve_concurrency: 2
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PORTAL_CONFIG", tmpFile)
			_ = os.Setenv("PORTAL_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")        // Overridden by env
				convey.So(cfg.ResolveConcurrency, convey.ShouldEqual, 2) // From file
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PORTAL_CONFIG", "/nonexistent/portal.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("PORTAL_CHUNK_SIZE", "25")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an invalid config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "chunk_size")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with YAML file containing empty values", func() {
			yamlContent := `
addr: ""
chunk_size:
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PORTAL_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"PORTAL_CONFIG",
		"PORTAL_ADDR",
		"PORTAL_CHUNK_SIZE",
		"PORTAL_RESOLVE_POLICY",
		"PORTAL_SESSION_TTL",
		"PORTAL_ACCESS_CODES",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "portal-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
