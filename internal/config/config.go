// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the document store: memory, sqlite, postgres, mongo.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the path or URI handed to the store driver.
	StoreDSN string `koanf:"store_dsn"`

	// MongoDatabase names the database used by the mongo driver.
	MongoDatabase string `koanf:"mongo_database"`

	// ChunkSize bounds the keys sent in one reference query. It may not
	// exceed the store's value-in-list ceiling.
	ChunkSize int `koanf:"chunk_size"`

	// ResolveConcurrency bounds concurrent chunk queries per entity type.
	ResolveConcurrency int `koanf:"resolve_concurrency"`

	// ResolvePolicy is fail_fast or best_effort.
	ResolvePolicy string `koanf:"resolve_policy"`

	// SessionStore selects memory or redis sessions.
	SessionStore string `koanf:"session_store"`

	// SessionTTL is how long a session lasts after sign-in.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// Redis connection used when SessionStore is redis.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// AccessCodes gates registration. Empty leaves registration open.
	AccessCodes []string `koanf:"access_codes"`

	// CORSAllowedOrigins lists the single-page app origins.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		StoreDriver:        "memory",
		MongoDatabase:      "portal",
		ChunkSize:          10,
		ResolveConcurrency: 4,
		ResolvePolicy:      "fail_fast",
		SessionStore:       "memory",
		SessionTTL:         12 * time.Hour,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
}
