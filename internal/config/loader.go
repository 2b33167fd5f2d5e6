package config

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// maxChunkSize is the smallest value-in-list ceiling among the stores.
const maxChunkSize = 10

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if PORTAL_CONFIG is set
//  3. env (prefix PORTAL_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("PORTAL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadErr(err)
		}
	}

	// Map env keys like PORTAL_CHUNK_SIZE -> chunk_size (flat keys).
	envProvider := env.Provider("PORTAL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "portal_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, loadErr(err)
	}

	cfg := *base
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	})
	if err != nil {
		return nil, loadErr(err)
	}
	cfg.AccessCodes = trimAll(cfg.AccessCodes)
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c *Config) Validate(_ context.Context) error {
	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	if !slices.Contains([]string{"memory", "sqlite", "postgres", "mongo"}, c.StoreDriver) {
		return invalid("unknown store_driver %q", c.StoreDriver)
	}
	if c.ChunkSize < 1 || c.ChunkSize > maxChunkSize {
		return invalid("chunk_size must be between 1 and %d, got %d", maxChunkSize, c.ChunkSize)
	}
	if c.ResolveConcurrency < 1 {
		return invalid("resolve_concurrency must be positive, got %d", c.ResolveConcurrency)
	}
	switch c.ResolvePolicy {
	case "fail_fast", "best_effort":
	default:
		return invalid("unknown resolve_policy %q", c.ResolvePolicy)
	}
	switch c.SessionStore {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return invalid("redis_addr is required for redis sessions")
		}
	default:
		return invalid("unknown session_store %q", c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return invalid("session_ttl must be positive")
	}
	return nil
}

func trimAll(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
