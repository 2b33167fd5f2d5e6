// Package resolve turns reference keys held by primary records into lookup
// tables of the referenced entities.
//
// Keys are de-duplicated, split into chunks no larger than the backend's
// "value in list" ceiling, and fetched with one query per chunk. Chunk
// queries run concurrently; the table is only built once every chunk query
// has returned.
package resolve

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/chunk"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/metrics"
)

// Default resolver configuration constants.
const (
	DefaultChunkSize   = 10
	defaultConcurrency = 4
)

// Policy decides what a failed chunk query does to the pass.
type Policy string

const (
	// FailFast cancels the remaining chunk queries and fails the pass.
	FailFast Policy = "fail_fast"
	// BestEffort logs the failure and leaves the chunk's keys unresolved.
	BestEffort Policy = "best_effort"
)

// ParsePolicy parses a policy name; the empty string means FailFast.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", FailFast:
		return FailFast, nil
	case BestEffort:
		return BestEffort, nil
	default:
		return "", fmt.Errorf("unknown resolve policy %q", s)
	}
}

// LookupTable maps a business key to the referenced entity.
type LookupTable[V any] map[string]V

// Lookup returns the entity for key and whether it was found.
func (t LookupTable[V]) Lookup(key string) (V, bool) {
	v, ok := t[key]
	return v, ok
}

// Misses counts the references in keys that have no entry in t.
func (t LookupTable[V]) Misses(keys []string) int {
	n := 0
	for _, k := range keys {
		if _, ok := t[k]; !ok {
			n++
		}
	}
	return n
}

// Fetcher loads the entities whose business key is in keys. len(keys) never
// exceeds the resolver's chunk size.
type Fetcher[V any] func(ctx context.Context, keys []string) ([]V, error)

// Resolver holds the chunking and concurrency settings shared by every
// entity type.
type Resolver struct {
	chunkSize   int
	concurrency int
	policy      Policy
	logger      logger.Logger
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithChunkSize sets the maximum number of keys per query.
func WithChunkSize(size int) Option {
	return func(r *Resolver) {
		if size > 0 {
			r.chunkSize = size
		}
	}
}

// WithConcurrency bounds the concurrent chunk queries per entity type.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithPolicy sets the chunk failure policy.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		if p == FailFast || p == BestEffort {
			r.policy = p
		}
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New constructs a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		chunkSize:   DefaultChunkSize,
		concurrency: min(defaultConcurrency, runtime.NumCPU()),
		policy:      FailFast,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ChunkSize returns the configured chunk size.
func (r *Resolver) ChunkSize() int { return r.chunkSize }

// Policy returns the configured failure policy.
func (r *Resolver) Policy() Policy { return r.policy }

// Resolve builds the lookup table for one entity type. entity names the
// type in logs and metrics. keyOf extracts the business key of a fetched
// entity.
//
// If ctx is cancelled before every chunk query returns, Resolve returns the
// context error and no table.
func Resolve[V any](ctx context.Context, r *Resolver, entity string, keys []string, fetch Fetcher[V], keyOf func(V) string) (LookupTable[V], error) {
	distinct := chunk.Distinct(keys)
	if len(distinct) == 0 {
		return LookupTable[V]{}, nil
	}
	groups := chunk.Split(distinct, r.chunkSize)

	// One slot per chunk; goroutines never share a slot.
	results := make([][]V, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, group := range groups {
		g.Go(func() error {
			// Chunks queued behind the limit are skipped once the pass has
			// already failed or been cancelled. The group or ctx carries the error.
			if gctx.Err() != nil {
				return nil
			}
			metrics.RecordChunkQuery(entity)
			vals, err := fetch(gctx, group)
			if err == nil {
				results[i] = vals
				return nil
			}
			metrics.RecordChunkFailure(entity)
			if r.policy == BestEffort && ctx.Err() == nil {
				r.logger.Warn(ctx, "reference chunk query failed; keys fall back to defaults",
					logger.String("entity", entity),
					logger.Int("chunk", i),
					logger.Strings("keys", group),
					logger.Error(err),
				)
				return nil
			}
			return fmt.Errorf("resolve %s chunk %d: %w", entity, i, err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := make(LookupTable[V], len(distinct))
	for _, vals := range results {
		for _, v := range vals {
			k := keyOf(v)
			if _, dup := table[k]; !dup {
				table[k] = v
			}
		}
	}
	r.logger.Debug(ctx, "references resolved",
		logger.String("entity", entity),
		logger.Int("keys", len(distinct)),
		logger.Int("chunks", len(groups)),
		logger.Int("found", len(table)),
	)
	return table, nil
}
