// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/adapters/docstore"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/adapters/repository"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/resolve"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

// Service implements the API dependencies for the artist portal.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    docstore.Store
	repo     *repository.Repository
	resolver *resolve.Resolver
	sessions session.Store

	// Configuration
	sessionTTL  time.Duration
	accessCodes map[string]struct{}
	now         func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the document store backing every collection.
func WithStore(store docstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithResolver sets the reference resolver used by aggregation passes.
func WithResolver(r *resolve.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithSessions sets the session store.
func WithSessions(store session.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithSessionTTL sets how long a session stays valid after sign-in.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithAccessCodes sets the early-access codes accepted at registration.
// An empty list leaves registration open.
func WithAccessCodes(codes []string) Option {
	return func(s *Service) {
		s.accessCodes = make(map[string]struct{}, len(codes))
		for _, c := range codes {
			if c != "" {
				s.accessCodes[c] = struct{}{}
			}
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessionTTL:  session.DefaultTTL,
		accessCodes: map[string]struct{}{},
		now:         func() time.Time { return time.Now().UTC() },
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = docstore.NewMemory()
	}
	if s.sessions == nil {
		s.sessions = session.NewMemory(s.now)
	}
	if s.resolver == nil {
		s.resolver = resolve.New()
	}
	s.repo = repository.New(s.store)
	return s
}

// Start finishes wiring the service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.started = true
	s.logger.Info(ctx, "portal service started",
		logger.Int("chunkSize", s.resolver.ChunkSize()),
		logger.String("resolvePolicy", string(s.resolver.Policy())),
		logger.Int("accessCodes", len(s.accessCodes)),
		logger.Duration("sessionTTL", s.sessionTTL),
	)

	return nil
}

// Stop releases the store and the session store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	if err := s.repo.Close(); err != nil {
		s.logger.Warn(ctx, "closing store", logger.Error(err))
	}
	if err := s.sessions.Close(); err != nil {
		s.logger.Warn(ctx, "closing session store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "portal service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"accessCodes": len(s.accessCodes),
		"sessionTTL":  s.sessionTTL.String(),
	}
	stats["chunkSize"] = s.resolver.ChunkSize()
	stats["resolvePolicy"] = string(s.resolver.Policy())
	if m, ok := s.sessions.(*session.Memory); ok {
		stats["activeSessions"] = m.Len()
	}
	return stats
}

func (s *Service) newKey() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), ulid.DefaultEntropy()).String()
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Nop()
	}
	return s.logger
}

// backendErr wraps a failure from a lower layer as a backend failure unless
// it already carries a kind or is a cancellation of ctx.
func backendErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	for _, kind := range []error{types.ErrNotFound, types.ErrConflict, types.ErrValidation, types.ErrUnauthorized, types.ErrAccessDenied} {
		if errors.Is(err, kind) {
			return types.Op(op, kind, err)
		}
	}
	return types.Op(op, types.ErrBackend, err)
}
