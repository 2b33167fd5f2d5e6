// Package session holds signed-in user sessions.
//
// A Session is created at sign-in and removed at sign-out. It travels
// through request handling explicitly, on the request context, instead of
// living in process-wide state.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is the lifetime given to sessions when none is configured.
const DefaultTTL = 12 * time.Hour

// Errors returned by stores.
var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Session identifies the signed-in user for a sequence of requests.
type Session struct {
	Token       string    `json:"token"`
	UserID      string    `json:"userID"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// New opens a session for the user valid for ttl from now.
func New(userID, email, displayName string, now time.Time, ttl time.Duration) Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Session{
		Token:       uuid.NewString(),
		UserID:      userID,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions by token.
type Store interface {
	Save(ctx context.Context, s Session) error
	// Get returns ErrNotFound for unknown tokens and ErrExpired for stale ones.
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	Close() error
}

type ctxKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
