package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
)

const redisPrefix = "portal:session:"

// Redis stores sessions as JSON values whose TTL matches their expiry.
type Redis struct {
	rdb *goredis.Client
	now func() time.Time
}

var _ Store = (*Redis)(nil)

// RedisOptions configures the redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to redis and verifies the connection.
func NewRedis(ctx context.Context, o RedisOptions) (*Redis, error) {
	if o.Addr == "" {
		return nil, errors.New("redis address required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        o.Addr,
		Password:    o.Password,
		DB:          o.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, now: time.Now}, nil
}

// Save implements Store.
func (r *Redis) Save(ctx context.Context, s Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return ErrExpired
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisPrefix+s.Token, raw, ttl).Err()
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, token string) (Session, error) {
	raw, err := r.rdb.Get(ctx, redisPrefix+token).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if s.Expired(r.now()) {
		return Session{}, ErrExpired
	}
	return s, nil
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, token string) error {
	return r.rdb.Del(ctx, redisPrefix+token).Err()
}

// Close implements Store.
func (r *Redis) Close() error { return r.rdb.Close() }
