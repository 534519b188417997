// Package redis stores sessions in Redis so several service instances can
// share conversation state.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gosuda/honeypot/internal/domain"
)

const (
	keyPrefix        = "honeypot:"
	defaultLockTTL   = time.Minute
	defaultLockRetry = 25 * time.Millisecond
	unlockTimeout    = 2 * time.Second
	sessionKeyPrefix = keyPrefix + "session:"
	lockKeyPrefix    = keyPrefix + "lock:"
)

// evictScript selects and removes stale sessions in one atomic step, so a
// session saved after the cutoff is never deleted.
//
//nolint:gochecknoglobals // compiled once
var evictScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', '(' .. ARGV[1])
for _, id in ipairs(ids) do
	redis.call('DEL', ARGV[2] .. id)
	redis.call('ZREM', KEYS[1], id)
end
return #ids
`)

// SessionStore keeps each session as a JSON string and indexes all session
// IDs in a sorted set scored by last update time in epoch milliseconds.
type SessionStore struct {
	client    *redis.Client
	now       func() time.Time
	lockTTL   time.Duration
	lockRetry time.Duration
}

// Option configures a SessionStore.
type Option func(*SessionStore)

// WithLockTTL bounds how long a session lock survives a crashed holder. It
// also caps how long Lock waits.
func WithLockTTL(d time.Duration) Option {
	return func(s *SessionStore) {
		if d > 0 {
			s.lockTTL = d
		}
	}
}

// WithLockRetry sets the polling interval while waiting for a held lock.
func WithLockRetry(d time.Duration) Option {
	return func(s *SessionStore) {
		if d > 0 {
			s.lockRetry = d
		}
	}
}

func New(ctx context.Context, addr, password string, db int, opts ...Option) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return NewWithClient(client, opts...), nil
}

// NewWithClient wraps an existing client. The store takes ownership of it.
func NewWithClient(client *redis.Client, opts ...Option) *SessionStore {
	s := &SessionStore{
		client:    client,
		now:       time.Now,
		lockTTL:   defaultLockTTL,
		lockRetry: defaultLockRetry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetClock overrides the time source used for eviction.
func (s *SessionStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SessionStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis.SessionStore.Close: %w", err)
	}
	return nil
}

func (s *SessionStore) GetOrCreate(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis.SessionStore.GetOrCreate: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("redis.SessionStore.GetOrCreate: decode %s: %w", id, err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("redis.SessionStore.Save: %w", domain.ErrInvalidSession)
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis.SessionStore.Save: encode %s: %w", sess.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, SessionKey(sess.ID), raw, 0)
	pipe.ZAdd(ctx, IndexKey(), redis.Z{
		Score:  float64(sess.LastUpdatedAt.UnixMilli()),
		Member: sess.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis.SessionStore.Save: %w", err)
	}
	return nil
}

func (s *SessionStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, IndexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis.SessionStore.Count: %w", err)
	}
	return int(n), nil
}

func (s *SessionStore) EvictOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge).UnixMilli()

	n, err := evictScript.Run(ctx, s.client, []string{IndexKey()}, cutoff, sessionKeyPrefix).Int()
	if err != nil {
		return 0, fmt.Errorf("redis.SessionStore.EvictOlderThan: %w", err)
	}
	return n, nil
}

// SessionKey returns the Redis key holding a session document.
func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

// LockKey returns the key guarding a session's read-modify-write cycle.
func LockKey(id string) string {
	return lockKeyPrefix + id
}

// IndexKey returns the sorted set indexing every stored session.
func IndexKey() string {
	return keyPrefix + "sessions"
}
