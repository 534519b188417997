// Package memory is the process-local session store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gosuda/honeypot/internal/domain"
)

// SessionStore keeps sessions in a map. Sessions are copied on the way in
// and out, so callers never share state with the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

// Option configures a SessionStore.
type Option func(*SessionStore)

// WithClock overrides the time source used for eviction.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(opts ...Option) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) GetOrCreate(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return domain.NewSession(id), nil
	}
	return sess.Clone(), nil
}

func (s *SessionStore) Save(_ context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("memory.SessionStore.Save: %w", domain.ErrInvalidSession)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess.Clone()
	s.mu.Unlock()

	return nil
}

func (s *SessionStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func (s *SessionStore) EvictOlderThan(_ context.Context, maxAge time.Duration) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastUpdatedAt) > maxAge {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
