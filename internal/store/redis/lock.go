package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockTimeout is returned when a session lock could not be taken in time.
var ErrLockTimeout = errors.New("redis: session lock timeout") //nolint:gochecknoglobals // sentinel error

// releaseScript deletes the lock only while it still holds our token, so an
// expired holder never releases a lock someone else has since taken.
//
//nolint:gochecknoglobals // compiled once
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Lock takes the cross-instance lock for one session with SET NX PX and
// polls until it is free or the wait runs past ctx or the lock TTL.
func (s *SessionStore) Lock(ctx context.Context, id string) (func(), error) {
	key := LockKey(id)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()

	ticker := time.NewTicker(s.lockRetry)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis.SessionStore.Lock(%s): %w", id, err)
		}
		if ok {
			return func() { s.unlock(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("redis.SessionStore.Lock(%s): %w", id, ErrLockTimeout)
		case <-ticker.C:
		}
	}
}

func (s *SessionStore) unlock(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis: session unlock failed")
	}
}
