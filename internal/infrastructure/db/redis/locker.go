package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 3 * time.Second
	retryInterval   = 25 * time.Millisecond
	// holdMargin is the share of the TTL kept back for the release round trip
	// and clock drift between replicas.
	holdMargin = 5
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock taken over by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serialises like mutations per user across replicas.
// Key format: lock:likes:<user_id>
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewLocker creates a Locker. ttl bounds how long a crashed holder blocks the
// user; wait bounds how long Lock retries before returning domain.ErrBusy.
func NewLocker(client *redis.Client, ttl, wait time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &Locker{client: client, ttl: ttl, wait: wait, log: log}
}

func (l *Locker) Lock(ctx context.Context, userID string) (func(), error) {
	key := l.key(userID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, domain.ErrBusy
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return func() {
		// The caller's ctx may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.log.Warn().Err(err).Str("user_id", userID).Msg("lock release failed")
		}
	}, nil
}

// HoldLimit is how long a holder may work under the lock: the TTL minus a
// fifth. Callers bound their critical section with it so the key cannot
// expire while they still rely on it.
func (l *Locker) HoldLimit() time.Duration {
	return l.ttl - l.ttl/holdMargin
}

func (l *Locker) key(userID string) string {
	return fmt.Sprintf("lock:likes:%s", userID)
}
