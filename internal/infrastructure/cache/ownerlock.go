package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

const (
	ownerLockKeyPrefix = "lock:owner:"
	defaultLockTTL     = 30 * time.Second
)

var errLockHeld = errors.New("owner lock held")

// releaseScript deletes the lock only if it still carries our token, so an
// expired holder never releases a lock someone else acquired since.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry forward while the token still matches.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisOwnerLocker serializes pool work per owner across processes. A held
// lock is extended every ttl/3 until released, so ttl only bounds how long a
// crashed holder blocks the owner.
type RedisOwnerLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Interface
}

func NewRedisOwnerLocker(client *redis.Client, prefix string, ttl time.Duration, log logger.Interface) *RedisOwnerLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisOwnerLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log,
	}
}

// Lock waits until the owner lock is held or ctx is done.
func (l *RedisOwnerLocker) Lock(ctx context.Context, ownerID string) (func(), error) {
	key := buildKey(l.prefix, ownerLockKeyPrefix+ownerID)
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = time.Second

	_, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return false, backoff.Permanent(fmt.Errorf("failed to acquire owner lock: %w", err))
		}
		if !ok {
			return false, errLockHeld
		}
		return true, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(0))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("waiting for owner lock %s: %w", ownerID, ctxErr)
		}
		return nil, err
	}

	l.logger.Debugw("owner lock acquired", "owner_id", ownerID)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.keepAlive(key, token, ownerID, stop)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()

			// The caller's context may already be cancelled; releasing must still happen.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warnw("failed to release owner lock", "owner_id", ownerID, "error", err)
			}
		})
	}, nil
}

func (l *RedisOwnerLocker) keepAlive(key, token, ownerID string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
		n, err := extendScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case err != nil:
			// Transient; the next tick retries while the key still has ttl left.
			l.logger.Warnw("failed to extend owner lock", "owner_id", ownerID, "error", err)
		case n == 0:
			l.logger.Errorw("owner lock lost while held", "owner_id", ownerID)
			return
		}
	}
}
