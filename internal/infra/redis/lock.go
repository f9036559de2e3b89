// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"apivro/internal/domain"
	"apivro/internal/domain/ports/adapter"
)

var _ adapter.Locker = (*RedisLocker)(nil)

type RedisLocker struct {
	cli     RedisClient
	retries int
	backoff time.Duration
}

func NewLocker(c RedisClient) *RedisLocker {
	return &RedisLocker{cli: c, retries: 5, backoff: 50 * time.Millisecond}
}

// TryLock returns a token that must be handed back to Unlock. Contention ends
// in domain.ErrLockNotAcquired; a redis failure is returned as is.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < l.retries; i++ {
		ok, err := l.cli.SetNX(ctx, lockKey(key), token, ttl)
		if err != nil {
			return "", fmt.Errorf("redis setnx %s: %w", lockKey(key), err)
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.backoff): // wait before retrying
		}
	}
	return "", domain.ErrLockNotAcquired
}

const luaUnlock = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

// Unlock only deletes the key if it still holds our token.
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.cli.Eval(ctx, luaUnlock, []string{lockKey(key)}, token)
	return err
}

func lockKey(key string) string { return "lock:" + key }
