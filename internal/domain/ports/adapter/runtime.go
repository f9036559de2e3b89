package adapter

import (
	"context"
	"time"
)

// Locker is a best-effort distributed mutex.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RateLimiter answers whether another hit on key fits in the window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TaskRunner executes best-effort work off the request path.
type TaskRunner interface {
	Submit(name string, task func(ctx context.Context) error) bool
}
