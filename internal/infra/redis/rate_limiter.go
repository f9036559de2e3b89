package redis

import (
	"context"
	"time"

	"apivro/internal/domain/ports/adapter"
	"apivro/internal/infra/metrics"
)

var _ adapter.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter: INCR, and EXPIRE on the first hit.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	key = rateKey(key)
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		metrics.IncRateLimited("redis")
		return false, nil
	}
	return true, nil
}

func rateKey(key string) string { return "rate_limit:" + key }
