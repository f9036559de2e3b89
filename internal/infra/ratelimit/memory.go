// Package ratelimit holds the in-process limiter used when redis is not configured.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"apivro/internal/domain/ports/adapter"
	"apivro/internal/infra/metrics"
)

var _ adapter.RateLimiter = (*Memory)(nil)

// Memory keeps one token bucket per key. limit hits per window, burst = limit.
type Memory struct {
	mu       sync.Mutex
	limiters map[string]*entry
	maxIdle  time.Duration
	now      func() time.Time
}

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewMemory() *Memory {
	return &Memory{limiters: make(map[string]*entry), maxIdle: 10 * time.Minute, now: time.Now}
}

func (m *Memory) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	now := m.now()

	m.mu.Lock()
	e, ok := m.limiters[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		m.limiters[key] = e
	}
	e.lastSeen = now
	m.gc(now)
	m.mu.Unlock()

	if !e.lim.AllowN(now, 1) {
		metrics.IncRateLimited("memory")
		return false, nil
	}
	return true, nil
}

// gc drops idle buckets; caller holds mu.
func (m *Memory) gc(now time.Time) {
	if len(m.limiters) < 1024 {
		return
	}
	for k, e := range m.limiters {
		if now.Sub(e.lastSeen) > m.maxIdle {
			delete(m.limiters, k)
		}
	}
}
