package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
	"apivro/internal/infra/metrics"
	red "apivro/internal/infra/redis"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

const planListKey = "plans:active"

type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, cache red.RedisClient, ttl time.Duration) repository.PlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &planRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func planKey(id string) string { return "plan:" + id }

// FindByID bypasses the cache inside transactions so locked reads stay consistent.
func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := planKey(id)
	val, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var plan model.Plan
		if json.Unmarshal([]byte(val), &plan) == nil {
			metrics.IncCacheRequest("plan", "hit")
			return &plan, nil
		}
	case !errors.Is(err, redis.Nil):
		metrics.IncCacheRequest("plan", "error")
	}

	metrics.IncCacheRequest("plan", "miss")
	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(plan); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return plan, nil
}

// Save invalidates before writing.
func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	_ = d.cache.Del(ctx, planKey(plan.ID), planListKey)
	return d.inner.Save(ctx, tx, plan)
}

func (d *planRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	val, err := d.cache.Get(ctx, planListKey)
	if err == nil {
		var plans []*model.Plan
		if json.Unmarshal([]byte(val), &plans) == nil {
			metrics.IncCacheRequest("plan_list", "hit")
			return plans, nil
		}
	}

	metrics.IncCacheRequest("plan_list", "miss")
	plans, err := d.inner.ListActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(plans) > 0 {
		if b, err := json.Marshal(plans); err == nil {
			_ = d.cache.Set(ctx, planListKey, b, d.ttl)
		}
	}
	return plans, nil
}
