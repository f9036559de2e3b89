//go:build !integration

package postgres

import (
	"context"
	"time"

	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
	red "apivro/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerPlanRepo mocks the database repository that the Plan decorator wraps.
type mockInnerPlanRepo struct {
	SaveFunc       func(ctx context.Context, tx repository.Tx, plan *model.Plan) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error)
	ListActiveFunc func(ctx context.Context, tx repository.Tx) ([]*model.Plan, error)
}

func (m *mockInnerPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	return m.SaveFunc(ctx, tx, plan)
}
func (m *mockInnerPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	return m.ListActiveFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave like an empty cache.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", red.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return 1, nil
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return int64(1), nil
}
func (m *mockRedisClient) Close() error { return nil }
