package repository

import (
	"context"
	"time"

	"apivro/internal/domain/model"
)

type APIKeyRepository interface {
	Save(ctx context.Context, tx Tx, k *model.APIKey) error
	// FindActiveByHash only returns keys with is_active = true.
	FindActiveByHash(ctx context.Context, tx Tx, hash string) (*model.APIKey, error)
	TouchLastUsed(ctx context.Context, tx Tx, id string, at time.Time) error
	Revoke(ctx context.Context, tx Tx, id string) error
}
