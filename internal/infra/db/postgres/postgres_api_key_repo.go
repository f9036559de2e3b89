package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.APIKeyRepository = (*apiKeyRepo)(nil)

type apiKeyRepo struct{ pool *pgxpool.Pool }

func NewAPIKeyRepo(pool *pgxpool.Pool) *apiKeyRepo {
	return &apiKeyRepo{pool: pool}
}

func (r *apiKeyRepo) Save(ctx context.Context, tx repository.Tx, k *model.APIKey) error {
	const q = `
INSERT INTO api_keys (id, user_id, device_id, name, key_hash, key_prefix, is_active, last_used_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	_, err := execSQL(ctx, r.pool, tx, q, k.ID, k.UserID, k.DeviceID, k.Name, k.KeyHash, k.KeyPrefix, k.IsActive, k.LastUsedAt, k.CreatedAt)
	return mapErr("api_keys", "save", err)
}

func (r *apiKeyRepo) FindActiveByHash(ctx context.Context, tx repository.Tx, hash string) (*model.APIKey, error) {
	const q = `
SELECT id, user_id, device_id, name, key_hash, key_prefix, is_active, last_used_at, created_at
  FROM api_keys
 WHERE key_hash=$1 AND is_active;`
	row, err := pickRow(ctx, r.pool, tx, q, hash)
	if err != nil {
		return nil, err
	}
	k := &model.APIKey{}
	if err := row.Scan(&k.ID, &k.UserID, &k.DeviceID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.IsActive, &k.LastUsedAt, &k.CreatedAt); err != nil {
		return nil, mapErr("api_keys", "find", err)
	}
	return k, nil
}

func (r *apiKeyRepo) TouchLastUsed(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE api_keys SET last_used_at=$2 WHERE id=$1;`, id, at)
	return mapErr("api_keys", "touch", err)
}

// Revoke is one-way; there is no statement that sets is_active back to true.
func (r *apiKeyRepo) Revoke(ctx context.Context, tx repository.Tx, id string) error {
	cmd, err := execSQL(ctx, r.pool, tx, `UPDATE api_keys SET is_active=false WHERE id=$1;`, id)
	if err != nil {
		return mapErr("api_keys", "revoke", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
