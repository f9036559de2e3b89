package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

type profileRepo struct{ pool *pgxpool.Pool }

func NewProfileRepo(pool *pgxpool.Pool) *profileRepo {
	return &profileRepo{pool: pool}
}

func (r *profileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	const q = `
INSERT INTO profiles (id, email, full_name, total_messages_sent, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  email=$2, full_name=$3, updated_at=$6;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Email, p.FullName, p.TotalMessagesSent, p.CreatedAt, p.UpdatedAt)
	return mapErr("profiles", "save", err)
}

func (r *profileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	const q = `SELECT id, email, full_name, total_messages_sent, created_at, updated_at FROM profiles WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p := &model.Profile{}
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.TotalMessagesSent, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr("profiles", "find", err)
	}
	return p, nil
}

func (r *profileRepo) IncrementMessagesSent(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE profiles SET total_messages_sent = total_messages_sent + 1, updated_at = NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return mapErr("profiles", "increment_sent", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
