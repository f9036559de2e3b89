package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planColumns = `id, name, message_limit, price_monthly, is_active, created_at`

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	const q = `
INSERT INTO plans (` + planColumns + `)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  name=$2, message_limit=$3, price_monthly=$4, is_active=$5;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.MessageLimit, p.PriceMonthly, p.IsActive, p.CreatedAt)
	return mapErr("plans", "save", err)
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p := &model.Plan{}
	if err := row.Scan(&p.ID, &p.Name, &p.MessageLimit, &p.PriceMonthly, &p.IsActive, &p.CreatedAt); err != nil {
		if err = mapErr("plans", "find", err); err == domain.ErrNotFound {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *planRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE is_active ORDER BY price_monthly ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapErr("plans", "list", err)
	}
	defer rows.Close()

	var out []*model.Plan
	for rows.Next() {
		p := &model.Plan{}
		if err := rows.Scan(&p.ID, &p.Name, &p.MessageLimit, &p.PriceMonthly, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, mapErr("plans", "list", rows.Err())
}
