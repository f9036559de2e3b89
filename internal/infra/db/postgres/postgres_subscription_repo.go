package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, plan_id, status, messages_used, last_reset_at, start_date, end_date, created_at, updated_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (` + subscriptionColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  status=$4, messages_used=$5, last_reset_at=$6, end_date=$8, updated_at=$10;`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PlanID, s.Status, s.MessagesUsed, s.LastResetAt, s.StartDate, s.EndDate, s.CreatedAt, s.UpdatedAt)
	return mapErr("subscriptions", "save", err)
}

func (r *subscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id=$1 AND status='active' ORDER BY created_at DESC LIMIT 1` + lockClause(tx) + `;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	s := &model.Subscription{}
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.MessagesUsed, &s.LastResetAt, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapErr("subscriptions", "find_active", err)
	}
	return s, nil
}

// ResetUsageIfStale only touches rows whose last reset lies in an earlier UTC month,
// so a second caller in the same month never re-zeroes a counter.
func (r *subscriptionRepo) ResetUsageIfStale(ctx context.Context, tx repository.Tx, id string, now time.Time) (bool, error) {
	const q = `
UPDATE subscriptions
   SET messages_used = 0,
       last_reset_at = $2,
       updated_at = NOW()
 WHERE id = $1
   AND date_trunc('month', last_reset_at AT TIME ZONE 'UTC') < date_trunc('month', $2::timestamptz AT TIME ZONE 'UTC');`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, now)
	if err != nil {
		return false, mapErr("subscriptions", "reset_usage", err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *subscriptionRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string, limit int) (int, bool, error) {
	const q = `
UPDATE subscriptions
   SET messages_used = messages_used + 1,
       updated_at = NOW()
 WHERE id = $1
   AND messages_used < $2
RETURNING messages_used;`
	row, err := pickRow(ctx, r.pool, tx, q, id, limit)
	if err != nil {
		return 0, false, err
	}
	var used int
	if err := row.Scan(&used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, mapErr("subscriptions", "increment_usage", err)
	}
	return used, true, nil
}

func (r *subscriptionRepo) ExpireActiveByUser(ctx context.Context, tx repository.Tx, userID string, endDate time.Time) (int64, error) {
	const q = `UPDATE subscriptions SET status='expired', end_date=$2, updated_at=NOW() WHERE user_id=$1 AND status='active';`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID, endDate)
	if err != nil {
		return 0, mapErr("subscriptions", "expire", err)
	}
	return cmd.RowsAffected(), nil
}
