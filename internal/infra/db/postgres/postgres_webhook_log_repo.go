package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.WebhookLogRepository = (*webhookLogRepo)(nil)

type webhookLogRepo struct{ pool *pgxpool.Pool }

func NewWebhookLogRepo(pool *pgxpool.Pool) *webhookLogRepo {
	return &webhookLogRepo{pool: pool}
}

func (r *webhookLogRepo) Save(ctx context.Context, tx repository.Tx, l *model.WebhookLog) error {
	const q = `
INSERT INTO webhook_logs (id, device_id, user_id, webhook_url, event_type, status_code, response_time_ms, success, error_message, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	_, err := execSQL(ctx, r.pool, tx, q,
		l.ID, l.DeviceID, l.UserID, l.WebhookURL, l.EventType, l.StatusCode, l.ResponseTimeMs, l.Success, l.ErrorMessage, l.CreatedAt)
	return mapErr("webhook_logs", "save", err)
}

// webhookLogScope joins devices so ownership is decided by devices.user_id,
// not by the denormalised webhook_logs.user_id.
func webhookLogScope(f model.WebhookLogFilter) (string, []interface{}) {
	args := []interface{}{f.UserID}
	where := `FROM webhook_logs l JOIN devices d ON d.id = l.device_id WHERE d.user_id = $1`
	if f.DeviceID != "" {
		args = append(args, f.DeviceID)
		where += fmt.Sprintf(" AND l.device_id = $%d", len(args))
	}
	if f.EventType != "" {
		args = append(args, f.EventType)
		where += fmt.Sprintf(" AND l.event_type = $%d", len(args))
	}
	return where, args
}

func (r *webhookLogRepo) List(ctx context.Context, tx repository.Tx, f model.WebhookLogFilter) ([]*model.WebhookLog, int64, error) {
	scope, args := webhookLogScope(f)

	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) `+scope+`;`, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := row.Scan(&total); err != nil {
		return nil, 0, mapErr("webhook_logs", "count", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 15
	}
	args = append(args, limit, f.Offset)
	q := fmt.Sprintf(`
SELECT l.id, l.device_id, l.user_id, l.webhook_url, l.event_type, l.status_code, l.response_time_ms, l.success, l.error_message, l.created_at
%s
ORDER BY l.created_at DESC
LIMIT $%d OFFSET $%d;`, scope, len(args)-1, len(args))

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, 0, mapErr("webhook_logs", "list", err)
	}
	defer rows.Close()

	out := make([]*model.WebhookLog, 0, limit)
	for rows.Next() {
		l := &model.WebhookLog{}
		if err := rows.Scan(&l.ID, &l.DeviceID, &l.UserID, &l.WebhookURL, &l.EventType, &l.StatusCode, &l.ResponseTimeMs, &l.Success, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr("webhook_logs", "list", err)
	}
	return out, total, nil
}

func (r *webhookLogRepo) Stats(ctx context.Context, tx repository.Tx, f model.WebhookLogFilter) (model.WebhookStats, error) {
	scope, args := webhookLogScope(f)
	q := `SELECT COUNT(*), COUNT(*) FILTER (WHERE l.success), COALESCE(SUM(l.response_time_ms), 0) ` + scope + `;`
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return model.WebhookStats{}, err
	}
	var total, ok, sum int64
	if err := row.Scan(&total, &ok, &sum); err != nil {
		return model.WebhookStats{}, mapErr("webhook_logs", "stats", err)
	}
	return model.NewWebhookStats(total, ok, sum), nil
}
