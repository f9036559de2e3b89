package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.NotificationRepository = (*notificationRepo)(nil)

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `
INSERT INTO notifications (id, user_id, type, title, message, email_sent, is_read, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.UserID, n.Type, n.Title, n.Message, n.EmailSent, n.IsRead, n.CreatedAt)
	return mapErr("notifications", "save", err)
}

func (r *notificationRepo) FindPreferences(ctx context.Context, tx repository.Tx, userID string) (*model.NotificationPreferences, error) {
	const q = `SELECT user_id, payment_success, device_disconnect FROM notification_preferences WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	p := &model.NotificationPreferences{}
	if err := row.Scan(&p.UserID, &p.PaymentSuccess, &p.DeviceDisconnect); err != nil {
		if err = mapErr("notification_preferences", "find", err); err == domain.ErrNotFound {
			return model.DefaultNotificationPreferences(userID), nil
		}
		return nil, err
	}
	return p, nil
}

func (r *notificationRepo) SavePreferences(ctx context.Context, tx repository.Tx, p *model.NotificationPreferences) error {
	const q = `
INSERT INTO notification_preferences (user_id, payment_success, device_disconnect, updated_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (user_id) DO UPDATE SET
  payment_success=$2, device_disconnect=$3, updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, p.UserID, p.PaymentSuccess, p.DeviceDisconnect)
	return mapErr("notification_preferences", "save", err)
}
