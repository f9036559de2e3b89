package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
)

var _ repository.MessageRepository = (*messageRepo)(nil)

type messageRepo struct{ pool *pgxpool.Pool }

func NewMessageRepo(pool *pgxpool.Pool) *messageRepo {
	return &messageRepo{pool: pool}
}

// Messages are append-only.
func (r *messageRepo) Save(ctx context.Context, tx repository.Tx, m *model.Message) error {
	const q = `
INSERT INTO messages (id, user_id, device_id, subscription_id, api_key_id, recipient, message_type, status, gateway_message_id, error_message, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`
	_, err := execSQL(ctx, r.pool, tx, q,
		m.ID, m.UserID, m.DeviceID, nullIfEmpty(m.SubscriptionID), nullIfEmpty(m.APIKeyID),
		m.Recipient, m.Type, m.Status, m.GatewayMessageID, m.ErrorMessage, m.CreatedAt)
	return mapErr("messages", "save", err)
}
