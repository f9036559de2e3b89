package repository

import (
	"context"

	"apivro/internal/domain/model"
)

type WebhookLogRepository interface {
	Save(ctx context.Context, tx Tx, l *model.WebhookLog) error
	// List and Stats only see logs of devices owned by filter.UserID.
	List(ctx context.Context, tx Tx, filter model.WebhookLogFilter) ([]*model.WebhookLog, int64, error)
	Stats(ctx context.Context, tx Tx, filter model.WebhookLogFilter) (model.WebhookStats, error)
}
