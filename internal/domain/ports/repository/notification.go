package repository

import (
	"context"

	"apivro/internal/domain/model"
)

type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	// FindPreferences falls back to defaults when the user has no row.
	FindPreferences(ctx context.Context, tx Tx, userID string) (*model.NotificationPreferences, error)
	SavePreferences(ctx context.Context, tx Tx, p *model.NotificationPreferences) error
}
