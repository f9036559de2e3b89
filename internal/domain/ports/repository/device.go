package repository

import (
	"context"

	"apivro/internal/domain/model"
)

type DeviceRepository interface {
	Save(ctx context.Context, tx Tx, d *model.Device) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Device, error)
	FindBySessionID(ctx context.Context, tx Tx, sessionID string) (*model.Device, error)
}
