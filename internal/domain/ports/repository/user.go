package repository

import (
	"context"

	"apivro/internal/domain/model"
)

type ProfileRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Profile) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Profile, error)
	IncrementMessagesSent(ctx context.Context, tx Tx, id string) error
}
