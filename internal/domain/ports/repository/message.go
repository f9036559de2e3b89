package repository

import (
	"context"

	"apivro/internal/domain/model"
)

type MessageRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Message) error
}
