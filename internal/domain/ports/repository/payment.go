package repository

import (
	"context"
	"encoding/json"
	"time"

	"apivro/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByReference(ctx context.Context, tx Tx, reference string) (*model.Payment, error)
	ListPendingByUser(ctx context.Context, tx Tx, userID string) ([]*model.Payment, error)
	ListPendingCreatedBefore(ctx context.Context, tx Tx, before time.Time, limit int) ([]*model.Payment, error)
	// TransitionFromPending is a compare-and-set on status = 'pending'.
	// It reports false when another writer already moved the payment.
	TransitionFromPending(ctx context.Context, tx Tx, id string, to model.PaymentStatus, paidAt *time.Time, metadata json.RawMessage) (bool, error)
	UpdateMetadata(ctx context.Context, tx Tx, id string, metadata json.RawMessage) error
	SetInvoice(ctx context.Context, tx Tx, id, number, url string) error
}
