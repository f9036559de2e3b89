package usecase

import (
	"context"
	"time"
)

// PaymentSyncer is what background workers need from payment reconciliation.
type PaymentSyncer interface {
	SyncStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}
