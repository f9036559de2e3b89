package repository

import (
	"context"
	"time"

	"apivro/internal/domain/model"
)

type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	// FindActiveByUser returns domain.ErrNotFound when the user has no active row.
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	// ResetUsageIfStale zeroes the counter only if last_reset_at is in an earlier
	// month than now. It reports whether a row was changed.
	ResetUsageIfStale(ctx context.Context, tx Tx, id string, now time.Time) (bool, error)
	// IncrementUsage adds one while messages_used < limit and returns the new value.
	// ok is false when the guard rejected the increment.
	IncrementUsage(ctx context.Context, tx Tx, id string, limit int) (used int, ok bool, err error)
	// ExpireActiveByUser expires any active subscription of the user and returns how many were changed.
	ExpireActiveByUser(ctx context.Context, tx Tx, userID string, endDate time.Time) (int64, error)
}
