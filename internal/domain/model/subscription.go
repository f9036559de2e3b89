package model

import (
	"time"

	"apivro/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription binds a user to a plan and carries the monthly usage counter.
// At most one subscription per user is active.
type Subscription struct {
	ID           string
	UserID       string
	PlanID       string
	Status       SubscriptionStatus
	MessagesUsed int
	LastResetAt  time.Time
	StartDate    time.Time
	EndDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSubscription creates an active subscription valid for one calendar month from now.
func NewSubscription(id, userID string, plan *Plan, now time.Time) (*Subscription, error) {
	if id == "" || userID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	end := now.AddDate(0, 1, 0)
	return &Subscription{
		ID:           id,
		UserID:       userID,
		PlanID:       plan.ID,
		Status:       SubscriptionStatusActive,
		MessagesUsed: 0,
		LastResetAt:  now,
		StartDate:    now,
		EndDate:      &end,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NeedsReset reports whether now falls in a different quota epoch than the last reset.
func (s *Subscription) NeedsReset(now time.Time) bool {
	return !SameQuotaEpoch(s.LastResetAt, now)
}

// SameQuotaEpoch compares the (year, month) of two instants in UTC.
func SameQuotaEpoch(a, b time.Time) bool {
	ay, am, _ := a.UTC().Date()
	by, bm, _ := b.UTC().Date()
	return ay == by && am == bm
}

// NextResetDate is the first instant of the month following now (UTC).
func NextResetDate(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
}
