package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
	"apivro/internal/infra/logging"
	"apivro/internal/infra/metrics"
)

// Compile-time check
var _ QuotaUseCase = (*quotaUC)(nil)

// QuotaCheck is the ledger decision for one send. Used is the value the
// decision was taken on (0 right after a monthly reset).
type QuotaCheck struct {
	SubscriptionID string
	UserID         string
	Plan           string
	Used           int
	Limit          int
}

// QuotaSnapshot is the usage view of the active subscription. ResetDate is
// when the counter was last zeroed; NextResetAt is the next epoch boundary.
type QuotaSnapshot struct {
	Used        int
	Limit       int
	Remaining   int
	Plan        string
	ResetDate   time.Time
	NextResetAt time.Time
}

// QuotaUseCase is the monthly message ledger.
type QuotaUseCase interface {
	// Check loads the active subscription, lazily resets the counter when the
	// month rolled over and rejects with *domain.QuotaError when exhausted.
	Check(ctx context.Context, userID string) (*QuotaCheck, error)
	// Increment consumes one message after a confirmed dispatch and returns the new count.
	Increment(ctx context.Context, c *QuotaCheck) (int, error)
	Snapshot(ctx context.Context, userID string) (*QuotaSnapshot, error)
}

type quotaUC struct {
	subs  repository.SubscriptionRepository
	plans repository.PlanRepository
	log   *zerolog.Logger
	now   func() time.Time
}

func NewQuotaUseCase(subs repository.SubscriptionRepository, plans repository.PlanRepository, logger *zerolog.Logger) *quotaUC {
	l := logger.With().Str("component", "quota").Logger()
	return &quotaUC{subs: subs, plans: plans, log: &l, now: time.Now}
}

func (q *quotaUC) load(ctx context.Context, userID string) (*model.Subscription, *model.Plan, error) {
	sub, err := q.subs.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNoActiveSubscription
		}
		return nil, nil, err
	}
	plan, err := q.plans.FindByID(ctx, repository.NoTX, sub.PlanID)
	if err != nil {
		return nil, nil, err
	}
	now := q.now()
	if sub.NeedsReset(now) {
		reset, err := q.subs.ResetUsageIfStale(ctx, repository.NoTX, sub.ID, now)
		if err != nil {
			return nil, nil, err
		}
		if reset {
			q.log.Debug().Str("subscription_id", sub.ID).Int("previous_used", sub.MessagesUsed).Msg("monthly quota reset")
		}
		// either we reset it or a concurrent request did
		sub.MessagesUsed = 0
		sub.LastResetAt = now
	}
	return sub, plan, nil
}

func (q *quotaUC) Check(ctx context.Context, userID string) (*QuotaCheck, error) {
	defer logging.TraceDuration(q.log, "QuotaUC.Check")()

	sub, plan, err := q.load(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSubscription) {
			metrics.IncQuotaRejection("no_subscription")
		}
		return nil, err
	}
	if sub.MessagesUsed >= plan.MessageLimit {
		metrics.IncQuotaRejection("limit_reached")
		return nil, &domain.QuotaError{Used: sub.MessagesUsed, Limit: plan.MessageLimit}
	}
	return &QuotaCheck{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Plan:           plan.Name,
		Used:           sub.MessagesUsed,
		Limit:          plan.MessageLimit,
	}, nil
}

func (q *quotaUC) Increment(ctx context.Context, c *QuotaCheck) (int, error) {
	defer logging.TraceDuration(q.log, "QuotaUC.Increment")()

	used, ok, err := q.subs.IncrementUsage(ctx, repository.NoTX, c.SubscriptionID, c.Limit)
	if err != nil {
		return c.Used + 1, err
	}
	if !ok {
		// a concurrent send took the last slot after our check; the message is already out
		q.log.Warn().Str("subscription_id", c.SubscriptionID).Int("limit", c.Limit).Msg("quota guard rejected increment after dispatch")
		return c.Limit, nil
	}
	return used, nil
}

func (q *quotaUC) Snapshot(ctx context.Context, userID string) (*QuotaSnapshot, error) {
	defer logging.TraceDuration(q.log, "QuotaUC.Snapshot")()

	sub, plan, err := q.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	remaining := plan.MessageLimit - sub.MessagesUsed
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaSnapshot{
		Used:        sub.MessagesUsed,
		Limit:       plan.MessageLimit,
		Remaining:   remaining,
		Plan:        plan.Name,
		ResetDate:   sub.LastResetAt,
		NextResetAt: model.NextResetDate(q.now()),
	}, nil
}
