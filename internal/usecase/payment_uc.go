package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
	"apivro/internal/domain/ports/repository"
	ucport "apivro/internal/domain/ports/usecase"
	"apivro/internal/infra/logging"
	"apivro/internal/infra/metrics"
)

// Compile-time checks
var (
	_ PaymentUseCase        = (*paymentUC)(nil)
	_ ucport.PaymentSyncer = (*paymentUC)(nil)
)

const (
	paymentLockTTL    = 30 * time.Second
	transactionExpiry = 24 * time.Hour
)

type CreatePaymentInput struct {
	UserID        string
	PlanID        string
	PaymentMethod string
}

// CallbackInput is a gateway push. Amount falls back to TotalAmount when zero.
type CallbackInput struct {
	Reference   string
	MerchantRef string
	Status      string
	Amount      int64
	TotalAmount int64
	Signature   string
	Raw         json.RawMessage
}

type CallbackResult struct {
	Reference string
	Status    model.PaymentStatus
	Changed   bool
}

type SyncResult struct {
	Checked int
	Updated int
}

// PaymentUseCase is the payment reconciliation state machine.
type PaymentUseCase interface {
	Channels() []model.PaymentChannel
	Create(ctx context.Context, in CreatePaymentInput) (*model.Payment, error)
	HandleCallback(ctx context.Context, in CallbackInput) (*CallbackResult, error)
	SyncPending(ctx context.Context, userID string) (*SyncResult, error)
	SyncStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
	GetByReference(ctx context.Context, userID, reference string) (*model.Payment, error)
}

// PaymentOptions holds the collaborators of the cutover's best-effort tail.
type PaymentOptions struct {
	Locker                 adapter.Locker
	Invoices               InvoiceUseCase
	Notifications          NotificationUseCase
	AllowUnsignedCallbacks bool
}

type paymentUC struct {
	tm       repository.TransactionManager
	payments repository.PaymentRepository
	plans    repository.PlanRepository
	subs     repository.SubscriptionRepository
	profiles repository.ProfileRepository
	gateway  adapter.PaymentGateway
	verifier adapter.SignatureVerifier
	opts     PaymentOptions
	log      *zerolog.Logger
	now      func() time.Time
}

func NewPaymentUseCase(
	tm repository.TransactionManager,
	payments repository.PaymentRepository,
	plans repository.PlanRepository,
	subs repository.SubscriptionRepository,
	profiles repository.ProfileRepository,
	gateway adapter.PaymentGateway,
	verifier adapter.SignatureVerifier,
	opts PaymentOptions,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "payment").Logger()
	return &paymentUC{
		tm:       tm,
		payments: payments,
		plans:    plans,
		subs:     subs,
		profiles: profiles,
		gateway:  gateway,
		verifier: verifier,
		opts:     opts,
		log:      &l,
		now:      time.Now,
	}
}

func (u *paymentUC) Channels() []model.PaymentChannel { return u.gateway.Channels() }

func (u *paymentUC) Create(ctx context.Context, in CreatePaymentInput) (*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Create")()
	log := logging.With(ctx, u.log)

	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, in.PlanID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrPlanNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, domain.ErrPlanNotFound
	}
	channel, ok := u.gateway.Channel(in.PaymentMethod)
	if !ok {
		return nil, domain.ErrInvalidPaymentMethod
	}
	profile, err := u.profiles.FindByID(ctx, repository.NoTX, in.UserID)
	if err != nil {
		return nil, err
	}

	fee := channel.Fee(plan.PriceMonthly)
	total := plan.PriceMonthly + fee
	now := u.now()
	merchantRef := NewMerchantRef(in.UserID)

	tx, err := u.gateway.CreateTransaction(ctx, adapter.TransactionRequest{
		Method:        channel.Code,
		MerchantRef:   merchantRef,
		Amount:        total,
		CustomerName:  profile.DisplayName(),
		CustomerEmail: profile.Email,
		ItemName:      fmt.Sprintf("%s Plan - 1 Month", plan.Name),
		ItemPrice:     total,
		ExpiresAt:     now.Add(transactionExpiry),
	})
	if err != nil {
		metrics.IncPayment("create_failed")
		log.Error().Err(err).Str("merchant_ref", merchantRef).Msg("gateway create failed")
		return nil, err
	}

	p := &model.Payment{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		PlanID:        plan.ID,
		Reference:     tx.Reference,
		MerchantRef:   merchantRef,
		PaymentMethod: channel.Code,
		PaymentName:   tx.MethodName,
		Amount:        plan.PriceMonthly,
		Fee:           fee,
		TotalAmount:   tx.Amount,
		Status:        model.PaymentStatusPending,
		CheckoutURL:   tx.CheckoutURL,
		QRURL:         tx.QRURL,
		PayCode:       tx.PayCode,
		ExpiredAt:     tx.ExpiresAt,
		Metadata:      tx.Raw,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.PaymentName == "" {
		p.PaymentName = channel.Name
	}
	if p.TotalAmount == 0 {
		p.TotalAmount = total
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		// the gateway transaction exists but we lost track of it
		log.Error().Err(err).Str("reference", tx.Reference).Str("merchant_ref", merchantRef).Msg("failed to persist created payment")
		return nil, fmt.Errorf("%w: save payment: %v", domain.ErrOperationFailed, err)
	}
	metrics.IncPayment(string(model.PaymentStatusPending))
	log.Info().Str("reference", p.Reference).Str("plan_id", plan.ID).Int64("total", p.TotalAmount).Msg("payment created")
	return p, nil
}

func (u *paymentUC) HandleCallback(ctx context.Context, in CallbackInput) (*CallbackResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.HandleCallback")()
	log := logging.With(ctx, u.log).With().Str("reference", in.Reference).Logger()

	if in.Reference == "" {
		metrics.IncPaymentCallback("invalid")
		return nil, domain.ErrInvalidArgument
	}
	amount := in.Amount
	if amount == 0 {
		amount = in.TotalAmount
	}
	if in.Signature == "" {
		if !u.opts.AllowUnsignedCallbacks {
			metrics.IncPaymentCallback("unsigned_rejected")
			return nil, domain.ErrMissingSignature
		}
		log.Warn().Msg("accepting unsigned payment callback")
	} else if !u.verifier.Verify(in.MerchantRef, amount, in.Signature) {
		metrics.IncPaymentCallback("bad_signature")
		log.Warn().Str("signature", logging.Redact(in.Signature, false)).Msg("callback signature mismatch")
		return nil, domain.ErrInvalidSignature
	}

	unlock, err := u.lock(ctx, in.Reference)
	if err != nil {
		metrics.IncPaymentCallback("locked")
		return nil, err
	}
	defer unlock()

	p, err := u.payments.FindByReference(ctx, repository.NoTX, in.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrPaymentNotFound
		}
		metrics.IncPaymentCallback("unknown_reference")
		return nil, err
	}

	changed, err := u.applyGatewayStatus(ctx, p, in.Status, in.Raw)
	if err != nil {
		metrics.IncPaymentCallback("error")
		return nil, err
	}
	if changed {
		metrics.IncPaymentCallback("applied")
	} else {
		metrics.IncPaymentCallback("noop")
	}
	return &CallbackResult{Reference: p.Reference, Status: p.Status, Changed: changed}, nil
}

// lock serialises work on one reference when a locker is configured.
func (u *paymentUC) lock(ctx context.Context, reference string) (func(), error) {
	if u.opts.Locker == nil {
		return func() {}, nil
	}
	key := "payment:" + reference
	token, err := u.opts.Locker.TryLock(ctx, key, paymentLockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotAcquired) || ctx.Err() != nil {
			return nil, err
		}
		// locker outage: the pending->paid compare-and-set still holds on its own
		u.log.Warn().Err(err).Str("key", key).Msg("payment lock unavailable, continuing without it")
		return func() {}, nil
	}
	return func() {
		if err := u.opts.Locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			u.log.Warn().Err(err).Str("key", key).Msg("unlock failed")
		}
	}, nil
}

// applyGatewayStatus moves a pending payment to the status the gateway reports.
// Callback and sync share it. Only the writer that wins the pending->paid
// transition runs the subscription cutover; invoice and email follow after commit.
func (u *paymentUC) applyGatewayStatus(ctx context.Context, p *model.Payment, gatewayStatus string, raw json.RawMessage) (bool, error) {
	log := logging.With(ctx, u.log).With().Str("reference", p.Reference).Logger()
	to := model.PaymentStatusFromGateway(gatewayStatus)

	if p.Status.IsTerminal() {
		if to != p.Status {
			log.Warn().Str("current", string(p.Status)).Str("incoming", string(to)).Msg("ignoring status change on terminal payment")
		}
		return false, nil
	}
	if to == model.PaymentStatusPending {
		if len(raw) > 0 {
			if err := u.payments.UpdateMetadata(ctx, repository.NoTX, p.ID, raw); err != nil {
				return false, err
			}
			p.Metadata = raw
		}
		return false, nil
	}

	now := u.now()
	var paidAt *time.Time
	if to == model.PaymentStatusPaid {
		paidAt = &now
	}

	var (
		won  bool
		plan *model.Plan
		sub  *model.Subscription
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := u.payments.TransitionFromPending(ctx, tx, p.ID, to, paidAt, raw)
		if err != nil || !ok {
			return err
		}
		won = true
		if to != model.PaymentStatusPaid {
			return nil
		}
		plan, sub, err = u.cutover(ctx, tx, p, now)
		return err
	})
	if err != nil {
		return false, err
	}
	if !won {
		log.Info().Msg("payment already moved by a concurrent writer")
		return false, nil
	}

	p.Status = to
	p.PaidAt = paidAt
	if len(raw) > 0 {
		p.Metadata = raw
	}
	p.UpdatedAt = now
	metrics.IncPayment(string(to))
	log.Info().Str("status", string(to)).Msg("payment status updated")

	if to == model.PaymentStatusPaid {
		metrics.IncSubscriptionCutover()
		metrics.AddPaymentRevenue("IDR", p.TotalAmount)
		u.afterPaid(ctx, p, plan, sub)
	}
	return true, nil
}

// cutover expires the current subscription and starts a fresh one on the purchased plan.
func (u *paymentUC) cutover(ctx context.Context, tx repository.Tx, p *model.Payment, now time.Time) (*model.Plan, *model.Subscription, error) {
	plan, err := u.plans.FindByID(ctx, tx, p.PlanID)
	if err != nil {
		return nil, nil, err
	}
	expired, err := u.subs.ExpireActiveByUser(ctx, tx, p.UserID, now)
	if err != nil {
		return nil, nil, err
	}
	sub, err := model.NewSubscription(uuid.NewString(), p.UserID, plan, now)
	if err != nil {
		return nil, nil, err
	}
	if err := u.subs.Save(ctx, tx, sub); err != nil {
		return nil, nil, err
	}
	u.log.Info().Str("user_id", p.UserID).Str("plan_id", plan.ID).Int64("expired", expired).Msg("subscription cutover")
	return plan, sub, nil
}

// afterPaid issues the invoice and then the email. Failures are logged only.
func (u *paymentUC) afterPaid(ctx context.Context, p *model.Payment, plan *model.Plan, sub *model.Subscription) {
	log := logging.With(ctx, u.log).With().Str("reference", p.Reference).Logger()
	if u.opts.Invoices == nil {
		return
	}
	profile, err := u.profiles.FindByID(ctx, repository.NoTX, p.UserID)
	if err != nil {
		log.Error().Err(err).Msg("profile lookup for invoice failed")
		profile = nil
	}
	inv, err := u.opts.Invoices.Issue(ctx, p, plan, profile)
	if err != nil {
		log.Error().Err(err).Msg("invoice generation failed")
		return
	}
	if u.opts.Notifications == nil {
		return
	}
	notice := PaymentSuccessNotice{Payment: p, Plan: plan, Invoice: inv}
	if sub != nil && sub.EndDate != nil {
		notice.ValidUntil = *sub.EndDate
	}
	if _, err := u.opts.Notifications.SendPaymentSuccess(ctx, notice); err != nil {
		log.Error().Err(err).Msg("payment success email failed")
	}
}

func (u *paymentUC) SyncPending(ctx context.Context, userID string) (*SyncResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.SyncPending")()
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	pending, err := u.payments.ListPendingByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	updated := u.syncAll(ctx, pending)
	return &SyncResult{Checked: len(pending), Updated: updated}, nil
}

func (u *paymentUC) SyncStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.SyncStale")()
	if limit <= 0 {
		limit = 50
	}
	pending, err := u.payments.ListPendingCreatedBefore(ctx, repository.NoTX, u.now().Add(-olderThan), limit)
	if err != nil {
		return 0, err
	}
	return u.syncAll(ctx, pending), nil
}

// syncAll polls the gateway for each payment. One failure never aborts the batch.
func (u *paymentUC) syncAll(ctx context.Context, pending []*model.Payment) int {
	updated := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		changed, err := u.syncOne(ctx, p)
		if err != nil {
			u.log.Warn().Err(err).Str("reference", p.Reference).Msg("payment sync failed")
			continue
		}
		if changed {
			updated++
		}
	}
	return updated
}

func (u *paymentUC) syncOne(ctx context.Context, p *model.Payment) (bool, error) {
	tx, err := u.gateway.TransactionDetail(ctx, p.Reference)
	if err != nil {
		return false, err
	}
	unlock, err := u.lock(ctx, p.Reference)
	if err != nil {
		return false, err
	}
	defer unlock()
	return u.applyGatewayStatus(ctx, p, tx.Status, tx.Raw)
}

func (u *paymentUC) GetByReference(ctx context.Context, userID, reference string) (*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.GetByReference")()
	p, err := u.payments.FindByReference(ctx, repository.NoTX, reference)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrPaymentNotFound
	}
	return p, nil
}
