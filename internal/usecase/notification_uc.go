package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
	"apivro/internal/domain/ports/repository"
	"apivro/internal/infra/logging"
	"apivro/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type PaymentSuccessNotice struct {
	Payment    *model.Payment
	Plan       *model.Plan
	Invoice    *Invoice
	ValidUntil time.Time
}

// NotificationUseCase sends transactional emails and records them, honouring opt-outs.
// The bool result reports whether an email actually went out.
type NotificationUseCase interface {
	SendPaymentSuccess(ctx context.Context, n PaymentSuccessNotice) (bool, error)
	NotifyDeviceDisconnected(ctx context.Context, userID, deviceID string) (bool, error)
}

type notificationUC struct {
	profiles     repository.ProfileRepository
	devices      repository.DeviceRepository
	notes        repository.NotificationRepository
	mailer       adapter.Mailer
	dashboardURL string
	log          *zerolog.Logger
	now          func() time.Time
}

func NewNotificationUseCase(
	profiles repository.ProfileRepository,
	devices repository.DeviceRepository,
	notes repository.NotificationRepository,
	mailer adapter.Mailer,
	dashboardURL string,
	logger *zerolog.Logger,
) *notificationUC {
	l := logger.With().Str("component", "notification").Logger()
	return &notificationUC{
		profiles:     profiles,
		devices:      devices,
		notes:        notes,
		mailer:       mailer,
		dashboardURL: dashboardURL,
		log:          &l,
		now:          time.Now,
	}
}

func (u *notificationUC) SendPaymentSuccess(ctx context.Context, n PaymentSuccessNotice) (bool, error) {
	defer logging.TraceDuration(u.log, "NotificationUC.SendPaymentSuccess")()

	p := n.Payment
	prefs, err := u.notes.FindPreferences(ctx, repository.NoTX, p.UserID)
	if err != nil {
		return false, err
	}
	if !prefs.PaymentSuccess {
		metrics.IncEmail("payment_success", "opted_out")
		return false, nil
	}
	if u.mailer == nil || !u.mailer.Configured() {
		metrics.IncEmail("payment_success", "not_configured")
		u.log.Warn().Str("payment_id", p.ID).Msg("mailer not configured, skipping payment email")
		return false, nil
	}
	profile, err := u.profiles.FindByID(ctx, repository.NoTX, p.UserID)
	if err != nil {
		return false, err
	}

	email := adapter.PaymentSuccessEmail{
		To:           profile.Email,
		CustomerName: profile.DisplayName(),
		PlanName:     n.Plan.Name,
		MessageLimit: n.Plan.MessageLimit,
		Amount:       p.TotalAmount,
		ValidUntil:   n.ValidUntil,
	}
	if p.PaidAt != nil {
		email.PaidAt = *p.PaidAt
	}
	if n.Invoice != nil {
		email.InvoiceNumber = n.Invoice.Number
		email.InvoiceURL = n.Invoice.URL
	}
	if err := u.mailer.SendPaymentSuccess(ctx, email); err != nil {
		metrics.IncEmail("payment_success", "failed")
		return false, fmt.Errorf("%w: %v", domain.ErrEmailFailed, err)
	}
	metrics.IncEmail("payment_success", "sent")

	u.record(ctx, &model.Notification{
		UserID:  p.UserID,
		Type:    model.NotificationPaymentSuccess,
		Title:   "Payment Successful",
		Message: fmt.Sprintf("Your payment for %s plan has been confirmed.", n.Plan.Name),
	})
	return true, nil
}

func (u *notificationUC) NotifyDeviceDisconnected(ctx context.Context, userID, deviceID string) (bool, error) {
	defer logging.TraceDuration(u.log, "NotificationUC.NotifyDeviceDisconnected")()

	device, err := u.devices.FindByID(ctx, repository.NoTX, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	if device.UserID != userID {
		return false, domain.ErrNotFound
	}
	prefs, err := u.notes.FindPreferences(ctx, repository.NoTX, userID)
	if err != nil {
		return false, err
	}
	if !prefs.DeviceDisconnect {
		metrics.IncEmail("device_disconnected", "opted_out")
		return false, nil
	}
	if u.mailer == nil || !u.mailer.Configured() {
		metrics.IncEmail("device_disconnected", "not_configured")
		return false, fmt.Errorf("%w: mailer not configured", domain.ErrEmailFailed)
	}
	profile, err := u.profiles.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return false, err
	}

	err = u.mailer.SendDeviceDisconnected(ctx, adapter.DeviceDisconnectedEmail{
		To:           profile.Email,
		CustomerName: profile.DisplayName(),
		DeviceName:   device.Name,
		PhoneNumber:  device.PhoneNumber,
		DashboardURL: u.dashboardURL,
		At:           u.now(),
	})
	if err != nil {
		metrics.IncEmail("device_disconnected", "failed")
		return false, fmt.Errorf("%w: %v", domain.ErrEmailFailed, err)
	}
	metrics.IncEmail("device_disconnected", "sent")

	u.record(ctx, &model.Notification{
		UserID:  userID,
		Type:    model.NotificationDeviceDisconnected,
		Title:   "Device Disconnected",
		Message: fmt.Sprintf("Your device %s has been disconnected.", device.Name),
	})
	return true, nil
}

func (u *notificationUC) record(ctx context.Context, n *model.Notification) {
	n.ID = uuid.NewString()
	n.EmailSent = true
	n.CreatedAt = u.now()
	if err := u.notes.Save(ctx, repository.NoTX, n); err != nil {
		u.log.Error().Err(err).Str("user_id", n.UserID).Str("type", string(n.Type)).Msg("failed to save notification")
	}
}
