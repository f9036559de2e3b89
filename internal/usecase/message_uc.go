package usecase

import (
	"context"
	"errors"
	"strings"
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
var _ MessageUseCase = (*messageUC)(nil)

type SendRequest struct {
	To      string
	Message string
	Media   *model.Media
}

type SendResult struct {
	MessageID      string
	Recipient      string
	QuotaUsed      int
	QuotaLimit     int
	QuotaRemaining int
	Timestamp      time.Time
}

// MessageUseCase orchestrates an outbound send: quota, device, dispatch, bookkeeping.
type MessageUseCase interface {
	Send(ctx context.Context, auth AuthContext, req SendRequest) (*SendResult, error)
}

type messageUC struct {
	quota    QuotaUseCase
	devices  repository.DeviceRepository
	messages repository.MessageRepository
	profiles repository.ProfileRepository
	gateway  adapter.MessagingGateway
	tasks    adapter.TaskRunner
	log      *zerolog.Logger
	now      func() time.Time
}

func NewMessageUseCase(
	quota QuotaUseCase,
	devices repository.DeviceRepository,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	gateway adapter.MessagingGateway,
	tasks adapter.TaskRunner,
	logger *zerolog.Logger,
) *messageUC {
	l := logger.With().Str("component", "sender").Logger()
	return &messageUC{
		quota:    quota,
		devices:  devices,
		messages: messages,
		profiles: profiles,
		gateway:  gateway,
		tasks:    tasks,
		log:      &l,
		now:      time.Now,
	}
}

func (u *messageUC) Send(ctx context.Context, auth AuthContext, req SendRequest) (*SendResult, error) {
	defer logging.TraceDuration(u.log, "MessageUC.Send")()
	log := logging.With(ctx, u.log)

	if strings.TrimSpace(req.To) == "" {
		return nil, domain.ErrMissingRecipient
	}
	if strings.TrimSpace(req.Message) == "" && req.Media == nil {
		return nil, domain.ErrMissingContent
	}
	digits := model.NormalizeRecipient(req.To)
	if digits == "" {
		return nil, domain.ErrMissingRecipient
	}

	check, err := u.quota.Check(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}

	device, err := u.devices.FindByID(ctx, repository.NoTX, auth.DeviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	if device.UserID != auth.UserID {
		return nil, domain.ErrDeviceNotFound
	}

	chatID := u.gateway.ChatID(digits)
	msgType := model.MessageTypeText
	var res *adapter.SendResult
	if req.Media != nil {
		msgType = model.MessageTypeMedia
		media := *req.Media
		if media.Caption == "" {
			media.Caption = req.Message
		}
		res, err = u.gateway.SendImage(ctx, adapter.ImageMessage{Session: device.SessionID, ChatID: chatID, Media: media})
	} else {
		res, err = u.gateway.SendText(ctx, adapter.TextMessage{Session: device.SessionID, ChatID: chatID, Text: req.Message})
	}

	record := &model.Message{
		ID:             uuid.NewString(),
		UserID:         auth.UserID,
		DeviceID:       device.ID,
		SubscriptionID: check.SubscriptionID,
		APIKeyID:       auth.APIKeyID,
		Recipient:      digits,
		Type:           msgType,
		CreatedAt:      u.now(),
	}

	if err != nil {
		metrics.IncMessageSent(string(msgType), "failed")
		record.Status = model.MessageStatusFailed
		record.ErrorMessage = err.Error()
		if saveErr := u.messages.Save(ctx, repository.NoTX, record); saveErr != nil {
			log.Error().Err(saveErr).Msg("failed to record failed message")
		}
		log.Warn().Err(err).Str("recipient", digits).Msg("gateway rejected message")
		return nil, err
	}

	record.Status = model.MessageStatusSent
	if res != nil {
		record.GatewayMessageID = res.ID
	}
	if err := u.messages.Save(ctx, repository.NoTX, record); err != nil {
		// delivered already; the ledger still has to be charged
		log.Error().Err(err).Str("message_id", record.ID).Msg("failed to record sent message")
	}

	used, err := u.quota.Increment(ctx, check)
	if err != nil {
		log.Error().Err(err).Str("subscription_id", check.SubscriptionID).Msg("quota increment failed")
	}
	u.countLifetime(auth.UserID)
	metrics.IncMessageSent(string(msgType), "sent")

	remaining := check.Limit - used
	if remaining < 0 {
		remaining = 0
	}
	id := record.GatewayMessageID
	if id == "" {
		id = record.ID
	}
	return &SendResult{
		MessageID:      id,
		Recipient:      digits,
		QuotaUsed:      used,
		QuotaLimit:     check.Limit,
		QuotaRemaining: remaining,
		Timestamp:      record.CreatedAt,
	}, nil
}

func (u *messageUC) countLifetime(userID string) {
	if u.tasks == nil || u.profiles == nil {
		return
	}
	u.tasks.Submit("profile.messages_sent", func(ctx context.Context) error {
		return u.profiles.IncrementMessagesSent(ctx, repository.NoTX, userID)
	})
}
