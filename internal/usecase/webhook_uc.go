package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
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
var _ WebhookUseCase = (*webhookUC)(nil)

const (
	defaultIncomingEvent = "message.received"
	defaultLogsLimit     = 15
	maxLogsLimit         = 100
)

// IncomingEvent is what the WhatsApp gateway pushes to us.
type IncomingEvent struct {
	Session string          `json:"session"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Envelope is the body customers receive.
type Envelope struct {
	Event       string          `json:"event"`
	Timestamp   time.Time       `json:"timestamp"`
	DeviceID    string          `json:"device_id"`
	DeviceName  string          `json:"device_name"`
	PhoneNumber string          `json:"phone_number"`
	Data        json.RawMessage `json:"data"`
}

type testEnvelope struct {
	Event      string    `json:"event"`
	Timestamp  time.Time `json:"timestamp"`
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Message    string    `json:"message"`
	Test       bool      `json:"test"`
}

// DeliveryResult is the outcome of one POST to a customer endpoint.
// Forwarded is false when nothing was attempted.
type DeliveryResult struct {
	Forwarded      bool
	Success        bool
	StatusCode     int
	ResponseTimeMs int64
	Error          string
}

type LogQuery struct {
	UserID    string
	DeviceID  string
	EventType string
	Page      int
	Limit     int
}

type LogPage struct {
	Logs       []*model.WebhookLog
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	Stats      model.WebhookStats
}

// WebhookUseCase relays inbound gateway events to customer endpoints.
type WebhookUseCase interface {
	// ForwardIncoming never fails: the upstream gateway always gets a 200.
	ForwardIncoming(ctx context.Context, in IncomingEvent) DeliveryResult
	// Test sends a synthetic envelope and reports the real outcome.
	Test(ctx context.Context, userID, deviceID string) (DeliveryResult, error)
	Logs(ctx context.Context, q LogQuery) (*LogPage, error)
}

type webhookUC struct {
	devices repository.DeviceRepository
	logs    repository.WebhookLogRepository
	client  adapter.WebhookClient
	log     *zerolog.Logger
	now     func() time.Time
}

func NewWebhookUseCase(devices repository.DeviceRepository, logs repository.WebhookLogRepository, client adapter.WebhookClient, logger *zerolog.Logger) *webhookUC {
	l := logger.With().Str("component", "webhook").Logger()
	return &webhookUC{devices: devices, logs: logs, client: client, log: &l, now: time.Now}
}

func (u *webhookUC) ForwardIncoming(ctx context.Context, in IncomingEvent) DeliveryResult {
	defer logging.TraceDuration(u.log, "WebhookUC.ForwardIncoming")()
	log := logging.With(ctx, u.log)

	if in.Session == "" {
		log.Debug().Msg("incoming event without session")
		return DeliveryResult{}
	}
	device, err := u.devices.FindBySessionID(ctx, repository.NoTX, in.Session)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrDeviceNotFound) {
			log.Error().Err(err).Str("session", in.Session).Msg("device lookup failed")
		} else {
			log.Debug().Str("session", in.Session).Msg("no device for session")
		}
		return DeliveryResult{}
	}
	if !device.HasWebhook() {
		return DeliveryResult{}
	}

	event := in.Event
	if event == "" {
		event = defaultIncomingEvent
	}
	data := in.Payload
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	env := Envelope{
		Event:       event,
		Timestamp:   u.now().UTC(),
		DeviceID:    device.ID,
		DeviceName:  device.Name,
		PhoneNumber: device.PhoneNumber,
		Data:        data,
	}
	res := u.deliver(ctx, device, model.EventTypeMessageIn, env)
	if !res.Success {
		log.Warn().Str("device_id", device.ID).Int("status", res.StatusCode).Str("error", res.Error).Msg("webhook forward failed")
	}
	return res
}

func (u *webhookUC) Test(ctx context.Context, userID, deviceID string) (DeliveryResult, error) {
	defer logging.TraceDuration(u.log, "WebhookUC.Test")()

	device, err := u.devices.FindByID(ctx, repository.NoTX, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			return DeliveryResult{}, domain.ErrNotFound
		}
		return DeliveryResult{}, err
	}
	if device.UserID != userID {
		return DeliveryResult{}, domain.ErrNotFound
	}
	if !device.HasWebhook() {
		return DeliveryResult{}, domain.ErrNoWebhook
	}
	env := testEnvelope{
		Event:      model.EventTypeWebhookTest,
		Timestamp:  u.now().UTC(),
		DeviceID:   device.ID,
		DeviceName: device.Name,
		Message:    "This is a test webhook from API VRO",
		Test:       true,
	}
	return u.deliver(ctx, device, model.EventTypeWebhookTest, env), nil
}

// deliver posts the envelope and appends a log row whatever the outcome.
func (u *webhookUC) deliver(ctx context.Context, device *model.Device, eventType string, payload any) DeliveryResult {
	start := u.now()
	status, err := u.client.Post(ctx, device.WebhookURL, payload)
	elapsed := u.now().Sub(start).Milliseconds()

	res := DeliveryResult{Forwarded: true, Success: err == nil, StatusCode: status, ResponseTimeMs: elapsed}
	entry := &model.WebhookLog{
		ID:             uuid.NewString(),
		DeviceID:       device.ID,
		UserID:         device.UserID,
		WebhookURL:     device.WebhookURL,
		EventType:      eventType,
		StatusCode:     status,
		ResponseTimeMs: elapsed,
		Success:        res.Success,
		CreatedAt:      u.now(),
	}
	if err != nil {
		res.Error = err.Error()
		entry.ErrorMessage = &res.Error
	}
	metrics.ObserveWebhookForward(eventType, res.Success, elapsed)

	// the caller may already be gone; the audit row must still land
	if saveErr := u.logs.Save(context.WithoutCancel(ctx), repository.NoTX, entry); saveErr != nil {
		u.log.Error().Err(saveErr).Str("device_id", device.ID).Msg("failed to save webhook log")
	}
	return res
}

func (u *webhookUC) Logs(ctx context.Context, q LogQuery) (*LogPage, error) {
	defer logging.TraceDuration(u.log, "WebhookUC.Logs")()

	if q.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLogsLimit
	}
	if q.Limit > maxLogsLimit {
		q.Limit = maxLogsLimit
	}
	filter := model.WebhookLogFilter{
		UserID:    q.UserID,
		DeviceID:  q.DeviceID,
		EventType: q.EventType,
		Offset:    (q.Page - 1) * q.Limit,
		Limit:     q.Limit,
	}
	rows, total, err := u.logs.List(ctx, repository.NoTX, filter)
	if err != nil {
		return nil, err
	}
	stats, err := u.logs.Stats(ctx, repository.NoTX, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*model.WebhookLog{}
	}
	return &LogPage{
		Logs:       rows,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		Stats:      stats,
	}, nil
}
