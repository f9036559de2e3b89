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
var _ APIKeyUseCase = (*apiKeyUC)(nil)

// AuthContext is what a valid API key resolves to.
type AuthContext struct {
	UserID   string
	DeviceID string
	APIKeyID string
}

// APIKeyUseCase is the device/API-key directory.
type APIKeyUseCase interface {
	Authenticate(ctx context.Context, rawKey string) (*AuthContext, error)
	// Issue creates a key for a device owned by userID. The raw key is only returned here.
	Issue(ctx context.Context, userID, deviceID, name string) (string, *model.APIKey, error)
	Revoke(ctx context.Context, keyID string) error
}

type apiKeyUC struct {
	keys    repository.APIKeyRepository
	devices repository.DeviceRepository
	tasks   adapter.TaskRunner
	log     *zerolog.Logger
	now     func() time.Time
}

func NewAPIKeyUseCase(keys repository.APIKeyRepository, devices repository.DeviceRepository, tasks adapter.TaskRunner, logger *zerolog.Logger) *apiKeyUC {
	l := logger.With().Str("component", "apikey").Logger()
	return &apiKeyUC{keys: keys, devices: devices, tasks: tasks, log: &l, now: time.Now}
}

func (u *apiKeyUC) Authenticate(ctx context.Context, rawKey string) (*AuthContext, error) {
	defer logging.TraceDuration(u.log, "APIKeyUC.Authenticate")()

	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		metrics.IncAPIKeyAuth("missing")
		return nil, domain.ErrAPIKeyRequired
	}
	if !model.HasAPIKeyFormat(rawKey) {
		metrics.IncAPIKeyAuth("bad_format")
		return nil, domain.ErrInvalidAPIKeyFormat
	}

	key, err := u.keys.FindActiveByHash(ctx, repository.NoTX, model.HashAPIKey(rawKey))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncAPIKeyAuth("invalid")
			return nil, domain.ErrInvalidAPIKey
		}
		return nil, err
	}

	device, err := u.devices.FindByID(ctx, repository.NoTX, key.DeviceID)
	if err != nil {
		return nil, err
	}
	if !device.IsConnected() {
		metrics.IncAPIKeyAuth("device_not_connected")
		return nil, domain.ErrDeviceNotConnected
	}

	keyID, at := key.ID, u.now()
	if u.tasks != nil {
		u.tasks.Submit("api_key.touch", func(ctx context.Context) error {
			return u.keys.TouchLastUsed(ctx, repository.NoTX, keyID, at)
		})
	}
	metrics.IncAPIKeyAuth("ok")
	return &AuthContext{UserID: key.UserID, DeviceID: key.DeviceID, APIKeyID: key.ID}, nil
}

func (u *apiKeyUC) Issue(ctx context.Context, userID, deviceID, name string) (string, *model.APIKey, error) {
	defer logging.TraceDuration(u.log, "APIKeyUC.Issue")()

	device, err := u.devices.FindByID(ctx, repository.NoTX, deviceID)
	if err != nil {
		return "", nil, err
	}
	if device.UserID != userID {
		return "", nil, domain.ErrDeviceNotFound
	}
	raw, key, err := model.GenerateAPIKey(uuid.NewString(), userID, deviceID, name, u.now())
	if err != nil {
		return "", nil, err
	}
	if err := u.keys.Save(ctx, repository.NoTX, key); err != nil {
		return "", nil, err
	}
	u.log.Info().Str("api_key_id", key.ID).Str("device_id", deviceID).Str("prefix", key.KeyPrefix).Msg("api key issued")
	return raw, key, nil
}

func (u *apiKeyUC) Revoke(ctx context.Context, keyID string) error {
	defer logging.TraceDuration(u.log, "APIKeyUC.Revoke")()
	if keyID == "" {
		return domain.ErrInvalidArgument
	}
	return u.keys.Revoke(ctx, repository.NoTX, keyID)
}
