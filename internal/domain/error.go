package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("could not read database row")

	// Quota ledger
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrMessageLimitReached  = errors.New("monthly message limit reached")

	// Send validation
	ErrMissingRecipient = errors.New("recipient phone number is required")
	ErrMissingContent   = errors.New("message or media is required")

	// API key directory
	ErrAPIKeyRequired      = errors.New("api key is required")
	ErrInvalidAPIKeyFormat = errors.New("invalid api key format")
	ErrInvalidAPIKey       = errors.New("invalid or inactive api key")
	ErrDeviceNotConnected  = errors.New("device is not connected")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrRateLimited         = errors.New("too many requests")
	ErrUnauthorized        = errors.New("unauthorized")

	// Payments
	ErrPlanNotFound         = errors.New("plan not found")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidSignature     = errors.New("invalid callback signature")
	ErrMissingSignature     = errors.New("callback signature is required")
	ErrLockNotAcquired      = errors.New("resource is locked")

	// Webhooks and notifications
	ErrNoWebhook   = errors.New("no webhook url configured")
	ErrEmailFailed = errors.New("failed to send email")
)

// QuotaError is returned when a send would exceed the plan's monthly limit.
type QuotaError struct {
	Used  int
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("monthly message limit reached (%d/%d)", e.Used, e.Limit)
}

func (e *QuotaError) Unwrap() error { return ErrMessageLimitReached }
