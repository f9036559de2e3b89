package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"apivro/internal/domain/model"
)

type TextMessage struct {
	Session string
	ChatID  string
	Text    string
}

type ImageMessage struct {
	Session string
	ChatID  string
	Media   model.Media
}

// SendResult is the gateway acknowledgement. ID may be empty.
type SendResult struct {
	ID  string
	Raw json.RawMessage
}

// MessagingGateway is the WhatsApp HTTP gateway.
type MessagingGateway interface {
	// ChatID turns normalized digits into the gateway's chat address.
	ChatID(digits string) string
	SendText(ctx context.Context, msg TextMessage) (*SendResult, error)
	SendImage(ctx context.Context, msg ImageMessage) (*SendResult, error)
}

// UpstreamError carries a non-2xx answer from an external HTTP service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}
