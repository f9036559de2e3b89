package model

import (
	"strings"
	"time"
	"unicode"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeMedia MessageType = "media"
)

type MessageStatus string

const (
	MessageStatusSent   MessageStatus = "sent"
	MessageStatusFailed MessageStatus = "failed"
)

// Message is the append-only record of one dispatch attempt.
type Message struct {
	ID               string
	UserID           string
	DeviceID         string
	SubscriptionID   string
	APIKeyID         string
	Recipient        string
	Type             MessageType
	Status           MessageStatus
	GatewayMessageID string
	ErrorMessage     string
	CreatedAt        time.Time
}

// Media describes an image attachment by URL.
type Media struct {
	URL      string `json:"url" validate:"required,url"`
	Mimetype string `json:"mimetype,omitempty"`
	Filename string `json:"filename,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// NormalizeRecipient strips every non-digit character.
func NormalizeRecipient(to string) string {
	var b strings.Builder
	b.Grow(len(to))
	for _, r := range to {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
