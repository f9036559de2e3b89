package model

import "time"

type DeviceStatus string

const (
	DeviceStatusConnected    DeviceStatus = "connected"
	DeviceStatusDisconnected DeviceStatus = "disconnected"
	DeviceStatusScanning     DeviceStatus = "scanning"
)

// Device is one WhatsApp number linked through the messaging gateway.
// SessionID is assigned at creation and never changes.
type Device struct {
	ID          string
	UserID      string
	Name        string
	PhoneNumber string
	SessionID   string
	Status      DeviceStatus
	WebhookURL  string // empty when not configured
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (d *Device) IsConnected() bool { return d != nil && d.Status == DeviceStatusConnected }

func (d *Device) HasWebhook() bool { return d != nil && d.WebhookURL != "" }
