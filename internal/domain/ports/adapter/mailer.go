package adapter

import (
	"context"
	"time"
)

type PaymentSuccessEmail struct {
	To            string
	CustomerName  string
	PlanName      string
	MessageLimit  int
	Amount        int64
	InvoiceNumber string
	InvoiceURL    string
	PaidAt        time.Time
	ValidUntil    time.Time
}

type DeviceDisconnectedEmail struct {
	To           string
	CustomerName string
	DeviceName   string
	PhoneNumber  string
	DashboardURL string
	At           time.Time
}

// Mailer renders and sends transactional emails.
type Mailer interface {
	Configured() bool
	SendPaymentSuccess(ctx context.Context, e PaymentSuccessEmail) error
	SendDeviceDisconnected(ctx context.Context, e DeviceDisconnectedEmail) error
}
