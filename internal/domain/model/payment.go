package model

import (
	"encoding/json"
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // created at the gateway; awaiting callback
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
	PaymentStatusRefund  PaymentStatus = "refund"
)

// IsTerminal reports whether no further transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired, PaymentStatusRefund:
		return true
	}
	return false
}

// CanTransitionTo allows pending -> any terminal state and nothing else.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentStatusPending && next.IsTerminal()
}

// PaymentStatusFromGateway maps the gateway vocabulary onto the local enum.
// Unknown values map to pending.
func PaymentStatusFromGateway(status string) PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "PAID":
		return PaymentStatusPaid
	case "EXPIRED":
		return PaymentStatusExpired
	case "FAILED":
		return PaymentStatusFailed
	case "REFUND":
		return PaymentStatusRefund
	default:
		return PaymentStatusPending
	}
}

// Payment records one gateway transaction for a plan purchase.
// Reference is gateway-assigned and globally unique; MerchantRef is ours.
type Payment struct {
	ID            string
	UserID        string
	PlanID        string
	Reference     string
	MerchantRef   string
	PaymentMethod string // channel code, e.g. QRIS
	PaymentName   string // channel display name
	Amount        int64  // plan price
	Fee           int64
	TotalAmount   int64
	Status        PaymentStatus
	CheckoutURL   string
	QRURL         string
	PayCode       string
	ExpiredAt     *time.Time
	PaidAt        *time.Time
	InvoiceNumber string
	InvoiceURL    string
	Metadata      json.RawMessage // last seen gateway payload
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasInvoice reports whether an invoice was already issued for this payment.
func (p *Payment) HasInvoice() bool { return p != nil && p.InvoiceNumber != "" }
