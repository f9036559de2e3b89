package adapter

import "time"

type InvoiceData struct {
	Number        string
	IssuedAt      time.Time
	CustomerName  string
	CustomerEmail string
	PlanName      string
	Amount        int64
	Fee           int64
	Total         int64
	PaymentMethod string
	Reference     string
}

// InvoiceRenderer produces a PDF document.
type InvoiceRenderer interface {
	Render(inv InvoiceData) ([]byte, error)
}
