package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
	"apivro/internal/domain/ports/repository"
	"apivro/internal/infra/logging"
	"apivro/internal/infra/metrics"
)

// Compile-time check
var _ InvoiceUseCase = (*invoiceUC)(nil)

type Invoice struct {
	Number string
	URL    string
}

// InvoiceUseCase renders, stores and records the invoice of a paid payment.
type InvoiceUseCase interface {
	Issue(ctx context.Context, p *model.Payment, plan *model.Plan, customer *model.Profile) (*Invoice, error)
}

type invoiceUC struct {
	payments repository.PaymentRepository
	renderer adapter.InvoiceRenderer
	storage  adapter.ObjectStorage
	log      *zerolog.Logger
	now      func() time.Time
}

func NewInvoiceUseCase(payments repository.PaymentRepository, renderer adapter.InvoiceRenderer, storage adapter.ObjectStorage, logger *zerolog.Logger) *invoiceUC {
	l := logger.With().Str("component", "invoice").Logger()
	return &invoiceUC{payments: payments, renderer: renderer, storage: storage, log: &l, now: time.Now}
}

// shortID is the first 8 characters of a user id, used in human-facing references.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func NewInvoiceNumber(userID string) string {
	return fmt.Sprintf("INV-%s-%s", ulid.Make().String(), shortID(userID))
}

func NewMerchantRef(userID string) string {
	return fmt.Sprintf("APIVRO-%s-%s", ulid.Make().String(), shortID(userID))
}

func (u *invoiceUC) Issue(ctx context.Context, p *model.Payment, plan *model.Plan, customer *model.Profile) (*Invoice, error) {
	defer logging.TraceDuration(u.log, "InvoiceUC.Issue")()

	if p.HasInvoice() {
		return &Invoice{Number: p.InvoiceNumber, URL: p.InvoiceURL}, nil
	}
	if u.renderer == nil || u.storage == nil {
		metrics.IncInvoice("disabled")
		return nil, fmt.Errorf("invoice storage not configured")
	}

	issuedAt := u.now()
	if p.PaidAt != nil {
		issuedAt = *p.PaidAt
	}
	number := NewInvoiceNumber(p.UserID)
	data := adapter.InvoiceData{
		Number:        number,
		IssuedAt:      issuedAt,
		PlanName:      plan.Name,
		Amount:        p.Amount,
		Fee:           p.Fee,
		Total:         p.TotalAmount,
		PaymentMethod: p.PaymentName,
		Reference:     p.Reference,
	}
	if data.PaymentMethod == "" {
		data.PaymentMethod = p.PaymentMethod
	}
	if customer != nil {
		data.CustomerName = customer.DisplayName()
		data.CustomerEmail = customer.Email
	}

	pdf, err := u.renderer.Render(data)
	if err != nil {
		metrics.IncInvoice("render_failed")
		return nil, err
	}
	key := fmt.Sprintf("invoices/%d/%s.pdf", issuedAt.Year(), number)
	url, err := u.storage.Put(ctx, key, pdf, "application/pdf", map[string]string{
		"invoice-number": number,
		"payment-id":     p.ID,
		"user-id":        p.UserID,
	})
	if err != nil {
		metrics.IncInvoice("upload_failed")
		return nil, err
	}
	if err := u.payments.SetInvoice(ctx, repository.NoTX, p.ID, number, url); err != nil {
		metrics.IncInvoice("save_failed")
		return nil, err
	}
	p.InvoiceNumber, p.InvoiceURL = number, url
	metrics.IncInvoice("issued")
	u.log.Info().Str("payment_id", p.ID).Str("invoice", number).Msg("invoice issued")
	return &Invoice{Number: number, URL: url}, nil
}
