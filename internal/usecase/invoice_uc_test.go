//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"apivro/internal/domain/model"
	"apivro/internal/usecase"
)

func TestInvoiceUseCase_Issue(t *testing.T) {
	ctx := context.Background()
	paidAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	plan := &model.Plan{ID: "pro", Name: "Pro"}
	customer := &model.Profile{ID: "user-1234567890", Email: "rina@example.com", FullName: "Rina"}

	newPayment := func() *model.Payment {
		return &model.Payment{
			ID: "pay-1", UserID: "user-1234567890", Reference: "T1", PaymentMethod: "QRIS",
			Amount: 100000, Fee: 1450, TotalAmount: 101450, Status: model.PaymentStatusPaid, PaidAt: &paidAt,
		}
	}

	t.Run("should render, upload and record the invoice", func(t *testing.T) {
		p := newPayment()
		payments := NewMockPaymentRepo(p)
		renderer, storage := &MockRenderer{}, &MockStorage{}
		uc := usecase.NewInvoiceUseCase(payments, renderer, storage, newTestLogger())

		inv, err := uc.Issue(ctx, p, plan, customer)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(inv.Number, "INV-") || !strings.HasSuffix(inv.Number, "-user-123") {
			t.Errorf("unexpected invoice number %q", inv.Number)
		}
		if len(storage.Keys) != 1 || storage.Keys[0] != "invoices/2026/"+inv.Number+".pdf" {
			t.Errorf("unexpected storage keys %v", storage.Keys)
		}
		data := renderer.Rendered[0]
		if data.CustomerName != "Rina" || data.PaymentMethod != "QRIS" || data.Total != 101450 || !data.IssuedAt.Equal(paidAt) {
			t.Errorf("unexpected render data: %+v", data)
		}
		stored := payments.Get("pay-1")
		if stored.InvoiceNumber != inv.Number || stored.InvoiceURL != inv.URL {
			t.Errorf("expected invoice recorded on payment, got %+v", stored)
		}
	})

	t.Run("should not issue twice", func(t *testing.T) {
		p := newPayment()
		p.InvoiceNumber, p.InvoiceURL = "INV-X", "https://s3.test/x.pdf"
		renderer, storage := &MockRenderer{}, &MockStorage{}
		uc := usecase.NewInvoiceUseCase(NewMockPaymentRepo(p), renderer, storage, newTestLogger())

		inv, err := uc.Issue(ctx, p, plan, customer)

		if err != nil || inv.Number != "INV-X" {
			t.Fatalf("expected existing invoice, got %+v %v", inv, err)
		}
		if len(renderer.Rendered) != 0 || len(storage.Keys) != 0 {
			t.Error("expected no rendering or upload")
		}
	})

	t.Run("should fail without recording when upload fails", func(t *testing.T) {
		p := newPayment()
		payments := NewMockPaymentRepo(p)
		uc := usecase.NewInvoiceUseCase(payments, &MockRenderer{}, &MockStorage{Err: errors.New("s3 down")}, newTestLogger())

		if _, err := uc.Issue(ctx, p, plan, customer); err == nil {
			t.Fatal("expected an error")
		}
		if payments.Get("pay-1").HasInvoice() {
			t.Error("expected no invoice recorded")
		}
	})

	t.Run("should fail when storage is not configured", func(t *testing.T) {
		p := newPayment()
		uc := usecase.NewInvoiceUseCase(NewMockPaymentRepo(p), &MockRenderer{}, nil, newTestLogger())

		if _, err := uc.Issue(ctx, p, plan, customer); err == nil {
			t.Error("expected an error")
		}
	})
}
