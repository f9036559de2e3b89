package apiv1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"apivro/internal/domain/model"
	"apivro/internal/infra/api"
	"apivro/internal/usecase"
)

type createPaymentRequest struct {
	PlanID        string `json:"plan_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// checkoutJSON is what the dashboard needs to send the customer to pay.
type checkoutJSON struct {
	ID            string     `json:"id"`
	Reference     string     `json:"reference"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	CheckoutURL   string     `json:"checkout_url"`
	QRURL         string     `json:"qr_url,omitempty"`
	PayCode       string     `json:"pay_code,omitempty"`
	ExpiredAt     *time.Time `json:"expired_at"`
}

type paymentJSON struct {
	ID            string          `json:"id"`
	PlanID        string          `json:"plan_id"`
	Reference     string          `json:"reference"`
	MerchantRef   string          `json:"merchant_ref"`
	PaymentMethod string          `json:"payment_method"`
	PaymentName   string          `json:"payment_name"`
	Amount        int64           `json:"amount"`
	Fee           int64           `json:"fee"`
	TotalAmount   int64           `json:"total_amount"`
	Status        string          `json:"status"`
	CheckoutURL   string          `json:"checkout_url,omitempty"`
	QRURL         string          `json:"qr_url,omitempty"`
	PayCode       string          `json:"pay_code,omitempty"`
	ExpiredAt     *time.Time      `json:"expired_at"`
	PaidAt        *time.Time      `json:"paid_at"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	InvoiceURL    string          `json:"invoice_url,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPaymentJSON(p *model.Payment) paymentJSON {
	return paymentJSON{
		ID:            p.ID,
		PlanID:        p.PlanID,
		Reference:     p.Reference,
		MerchantRef:   p.MerchantRef,
		PaymentMethod: p.PaymentMethod,
		PaymentName:   p.PaymentName,
		Amount:        p.Amount,
		Fee:           p.Fee,
		TotalAmount:   p.TotalAmount,
		Status:        string(p.Status),
		CheckoutURL:   p.CheckoutURL,
		QRURL:         p.QRURL,
		PayCode:       p.PayCode,
		ExpiredAt:     p.ExpiredAt,
		PaidAt:        p.PaidAt,
		InvoiceNumber: p.InvoiceNumber,
		InvoiceURL:    p.InvoiceURL,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
	}
}

// tripayCallback is the subset of the provider push we act on.
type tripayCallback struct {
	Reference   string `json:"reference"`
	MerchantRef string `json:"merchant_ref"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	TotalAmount int64  `json:"total_amount"`
	Signature   string `json:"signature"`
}

func (s *Server) listChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"channels": s.Payments.Channels(),
	})
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be a JSON object")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, "MISSING_FIELDS", "plan_id and payment_method are required")
		return
	}

	p, err := s.Payments.Create(r.Context(), usecase.CreatePaymentInput{
		UserID:        api.SessionUserID(r.Context()),
		PlanID:        req.PlanID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"payment": checkoutJSON{
			ID:            p.ID,
			Reference:     p.Reference,
			Amount:        p.TotalAmount,
			Status:        string(p.Status),
			PaymentMethod: p.PaymentName,
			CheckoutURL:   p.CheckoutURL,
			QRURL:         p.QRURL,
			PayCode:       p.PayCode,
			ExpiredAt:     p.ExpiredAt,
		},
	})
}

func (s *Server) paymentCallback(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		badRequest(w, "INVALID_JSON", "unreadable body")
		return
	}
	var cb tripayCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be a JSON object")
		return
	}

	res, err := s.Payments.HandleCallback(r.Context(), usecase.CallbackInput{
		Reference:   cb.Reference,
		MerchantRef: cb.MerchantRef,
		Status:      cb.Status,
		Amount:      cb.Amount,
		TotalAmount: cb.TotalAmount,
		Signature:   cb.Signature,
		Raw:         json.RawMessage(raw),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	msg := "Callback processed"
	if !res.Changed {
		msg = "Callback already processed"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": msg,
		"status":  res.Status,
	})
}

func (s *Server) syncPayments(w http.ResponseWriter, r *http.Request) {
	res, err := s.Payments.SyncPending(r.Context(), api.SessionUserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Synced %d payments", res.Updated),
		"checked": res.Checked,
		"synced":  res.Updated,
	})
}

func (s *Server) getPayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.Payments.GetByReference(r.Context(), authFrom(r.Context()).UserID, chi.URLParam(r, "reference"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"payment": toPaymentJSON(p),
	})
}
