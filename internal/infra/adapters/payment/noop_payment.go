package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is an in-memory gateway for local runs and tests.
// Transactions start UNPAID; SetStatus moves them.
type NoopPaymentGateway struct {
	mu   sync.Mutex
	seq  int64
	txns map[string]*adapter.Transaction
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{txns: make(map[string]*adapter.Transaction)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) Channel(code string) (model.PaymentChannel, bool) {
	return findChannel(tripayChannels, code)
}

func (g *NoopPaymentGateway) Channels() []model.PaymentChannel { return copyChannels(tripayChannels) }

func (g *NoopPaymentGateway) next() string {
	g.seq++
	return fmt.Sprintf("NOOP-%d", g.seq)
}

func (g *NoopPaymentGateway) CreateTransaction(ctx context.Context, req adapter.TransactionRequest) (*adapter.Transaction, error) {
	ch, ok := g.Channel(req.Method)
	if !ok {
		return nil, &adapter.UpstreamError{Service: g.Name(), StatusCode: 400}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := g.next()
	exp := req.ExpiresAt
	if exp.IsZero() {
		exp = time.Now().Add(24 * time.Hour)
	}
	tx := &adapter.Transaction{
		Reference:   ref,
		MerchantRef: req.MerchantRef,
		Method:      ch.Code,
		MethodName:  ch.Name,
		Amount:      req.Amount,
		Status:      "UNPAID",
		CheckoutURL: "https://example.test/checkout/" + ref,
		PayCode:     ref,
		ExpiresAt:   &exp,
	}
	tx.Raw = g.raw(tx)
	g.txns[ref] = tx
	cp := *tx
	return &cp, nil
}

func (g *NoopPaymentGateway) TransactionDetail(ctx context.Context, reference string) (*adapter.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tx, ok := g.txns[reference]
	if !ok {
		return nil, &adapter.UpstreamError{Service: g.Name(), StatusCode: 404}
	}
	cp := *tx
	return &cp, nil
}

// SetStatus changes the provider-side status of a known transaction.
func (g *NoopPaymentGateway) SetStatus(reference, status string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	tx, ok := g.txns[reference]
	if !ok {
		return false
	}
	tx.Status = status
	tx.Raw = g.raw(tx)
	return true
}

func (g *NoopPaymentGateway) raw(tx *adapter.Transaction) json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"reference":      tx.Reference,
		"merchant_ref":   tx.MerchantRef,
		"payment_method": tx.Method,
		"amount":         tx.Amount,
		"status":         tx.Status,
	})
	return b
}
