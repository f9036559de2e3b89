package adapter

import (
	"context"
	"encoding/json"
	"time"

	"apivro/internal/domain/model"
)

// TransactionRequest is what we send to the provider to open a transaction.
type TransactionRequest struct {
	Method        string
	MerchantRef   string
	Amount        int64 // total charged to the customer
	CustomerName  string
	CustomerEmail string
	ItemName      string
	ItemPrice     int64
	ExpiresAt     time.Time
}

// Transaction is the provider's view of a transaction. Optional fields are
// pointers or empty strings; callers must not assume their presence.
type Transaction struct {
	Reference   string
	MerchantRef string
	Method      string
	MethodName  string
	Amount      int64
	Status      string // provider vocabulary, e.g. UNPAID, PAID
	CheckoutURL string
	QRURL       string
	PayCode     string
	ExpiresAt   *time.Time
	Raw         json.RawMessage
}

// PaymentGateway is the hex port for the payment provider.
type PaymentGateway interface {
	Name() string
	// Channel returns the fee rule for a payment method code.
	Channel(code string) (model.PaymentChannel, bool)
	Channels() []model.PaymentChannel
	CreateTransaction(ctx context.Context, req TransactionRequest) (*Transaction, error)
	TransactionDetail(ctx context.Context, reference string) (*Transaction, error)
}

// SignatureVerifier checks HMAC signatures over merchant_code+merchant_ref+amount.
type SignatureVerifier interface {
	Sign(merchantRef string, amount int64) string
	Verify(merchantRef string, amount int64, signature string) bool
}
