package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"apivro/internal/config"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*TripayGateway)(nil)

const (
	tripayProductionURL = "https://tripay.co.id/api"
	tripaySandboxURL    = "https://tripay.co.id/api-sandbox"
	maxTripayBody       = 1 << 20
)

// TripayGateway implements adapter.PaymentGateway against the Tripay REST API.
// Mutating calls carry a bearer token plus an HMAC signature.
type TripayGateway struct {
	apiKey      string
	callbackURL string
	returnURL   string
	baseURL     string
	signer      *Signer
	client      *http.Client
	channels    []model.PaymentChannel
}

type Option func(*TripayGateway)

// WithBaseURL points the gateway at another host, mostly for tests.
func WithBaseURL(u string) Option {
	return func(g *TripayGateway) { g.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *TripayGateway) {
		if c != nil {
			g.client = c
		}
	}
}

func WithChannels(list []model.PaymentChannel) Option {
	return func(g *TripayGateway) { g.channels = copyChannels(list) }
}

func NewTripayGateway(cfg config.TripayConfig, opts ...Option) (*TripayGateway, error) {
	if cfg.MerchantCode == "" {
		return nil, errors.New("tripay merchant code empty")
	}
	if cfg.CallbackURL != "" {
		if _, err := url.Parse(cfg.CallbackURL); err != nil {
			return nil, fmt.Errorf("invalid callback url: %w", err)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	g := &TripayGateway{
		apiKey:      cfg.APIKey,
		callbackURL: cfg.CallbackURL,
		returnURL:   cfg.ReturnURL,
		baseURL:     tripayProductionURL,
		signer:      NewSigner(cfg.MerchantCode, cfg.PrivateKey),
		client:      &http.Client{Timeout: timeout},
		channels:    copyChannels(tripayChannels),
	}
	if cfg.Sandbox() {
		g.baseURL = tripaySandboxURL
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

func (g *TripayGateway) Name() string { return "tripay" }

func (g *TripayGateway) endpoint(path string) string { return g.baseURL + path }

func (g *TripayGateway) Channel(code string) (model.PaymentChannel, bool) {
	return findChannel(g.channels, code)
}

func (g *TripayGateway) Channels() []model.PaymentChannel { return copyChannels(g.channels) }

type tripayOrderItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type tripayCreateRequest struct {
	Method        string            `json:"method"`
	MerchantRef   string            `json:"merchant_ref"`
	Amount        int64             `json:"amount"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone string            `json:"customer_phone"`
	OrderItems    []tripayOrderItem `json:"order_items"`
	CallbackURL   string            `json:"callback_url,omitempty"`
	ReturnURL     string            `json:"return_url,omitempty"`
	ExpiredTime   int64             `json:"expired_time"`
	Signature     string            `json:"signature"`
}

type tripayTransaction struct {
	Reference     string `json:"reference"`
	MerchantRef   string `json:"merchant_ref"`
	PaymentMethod string `json:"payment_method"`
	PaymentName   string `json:"payment_name"`
	Amount        int64  `json:"amount"`
	PayCode       string `json:"pay_code"`
	PayURL        string `json:"pay_url"`
	CheckoutURL   string `json:"checkout_url"`
	QRURL         string `json:"qr_url"`
	Status        string `json:"status"`
	ExpiredTime   int64  `json:"expired_time"`
}

type tripayEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CreateTransaction opens a closed-payment transaction.
func (g *TripayGateway) CreateTransaction(ctx context.Context, req adapter.TransactionRequest) (*adapter.Transaction, error) {
	itemPrice := req.ItemPrice
	if itemPrice == 0 {
		itemPrice = req.Amount
	}
	expires := req.ExpiresAt
	if expires.IsZero() {
		expires = time.Now().Add(24 * time.Hour)
	}
	payload := tripayCreateRequest{
		Method:        req.Method,
		MerchantRef:   req.MerchantRef,
		Amount:        req.Amount,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		OrderItems:    []tripayOrderItem{{Name: req.ItemName, Price: itemPrice, Quantity: 1}},
		CallbackURL:   g.callbackURL,
		ReturnURL:     g.returnURL,
		ExpiredTime:   expires.Unix(),
		Signature:     g.signer.Sign(req.MerchantRef, req.Amount),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/transaction/create"), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return g.do(httpReq)
}

// TransactionDetail fetches the current state of a transaction by gateway reference.
func (g *TripayGateway) TransactionDetail(ctx context.Context, reference string) (*adapter.Transaction, error) {
	u := g.endpoint("/transaction/detail") + "?reference=" + url.QueryEscape(reference)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return g.do(httpReq)
}

func (g *TripayGateway) do(req *http.Request) (*adapter.Transaction, error) {
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTripayBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &adapter.UpstreamError{Service: g.Name(), StatusCode: resp.StatusCode, Body: rawOrNil(body)}
	}
	var env tripayEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode tripay response: %w", err)
	}
	// Tripay reports business failures as 200 with success=false.
	if !env.Success {
		return nil, &adapter.UpstreamError{Service: g.Name(), StatusCode: http.StatusBadRequest, Body: rawOrNil(body)}
	}
	var tx tripayTransaction
	if err := json.Unmarshal(env.Data, &tx); err != nil {
		return nil, fmt.Errorf("decode tripay transaction: %w", err)
	}
	out := &adapter.Transaction{
		Reference:   tx.Reference,
		MerchantRef: tx.MerchantRef,
		Method:      tx.PaymentMethod,
		MethodName:  tx.PaymentName,
		Amount:      tx.Amount,
		Status:      tx.Status,
		CheckoutURL: tx.CheckoutURL,
		QRURL:       tx.QRURL,
		PayCode:     tx.PayCode,
		Raw:         env.Data,
	}
	if out.CheckoutURL == "" {
		out.CheckoutURL = tx.PayURL
	}
	if tx.ExpiredTime > 0 {
		t := time.Unix(tx.ExpiredTime, 0).UTC()
		out.ExpiresAt = &t
	}
	return out, nil
}

func rawOrNil(b []byte) json.RawMessage {
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	return nil
}
