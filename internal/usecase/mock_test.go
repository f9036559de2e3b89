//go:build !integration

package usecase_test

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
	"apivro/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// ---- TxManager ----

type MockTxManager struct {
	Calls int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	return fn(ctx, nil)
}

// ---- Plans ----

type MockPlanRepo struct {
	mu   sync.Mutex
	data map[string]*model.Plan

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error)
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo(plans ...*model.Plan) *MockPlanRepo {
	m := &MockPlanRepo{data: map[string]*model.Plan{}}
	for _, p := range plans {
		m.data[p.ID] = p
	}
	return m
}

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.data[p.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Plan
	for _, p := range m.data {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Subscriptions ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Subscription

	ResetCalls int

	IncrementUsageFunc func(ctx context.Context, tx repository.Tx, id string, limit int) (int, bool, error)
	SaveFunc           func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo(subs ...*model.Subscription) *MockSubscriptionRepo {
	m := &MockSubscriptionRepo{data: map[string]*model.Subscription{}}
	for _, s := range subs {
		m.data[s.ID] = s
	}
	return m
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.data[s.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.data {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) ResetUsageIfStale(ctx context.Context, tx repository.Tx, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok || model.SameQuotaEpoch(s.LastResetAt, now) {
		return false, nil
	}
	m.ResetCalls++
	s.MessagesUsed = 0
	s.LastResetAt = now
	return true, nil
}

func (m *MockSubscriptionRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string, limit int) (int, bool, error) {
	if m.IncrementUsageFunc != nil {
		return m.IncrementUsageFunc(ctx, tx, id, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok || s.MessagesUsed >= limit {
		return 0, false, nil
	}
	s.MessagesUsed++
	return s.MessagesUsed, true, nil
}

func (m *MockSubscriptionRepo) ExpireActiveByUser(ctx context.Context, tx repository.Tx, userID string, endDate time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.data {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			s.Status = model.SubscriptionStatusExpired
			end := endDate
			s.EndDate = &end
			n++
		}
	}
	return n, nil
}

func (m *MockSubscriptionRepo) Get(id string) *model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.data[id]; ok {
		cp := *s
		return &cp
	}
	return nil
}

func (m *MockSubscriptionRepo) ByUser(userID string) []*model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.data {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

// ---- Profiles ----

type MockProfileRepo struct {
	mu   sync.Mutex
	data map[string]*model.Profile

	Incremented map[string]int
}

var _ repository.ProfileRepository = (*MockProfileRepo)(nil)

func NewMockProfileRepo(profiles ...*model.Profile) *MockProfileRepo {
	m := &MockProfileRepo{data: map[string]*model.Profile{}, Incremented: map[string]int{}}
	for _, p := range profiles {
		m.data[p.ID] = p
	}
	return m
}

func (m *MockProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.data[p.ID] = &cp
	return nil
}

func (m *MockProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepo) IncrementMessagesSent(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Incremented[id]++
	return nil
}

// ---- Devices ----

type MockDeviceRepo struct {
	mu   sync.Mutex
	data map[string]*model.Device

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Device, error)
}

var _ repository.DeviceRepository = (*MockDeviceRepo)(nil)

func NewMockDeviceRepo(devices ...*model.Device) *MockDeviceRepo {
	m := &MockDeviceRepo{data: map[string]*model.Device{}}
	for _, d := range devices {
		m.data[d.ID] = d
	}
	return m
}

func (m *MockDeviceRepo) Save(ctx context.Context, tx repository.Tx, d *model.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.data[d.ID] = &cp
	return nil
}

func (m *MockDeviceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Device, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[id]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MockDeviceRepo) FindBySessionID(ctx context.Context, tx repository.Tx, sessionID string) (*model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.data {
		if d.SessionID == sessionID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrDeviceNotFound
}

// ---- API keys ----

type MockAPIKeyRepo struct {
	mu      sync.Mutex
	data    map[string]*model.APIKey
	touched map[string]time.Time
}

var _ repository.APIKeyRepository = (*MockAPIKeyRepo)(nil)

func NewMockAPIKeyRepo() *MockAPIKeyRepo {
	return &MockAPIKeyRepo{data: map[string]*model.APIKey{}, touched: map[string]time.Time{}}
}

func (m *MockAPIKeyRepo) Save(ctx context.Context, tx repository.Tx, k *model.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *k
	m.data[k.ID] = &cp
	return nil
}

func (m *MockAPIKeyRepo) FindActiveByHash(ctx context.Context, tx repository.Tx, hash string) (*model.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.data {
		if k.KeyHash == hash && k.IsActive {
			cp := *k
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAPIKeyRepo) TouchLastUsed(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[id] = at
	return nil
}

func (m *MockAPIKeyRepo) Revoke(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	k.IsActive = false
	return nil
}

// ---- Messages ----

type MockMessageRepo struct {
	mu    sync.Mutex
	Saved []*model.Message
}

var _ repository.MessageRepository = (*MockMessageRepo)(nil)

func (m *MockMessageRepo) Save(ctx context.Context, tx repository.Tx, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.Saved = append(m.Saved, &cp)
	return nil
}

// ---- Payments ----

type MockPaymentRepo struct {
	mu   sync.Mutex
	data map[string]*model.Payment // by id

	SaveFunc                  func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	TransitionFromPendingFunc func(ctx context.Context, tx repository.Tx, id string, to model.PaymentStatus, paidAt *time.Time, metadata json.RawMessage) (bool, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo(payments ...*model.Payment) *MockPaymentRepo {
	m := &MockPaymentRepo{data: map[string]*model.Payment{}}
	for _, p := range payments {
		m.data[p.ID] = p
	}
	return m
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.data[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.data {
		if p.Reference == reference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepo) ListPendingByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.data {
		if p.UserID == userID && p.Status == model.PaymentStatusPending {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPaymentRepo) ListPendingCreatedBefore(ctx context.Context, tx repository.Tx, before time.Time, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.data {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(before) && len(out) < limit {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPaymentRepo) TransitionFromPending(ctx context.Context, tx repository.Tx, id string, to model.PaymentStatus, paidAt *time.Time, metadata json.RawMessage) (bool, error) {
	if m.TransitionFromPendingFunc != nil {
		return m.TransitionFromPendingFunc(ctx, tx, id, to, paidAt, metadata)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = to
	p.PaidAt = nil
	if to == model.PaymentStatusPaid {
		p.PaidAt = paidAt
	}
	if metadata != nil {
		p.Metadata = metadata
	}
	return true, nil
}

func (m *MockPaymentRepo) UpdateMetadata(ctx context.Context, tx repository.Tx, id string, metadata json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.data[id]; ok {
		p.Metadata = metadata
	}
	return nil
}

func (m *MockPaymentRepo) SetInvoice(ctx context.Context, tx repository.Tx, id, number, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if p.InvoiceNumber == "" {
		p.InvoiceNumber, p.InvoiceURL = number, url
	}
	return nil
}

func (m *MockPaymentRepo) Get(id string) *model.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.data[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

func (m *MockPaymentRepo) All() []*model.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.data {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// ---- Webhook logs ----

type MockWebhookLogRepo struct {
	mu    sync.Mutex
	Saved []*model.WebhookLog

	LastFilter model.WebhookLogFilter
	ListFunc   func(ctx context.Context, tx repository.Tx, f model.WebhookLogFilter) ([]*model.WebhookLog, int64, error)
	StatsFunc  func(ctx context.Context, tx repository.Tx, f model.WebhookLogFilter) (model.WebhookStats, error)
}

var _ repository.WebhookLogRepository = (*MockWebhookLogRepo)(nil)

func (m *MockWebhookLogRepo) Save(ctx context.Context, tx repository.Tx, l *model.WebhookLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.Saved = append(m.Saved, &cp)
	return nil
}

func (m *MockWebhookLogRepo) List(ctx context.Context, tx repository.Tx, f model.WebhookLogFilter) ([]*model.WebhookLog, int64, error) {
	m.LastFilter = f
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tx, f)
	}
	return nil, 0, nil
}

func (m *MockWebhookLogRepo) Stats(ctx context.Context, tx repository.Tx, f model.WebhookLogFilter) (model.WebhookStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, tx, f)
	}
	return model.WebhookStats{}, nil
}

// ---- Notifications ----

type MockNotificationRepo struct {
	mu    sync.Mutex
	prefs map[string]*model.NotificationPreferences
	Saved []*model.Notification
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func NewMockNotificationRepo() *MockNotificationRepo {
	return &MockNotificationRepo{prefs: map[string]*model.NotificationPreferences{}}
}

func (m *MockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.Saved = append(m.Saved, &cp)
	return nil
}

func (m *MockNotificationRepo) FindPreferences(ctx context.Context, tx repository.Tx, userID string) (*model.NotificationPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return model.DefaultNotificationPreferences(userID), nil
}

func (m *MockNotificationRepo) SavePreferences(ctx context.Context, tx repository.Tx, p *model.NotificationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.prefs[p.UserID] = &cp
	return nil
}

// =============================
// Adapters
// =============================

// ---- MessagingGateway ----

type MockMessagingGateway struct {
	mu     sync.Mutex
	Texts  []adapter.TextMessage
	Images []adapter.ImageMessage

	SendTextFunc  func(ctx context.Context, msg adapter.TextMessage) (*adapter.SendResult, error)
	SendImageFunc func(ctx context.Context, msg adapter.ImageMessage) (*adapter.SendResult, error)
}

var _ adapter.MessagingGateway = (*MockMessagingGateway)(nil)

func (m *MockMessagingGateway) ChatID(digits string) string { return digits + "@c.us" }

func (m *MockMessagingGateway) SendText(ctx context.Context, msg adapter.TextMessage) (*adapter.SendResult, error) {
	m.mu.Lock()
	m.Texts = append(m.Texts, msg)
	m.mu.Unlock()
	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, msg)
	}
	return &adapter.SendResult{ID: "wa-text-1"}, nil
}

func (m *MockMessagingGateway) SendImage(ctx context.Context, msg adapter.ImageMessage) (*adapter.SendResult, error) {
	m.mu.Lock()
	m.Images = append(m.Images, msg)
	m.mu.Unlock()
	if m.SendImageFunc != nil {
		return m.SendImageFunc(ctx, msg)
	}
	return &adapter.SendResult{ID: "wa-image-1"}, nil
}

// ---- WebhookClient ----

type MockWebhookClient struct {
	mu       sync.Mutex
	URLs     []string
	Payloads []any

	PostFunc func(ctx context.Context, url string, payload any) (int, error)
}

var _ adapter.WebhookClient = (*MockWebhookClient)(nil)

func (m *MockWebhookClient) Post(ctx context.Context, url string, payload any) (int, error) {
	m.mu.Lock()
	m.URLs = append(m.URLs, url)
	m.Payloads = append(m.Payloads, payload)
	m.mu.Unlock()
	if m.PostFunc != nil {
		return m.PostFunc(ctx, url, payload)
	}
	return 200, nil
}

// ---- PaymentGateway ----

type MockPaymentGateway struct {
	mu       sync.Mutex
	Requests []adapter.TransactionRequest
	channels []model.PaymentChannel

	CreateTransactionFunc func(ctx context.Context, req adapter.TransactionRequest) (*adapter.Transaction, error)
	TransactionDetailFunc func(ctx context.Context, reference string) (*adapter.Transaction, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func NewMockPaymentGateway(channels ...model.PaymentChannel) *MockPaymentGateway {
	return &MockPaymentGateway{channels: channels}
}

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) Channel(code string) (model.PaymentChannel, bool) {
	for _, c := range m.channels {
		if c.Code == code {
			return c, true
		}
	}
	return model.PaymentChannel{}, false
}

func (m *MockPaymentGateway) Channels() []model.PaymentChannel { return m.channels }

func (m *MockPaymentGateway) CreateTransaction(ctx context.Context, req adapter.TransactionRequest) (*adapter.Transaction, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, req)
	}
	exp := req.ExpiresAt
	return &adapter.Transaction{
		Reference:   "T-" + req.MerchantRef,
		MerchantRef: req.MerchantRef,
		Method:      req.Method,
		Amount:      req.Amount,
		Status:      "UNPAID",
		CheckoutURL: "https://pay.test/" + req.MerchantRef,
		ExpiresAt:   &exp,
		Raw:         json.RawMessage(`{"status":"UNPAID"}`),
	}, nil
}

func (m *MockPaymentGateway) TransactionDetail(ctx context.Context, reference string) (*adapter.Transaction, error) {
	if m.TransactionDetailFunc != nil {
		return m.TransactionDetailFunc(ctx, reference)
	}
	return &adapter.Transaction{Reference: reference, Status: "UNPAID"}, nil
}

// ---- SignatureVerifier ----

// MockVerifier accepts exactly the signature "valid".
type MockVerifier struct{}

var _ adapter.SignatureVerifier = MockVerifier{}

func (MockVerifier) Sign(merchantRef string, amount int64) string { return "valid" }
func (MockVerifier) Verify(merchantRef string, amount int64, signature string) bool {
	return signature == "valid"
}

// ---- Mailer ----

type MockMailer struct {
	mu           sync.Mutex
	Unconfigured bool
	Payments     []adapter.PaymentSuccessEmail
	Disconnects  []adapter.DeviceDisconnectedEmail
	Err          error
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Configured() bool { return !m.Unconfigured }

func (m *MockMailer) SendPaymentSuccess(ctx context.Context, e adapter.PaymentSuccessEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Payments = append(m.Payments, e)
	return nil
}

func (m *MockMailer) SendDeviceDisconnected(ctx context.Context, e adapter.DeviceDisconnectedEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Disconnects = append(m.Disconnects, e)
	return nil
}

// ---- Storage + renderer ----

type MockStorage struct {
	mu   sync.Mutex
	Keys []string
	Err  error
}

var _ adapter.ObjectStorage = (*MockStorage)(nil)

func (m *MockStorage) Put(ctx context.Context, key string, body []byte, contentType string, meta map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Keys = append(m.Keys, key)
	return "https://s3.test/bucket/" + key, nil
}

type MockRenderer struct {
	Rendered []adapter.InvoiceData
	Err      error
}

var _ adapter.InvoiceRenderer = (*MockRenderer)(nil)

func (m *MockRenderer) Render(inv adapter.InvoiceData) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Rendered = append(m.Rendered, inv)
	return []byte("%PDF-1.3"), nil
}

// ---- Runtime ----

// MockTaskRunner runs tasks inline so assertions can follow immediately.
type MockTaskRunner struct {
	mu    sync.Mutex
	Names []string
}

var _ adapter.TaskRunner = (*MockTaskRunner)(nil)

func (m *MockTaskRunner) Submit(name string, task func(ctx context.Context) error) bool {
	m.mu.Lock()
	m.Names = append(m.Names, name)
	m.mu.Unlock()
	_ = task(context.Background())
	return true
}

type MockLocker struct {
	mu   sync.Mutex
	held map[string]string

	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker { return &MockLocker{held: map[string]string{}} }

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", domain.ErrLockNotAcquired
	}
	m.held[key] = "tok-" + key
	return m.held[key], nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	return nil
}

func (m *MockLocker) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}
