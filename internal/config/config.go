// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	PublicURL       string        `yaml:"public_url"`    // used for callback/return urls
	DashboardURL    string        `yaml:"dashboard_url"` // links in emails
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables redis
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type WAHAConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type TripayConfig struct {
	MerchantCode           string        `yaml:"merchant_code"`
	APIKey                 string        `yaml:"api_key"`
	PrivateKey             string        `yaml:"private_key"`
	Mode                   string        `yaml:"mode"` // sandbox|production
	CallbackURL            string        `yaml:"callback_url"`
	ReturnURL              string        `yaml:"return_url"`
	Timeout                time.Duration `yaml:"timeout"`
	AllowUnsignedCallbacks *bool         `yaml:"allow_unsigned_callbacks"`
}

// DevicesURL is the dashboard page linked from device emails, empty when no dashboard is set.
func (h HTTPConfig) DevicesURL() string {
	if h.DashboardURL == "" {
		return ""
	}
	return strings.TrimRight(h.DashboardURL, "/") + "/devices"
}

func (t TripayConfig) Sandbox() bool { return !strings.EqualFold(t.Mode, "production") }

// UnsignedCallbacksAllowed defaults to true in sandbox and false in production.
func (t TripayConfig) UnsignedCallbacksAllowed() bool {
	if t.AllowUnsignedCallbacks != nil {
		return *t.AllowUnsignedCallbacks
	}
	return t.Sandbox()
}

type WebhookConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"` // defaults to endpoint
}

type InvoiceConfig struct {
	CompanyName    string `yaml:"company_name"`
	CompanyAddress string `yaml:"company_address"`
	CompanyEmail   string `yaml:"company_email"`
}

type SchedulerConfig struct {
	PaymentSyncInterval time.Duration `yaml:"payment_sync_interval"` // 0 disables
	PaymentStaleAfter   time.Duration `yaml:"payment_stale_after"`
}

type WorkerConfig struct {
	Workers     int           `yaml:"workers"`
	Queue       int           `yaml:"queue"`
	TaskTimeout time.Duration `yaml:"task_timeout"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"` // 0 disables
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	WAHA      WAHAConfig      `yaml:"waha"`
	Tripay    TripayConfig    `yaml:"tripay"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	S3        S3Config        `yaml:"s3"`
	Invoice   InvoiceConfig   `yaml:"invoice"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Worker    WorkerConfig    `yaml:"worker"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, loads an optional .env next to the working
// directory, applies environment overrides for secrets and fills defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load() // optional

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse builds a Config from YAML bytes. Exposed for tests and the CLI.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Tripay.MerchantCode == "" {
		return nil, errors.New("tripay.merchant_code is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.Database.URL, "DATABASE_URL")
	override(&cfg.Redis.URL, "REDIS_URL")
	override(&cfg.Auth.JWTSecret, "AUTH_JWT_SECRET")
	override(&cfg.WAHA.APIKey, "WAHA_API_KEY")
	override(&cfg.Tripay.APIKey, "TRIPAY_API_KEY")
	override(&cfg.Tripay.PrivateKey, "TRIPAY_PRIVATE_KEY")
	override(&cfg.Tripay.MerchantCode, "TRIPAY_MERCHANT_CODE")
	override(&cfg.SMTP.Password, "SMTP_PASS")
	override(&cfg.S3.AccessKey, "S3_ACCESS_KEY")
	override(&cfg.S3.SecretKey, "S3_SECRET_KEY")
}

func override(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "apivro"
	}
	if cfg.WAHA.BaseURL == "" {
		cfg.WAHA.BaseURL = "http://localhost:3000"
	}
	if cfg.WAHA.Timeout <= 0 {
		cfg.WAHA.Timeout = 30 * time.Second
	}
	if cfg.Tripay.Mode == "" {
		cfg.Tripay.Mode = "sandbox"
	}
	if cfg.Tripay.Timeout <= 0 {
		cfg.Tripay.Timeout = 15 * time.Second
	}
	if cfg.Tripay.CallbackURL == "" && cfg.HTTP.PublicURL != "" {
		cfg.Tripay.CallbackURL = strings.TrimRight(cfg.HTTP.PublicURL, "/") + "/payments/tripay/callback"
	}
	if cfg.Tripay.ReturnURL == "" && cfg.HTTP.DashboardURL != "" {
		cfg.Tripay.ReturnURL = strings.TrimRight(cfg.HTTP.DashboardURL, "/") + "/billing"
	}
	if cfg.Webhook.Timeout <= 0 {
		cfg.Webhook.Timeout = 5 * time.Second
	}
	if cfg.Webhook.UserAgent == "" {
		cfg.Webhook.UserAgent = "API-VRO-Webhook/1.0"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.FromName == "" {
		cfg.SMTP.FromName = "API VRO"
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.S3.PublicURL == "" {
		cfg.S3.PublicURL = cfg.S3.Endpoint
	}
	if cfg.Invoice.CompanyName == "" {
		cfg.Invoice.CompanyName = "API VRO"
	}
	if cfg.Scheduler.PaymentStaleAfter <= 0 {
		cfg.Scheduler.PaymentStaleAfter = 10 * time.Minute
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 4
	}
	if cfg.Worker.TaskTimeout <= 0 {
		cfg.Worker.TaskTimeout = 30 * time.Second
	}
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
