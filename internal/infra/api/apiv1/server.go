// Package apiv1 is the public JSON API mounted under /api/v1.
package apiv1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"apivro/internal/domain/ports/adapter"
	"apivro/internal/infra/api"
	"apivro/internal/usecase"
)

// Deps groups the use cases and guards the API needs. Limiter may be nil.
type Deps struct {
	Messages      usecase.MessageUseCase
	Quota         usecase.QuotaUseCase
	APIKeys       usecase.APIKeyUseCase
	Payments      usecase.PaymentUseCase
	Webhooks      usecase.WebhookUseCase
	Notifications usecase.NotificationUseCase
	Sessions      *api.SessionManager
	Limiter       adapter.RateLimiter
}

type Options struct {
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

type Server struct {
	Deps
	opts     Options
	validate *validator.Validate
	log      *zerolog.Logger
	now      func() time.Time
}

func NewServer(deps Deps, opts Options, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "apiv1").Logger()
	return &Server{
		Deps:     deps,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      &l,
		now:      time.Now,
	}
}

// RegisterAPIV1 mounts every route on r. Guards are applied first so the
// request log sees the matched route pattern.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Use(api.Guard(s.log, s.opts.RequestTimeout)...)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/messages", func(r chi.Router) {
			r.Use(s.requireAPIKey, s.rateLimit)
			r.Post("/send", s.sendMessage)
			r.Get("/quota", s.getQuota)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/channels", s.listChannels)
			r.Post("/tripay/callback", s.paymentCallback)
			r.With(s.requireSession).Post("/create", s.createPayment)
			r.With(s.requireSession).Post("/sync-all", s.syncPayments)
			r.With(s.requireAPIKey, s.rateLimit).Get("/{reference}", s.getPayment)
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/incoming", s.incomingWebhook)
			r.With(s.requireSession).Post("/test/{deviceId}", s.testWebhook)
			r.With(s.requireSession).Get("/logs", s.webhookLogs)
		})

		r.With(s.requireSession).Post("/devices/{deviceId}/disconnect-notification", s.deviceDisconnected)
	})
}

// Handler builds a standalone router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	RegisterAPIV1(r, s)
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads at most 1 MiB of JSON into dst.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst)
}
