package apiv1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"apivro/internal/domain"
	"apivro/internal/infra/api"
	"apivro/internal/infra/logging"
	"apivro/internal/usecase"
)

type authCtxKey struct{}

func authFrom(ctx context.Context) usecase.AuthContext {
	a, _ := ctx.Value(authCtxKey{}).(usecase.AuthContext)
	return a
}

// requireAPIKey resolves X-API-Key to its owning user and device.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, err := s.APIKeys.Authenticate(r.Context(), r.Header.Get("X-API-Key"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), authCtxKey{}, *auth)
		ctx = logging.WithUserID(ctx, auth.UserID)
		ctx = logging.WithDeviceID(ctx, auth.DeviceID)
		ctx = logging.WithAPIKeyID(ctx, auth.APIKeyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireSession verifies the dashboard bearer token.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Sessions == nil {
			s.writeError(w, r, domain.ErrUnauthorized)
			return
		}
		claims, err := s.Sessions.ParseFromRequest(r)
		if err != nil {
			s.writeError(w, r, domain.ErrUnauthorized)
			return
		}
		ctx := api.WithSession(r.Context(), claims)
		ctx = logging.WithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit applies the per-key budget; it must run after requireAPIKey.
// Limiter failures fail open.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Limiter == nil || s.opts.RateLimitPerMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		auth := authFrom(r.Context())
		ok, err := s.Limiter.Allow(r.Context(), "api_key:"+auth.APIKeyID, s.opts.RateLimitPerMinute, time.Minute)
		if err != nil {
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(60))
			s.writeError(w, r, domain.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
