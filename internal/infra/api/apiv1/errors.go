package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"apivro/internal/domain"
	"apivro/internal/domain/ports/adapter"
	"apivro/internal/infra/logging"
)

// errorBody is the uniform failure envelope.
type errorBody struct {
	Code    string
	Message string
	Extra   map[string]any
}

func (e errorBody) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Extra)+3)
	for k, v := range e.Extra {
		m[k] = v
	}
	m["success"] = false
	m["error"] = e.Code
	m["message"] = e.Message
	return json.Marshal(m)
}

var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrMissingRecipient, http.StatusBadRequest, "MISSING_RECIPIENT"},
	{domain.ErrMissingContent, http.StatusBadRequest, "MISSING_CONTENT"},
	{domain.ErrInvalidArgument, http.StatusBadRequest, "INVALID_REQUEST"},
	{domain.ErrPlanNotFound, http.StatusBadRequest, "PLAN_NOT_FOUND"},
	{domain.ErrInvalidPaymentMethod, http.StatusBadRequest, "INVALID_PAYMENT_METHOD"},
	{domain.ErrNoWebhook, http.StatusBadRequest, "NO_WEBHOOK"},

	{domain.ErrAPIKeyRequired, http.StatusUnauthorized, "API_KEY_REQUIRED"},
	{domain.ErrInvalidAPIKeyFormat, http.StatusUnauthorized, "INVALID_API_KEY_FORMAT"},
	{domain.ErrInvalidAPIKey, http.StatusUnauthorized, "INVALID_API_KEY"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},

	{domain.ErrNoActiveSubscription, http.StatusForbidden, "NO_ACTIVE_SUBSCRIPTION"},
	{domain.ErrDeviceNotConnected, http.StatusForbidden, "DEVICE_NOT_CONNECTED"},
	{domain.ErrInvalidSignature, http.StatusForbidden, "INVALID_SIGNATURE"},
	{domain.ErrMissingSignature, http.StatusForbidden, "MISSING_SIGNATURE"},

	{domain.ErrDeviceNotFound, http.StatusNotFound, "DEVICE_NOT_FOUND"},
	{domain.ErrPaymentNotFound, http.StatusNotFound, "PAYMENT_NOT_FOUND"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},

	{domain.ErrLockNotAcquired, http.StatusConflict, "PAYMENT_LOCKED"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},

	{domain.ErrEmailFailed, http.StatusInternalServerError, "EMAIL_FAILED"},
	{domain.ErrOperationFailed, http.StatusInternalServerError, "DATABASE_ERROR"},
}

// mapError turns a use-case error into status + body. Order matters: the
// quota error is checked before the sentinel table since it wraps one.
func mapError(err error) (int, errorBody) {
	var qe *domain.QuotaError
	if errors.As(err, &qe) {
		return http.StatusTooManyRequests, errorBody{
			Code:    "MESSAGE_LIMIT_REACHED",
			Message: "Monthly message limit reached. Please upgrade your plan.",
			Extra:   map[string]any{"quota_used": qe.Used, "quota_limit": qe.Limit},
		}
	}

	var ue *adapter.UpstreamError
	if errors.As(err, &ue) {
		return upstreamError(ue)
	}

	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return s.status, errorBody{Code: s.code, Message: s.err.Error()}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorBody{Code: "TIMEOUT", Message: "request timed out"}
	}
	return http.StatusInternalServerError, errorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}
}

func upstreamError(ue *adapter.UpstreamError) (int, errorBody) {
	var details any
	if len(ue.Body) > 0 && json.Valid(ue.Body) {
		details = json.RawMessage(ue.Body)
	}
	switch ue.Service {
	case "waha":
		status := ue.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, errorBody{
			Code:    "WAHA_ERROR",
			Message: upstreamMessage(ue.Body, "Failed to send message via WhatsApp."),
			Extra:   map[string]any{"details": details},
		}
	case "tripay":
		return http.StatusBadRequest, errorBody{
			Code:    "PAYMENT_CREATION_FAILED",
			Message: upstreamMessage(ue.Body, "Payment gateway rejected the request."),
			Extra:   map[string]any{"details": details},
		}
	}
	return http.StatusBadGateway, errorBody{Code: "UPSTREAM_ERROR", Message: ue.Error()}
}

// upstreamMessage prefers the upstream's own error/message field.
func upstreamMessage(body []byte, fallback string) string {
	var parsed struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if s, ok := parsed.Error.(string); ok && s != "" {
			return s
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fallback
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Str("code", body.Code).Msg("request failed")
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, code, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Code: code, Message: msg})
}
