package apiv1

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"apivro/internal/domain/model"
	"apivro/internal/infra/api"
	"apivro/internal/infra/logging"
	"apivro/internal/usecase"
)

// WebhookLogsParams are the query parameters of GET /webhooks/logs.
type WebhookLogsParams struct {
	Page      *int    `form:"page,omitempty" json:"page,omitempty"`
	Limit     *int    `form:"limit,omitempty" json:"limit,omitempty"`
	DeviceID  *string `form:"device_id,omitempty" json:"device_id,omitempty"`
	EventType *string `form:"event_type,omitempty" json:"event_type,omitempty"`
}

func bindWebhookLogsParams(r *http.Request) (WebhookLogsParams, error) {
	var p WebhookLogsParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &p.Page); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "device_id", q, &p.DeviceID); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "event_type", q, &p.EventType); err != nil {
		return p, err
	}
	return p, nil
}

type webhookLogJSON struct {
	ID             string    `json:"id"`
	DeviceID       string    `json:"device_id"`
	WebhookURL     string    `json:"webhook_url"`
	EventType      string    `json:"event_type"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Success        bool      `json:"success"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// incomingWebhook always answers 200 so the gateway never retries or stalls.
func (s *Server) incomingWebhook(w http.ResponseWriter, r *http.Request) {
	var in usecase.IncomingEvent
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err == nil {
		err = json.Unmarshal(body, &in)
	}
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("unreadable incoming webhook")
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "invalid payload"})
		return
	}

	res := s.Webhooks.ForwardIncoming(r.Context(), in)
	switch {
	case !res.Forwarded:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "no-op"})
	case res.Success:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Webhook delivery failed"})
	}
}

func (s *Server) testWebhook(w http.ResponseWriter, r *http.Request) {
	res, err := s.Webhooks.Test(r.Context(), api.SessionUserID(r.Context()), chi.URLParam(r, "deviceId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    "WEBHOOK_FAILED",
			Message: res.Error,
			Extra: map[string]any{
				"status_code":      res.StatusCode,
				"response_time_ms": res.ResponseTimeMs,
			},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"message":          "Webhook test successful",
		"status_code":      res.StatusCode,
		"response_time_ms": res.ResponseTimeMs,
	})
}

func (s *Server) webhookLogs(w http.ResponseWriter, r *http.Request) {
	params, err := bindWebhookLogsParams(r)
	if err != nil {
		badRequest(w, "INVALID_PARAMETER", err.Error())
		return
	}
	q := usecase.LogQuery{UserID: api.SessionUserID(r.Context())}
	if params.Page != nil {
		q.Page = *params.Page
	}
	if params.Limit != nil {
		q.Limit = *params.Limit
	}
	if params.DeviceID != nil {
		q.DeviceID = *params.DeviceID
	}
	if params.EventType != nil {
		q.EventType = *params.EventType
	}

	page, err := s.Webhooks.Logs(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows := make([]webhookLogJSON, 0, len(page.Logs))
	for _, l := range page.Logs {
		rows = append(rows, toWebhookLogJSON(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    rows,
		"pagination": pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
		"stats": page.Stats,
	})
}

func toWebhookLogJSON(l *model.WebhookLog) webhookLogJSON {
	return webhookLogJSON{
		ID:             l.ID,
		DeviceID:       l.DeviceID,
		WebhookURL:     l.WebhookURL,
		EventType:      l.EventType,
		StatusCode:     l.StatusCode,
		ResponseTimeMs: l.ResponseTimeMs,
		Success:        l.Success,
		ErrorMessage:   l.ErrorMessage,
		CreatedAt:      l.CreatedAt,
	}
}
