package apiv1

import (
	"errors"
	"net/http"
	"time"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/usecase"
)

type sendMessageRequest struct {
	To      string       `json:"to"`
	Message string       `json:"message"`
	Media   *model.Media `json:"media"`
}

type sendMessageResponse struct {
	Success        bool      `json:"success"`
	MessageID      string    `json:"message_id"`
	Recipient      string    `json:"recipient"`
	QuotaRemaining int       `json:"quota_remaining"`
	QuotaUsed      int       `json:"quota_used"`
	QuotaLimit     int       `json:"quota_limit"`
	Timestamp      time.Time `json:"timestamp"`
}

type quotaResponse struct {
	Success        bool      `json:"success"`
	QuotaUsed      int       `json:"quota_used"`
	QuotaLimit     int       `json:"quota_limit"`
	QuotaRemaining int       `json:"quota_remaining"`
	Plan           string    `json:"plan"`
	ResetDate      time.Time `json:"reset_date"`
	NextResetAt    time.Time `json:"next_reset_at"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be a JSON object")
		return
	}
	if req.Media != nil {
		if err := s.validate.Struct(req.Media); err != nil {
			badRequest(w, "INVALID_MEDIA", "media.url must be a valid URL")
			return
		}
	}

	res, err := s.Messages.Send(r.Context(), authFrom(r.Context()), usecase.SendRequest{
		To:      req.To,
		Message: req.Message,
		Media:   req.Media,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sendMessageResponse{
		Success:        true,
		MessageID:      res.MessageID,
		Recipient:      res.Recipient,
		QuotaRemaining: res.QuotaRemaining,
		QuotaUsed:      res.QuotaUsed,
		QuotaLimit:     res.QuotaLimit,
		Timestamp:      res.Timestamp.UTC(),
	})
}

func (s *Server) getQuota(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Quota.Snapshot(r.Context(), authFrom(r.Context()).UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSubscription) {
			writeJSON(w, http.StatusNotFound, errorBody{Code: "NO_ACTIVE_SUBSCRIPTION", Message: "No active subscription found."})
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quotaResponse{
		Success:        true,
		QuotaUsed:      snap.Used,
		QuotaLimit:     snap.Limit,
		QuotaRemaining: snap.Remaining,
		Plan:           snap.Plan,
		ResetDate:      snap.ResetDate.UTC(),
		NextResetAt:    snap.NextResetAt.UTC(),
	})
}
