package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"apivro/internal/infra/api"
)

func (s *Server) deviceDisconnected(w http.ResponseWriter, r *http.Request) {
	sent, err := s.Notifications.NotifyDeviceDisconnected(r.Context(), api.SessionUserID(r.Context()), chi.URLParam(r, "deviceId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	msg := "Disconnect notification sent"
	if !sent {
		msg = "Notification disabled by user preferences"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": msg,
		"sent":    sent,
	})
}
