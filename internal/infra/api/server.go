package api

import (
	"net/http"
	"time"

	"apivro/internal/config"
)

// NewHTTPServer applies transport timeouts; routing and guards live in the handler.
func NewHTTPServer(cfg config.HTTPConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       90 * time.Second,
	}
}
