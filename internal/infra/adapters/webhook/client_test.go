//go:build !integration

package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivro/internal/config"
)

func TestHTTPClient_Post(t *testing.T) {
	ctx := context.Background()

	t.Run("should send json with user agent", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "API-VRO-Webhook/1.0", r.UserAgent())
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		c := NewHTTPClient(config.WebhookConfig{UserAgent: "API-VRO-Webhook/1.0"})
		status, err := c.Post(ctx, srv.URL, map[string]any{"event": "message.received"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, status)
		assert.Equal(t, "message.received", got["event"])
	})

	t.Run("should return status and error on non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewHTTPClient(config.WebhookConfig{})
		status, err := c.Post(ctx, srv.URL, map[string]any{})
		assert.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, status)
	})

	t.Run("should follow a permanent redirect with the same body", func(t *testing.T) {
		var got map[string]any
		mux := http.NewServeMux()
		mux.HandleFunc("/hook", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/hook/", http.StatusPermanentRedirect)
		})
		mux.HandleFunc("/hook/", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := NewHTTPClient(config.WebhookConfig{})
		status, err := c.Post(ctx, srv.URL+"/hook", map[string]any{"event": "message.received"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "message.received", got["event"])
	})

	t.Run("should give up on a redirect loop", func(t *testing.T) {
		var hops atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hops.Add(1)
			http.Redirect(w, r, r.URL.Path, http.StatusTemporaryRedirect)
		}))
		defer srv.Close()

		c := NewHTTPClient(config.WebhookConfig{})
		status, err := c.Post(ctx, srv.URL+"/loop", map[string]any{})
		assert.ErrorIs(t, err, errTooManyRedirects)
		assert.Equal(t, http.StatusTemporaryRedirect, status)
		assert.EqualValues(t, maxRedirects+1, hops.Load())
	})

	t.Run("should give status 0 on timeout", func(t *testing.T) {
		done := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-done:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(done)

		c := NewHTTPClient(config.WebhookConfig{Timeout: 50 * time.Millisecond})
		status, err := c.Post(ctx, srv.URL, map[string]any{})
		assert.Error(t, err)
		assert.Equal(t, 0, status)
	})

	t.Run("should fail fast on a bad url", func(t *testing.T) {
		c := NewHTTPClient(config.WebhookConfig{})
		status, err := c.Post(ctx, "://bad", map[string]any{})
		assert.Error(t, err)
		assert.Equal(t, 0, status)
	})
}
