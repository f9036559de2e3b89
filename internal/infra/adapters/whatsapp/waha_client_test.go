//go:build !integration

package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivro/internal/config"
	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/adapter"
)

func TestWAHAClient_SendText(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sendText", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":{"_serialized":"true_628@c.us_ABC"}}`))
	}))
	defer srv.Close()

	c := NewWAHAClient(config.WAHAConfig{BaseURL: srv.URL + "/", APIKey: "secret"}, nil)
	res, err := c.SendText(context.Background(), adapter.TextMessage{Session: "s1", ChatID: c.ChatID("628123"), Text: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "true_628@c.us_ABC", res.ID)
	assert.Equal(t, "s1", body["session"])
	assert.Equal(t, "628123@c.us", body["chatId"])
	assert.Equal(t, "hi", body["text"])
}

func TestWAHAClient_SendImage(t *testing.T) {
	t.Run("should default mimetype and filename", func(t *testing.T) {
		var body sendImageBody
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/sendImage", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"id":"msg-1"}`))
		}))
		defer srv.Close()

		c := NewWAHAClient(config.WAHAConfig{BaseURL: srv.URL}, nil)
		res, err := c.SendImage(context.Background(), adapter.ImageMessage{
			Session: "s1",
			ChatID:  "1@c.us",
			Media:   model.Media{URL: "https://img.test/a.png", Caption: "look"},
		})
		require.NoError(t, err)
		assert.Equal(t, "msg-1", res.ID)
		assert.Equal(t, "image/jpeg", body.File.Mimetype)
		assert.Equal(t, "image.jpg", body.File.Filename)
		assert.Equal(t, "https://img.test/a.png", body.File.URL)
		assert.Equal(t, "look", body.Caption)
	})

	t.Run("should surface non-2xx as UpstreamError with the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"session not started"}`))
		}))
		defer srv.Close()

		c := NewWAHAClient(config.WAHAConfig{BaseURL: srv.URL}, nil)
		_, err := c.SendImage(context.Background(), adapter.ImageMessage{Session: "s1", ChatID: "1@c.us", Media: model.Media{URL: "https://x.test"}})
		var up *adapter.UpstreamError
		require.True(t, errors.As(err, &up))
		assert.Equal(t, http.StatusUnprocessableEntity, up.StatusCode)
		assert.JSONEq(t, `{"error":"session not started"}`, string(up.Body))
	})
}

func TestMessageID(t *testing.T) {
	assert.Equal(t, "", messageID(nil))
	assert.Equal(t, "a", messageID(json.RawMessage(`{"id":"a"}`)))
	assert.Equal(t, "b", messageID(json.RawMessage(`{"key":{"id":"b"}}`)))
	assert.Equal(t, "", messageID(json.RawMessage(`[]`)))
}
