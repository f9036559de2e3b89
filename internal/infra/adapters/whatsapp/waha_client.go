package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"apivro/internal/config"
	"apivro/internal/domain/ports/adapter"
)

var _ adapter.MessagingGateway = (*WAHAClient)(nil)

const (
	defaultMimetype = "image/jpeg"
	defaultFilename = "image.jpg"
	maxWAHABody     = 1 << 20
)

// WAHAClient talks to a WAHA (WhatsApp HTTP API) server.
type WAHAClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewWAHAClient(cfg config.WAHAConfig, hc *http.Client) *WAHAClient {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &WAHAClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  hc,
	}
}

// ChatID addresses a personal chat.
func (c *WAHAClient) ChatID(digits string) string { return digits + "@c.us" }

type wahaFile struct {
	Mimetype string `json:"mimetype"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type sendTextBody struct {
	Session string `json:"session"`
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
}

type sendImageBody struct {
	Session string   `json:"session"`
	ChatID  string   `json:"chatId"`
	File    wahaFile `json:"file"`
	Caption string   `json:"caption,omitempty"`
}

func (c *WAHAClient) SendText(ctx context.Context, msg adapter.TextMessage) (*adapter.SendResult, error) {
	return c.post(ctx, "/api/sendText", sendTextBody{Session: msg.Session, ChatID: msg.ChatID, Text: msg.Text})
}

func (c *WAHAClient) SendImage(ctx context.Context, msg adapter.ImageMessage) (*adapter.SendResult, error) {
	f := wahaFile{Mimetype: msg.Media.Mimetype, Filename: msg.Media.Filename, URL: msg.Media.URL}
	if f.Mimetype == "" {
		f.Mimetype = defaultMimetype
	}
	if f.Filename == "" {
		f.Filename = defaultFilename
	}
	return c.post(ctx, "/api/sendImage", sendImageBody{Session: msg.Session, ChatID: msg.ChatID, File: f, Caption: msg.Media.Caption})
}

func (c *WAHAClient) post(ctx context.Context, path string, payload any) (*adapter.SendResult, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("waha %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWAHABody))
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if json.Valid(body) {
		raw = body
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &adapter.UpstreamError{Service: "waha", StatusCode: resp.StatusCode, Body: raw}
	}
	return &adapter.SendResult{ID: messageID(raw), Raw: raw}, nil
}

// messageID digs the id out of the WAHA ack. Depending on the engine it is a
// plain string, {"_serialized": ...} or nested under "key".
func messageID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var ack struct {
		ID  json.RawMessage `json:"id"`
		Key struct {
			ID string `json:"id"`
		} `json:"key"`
	}
	if err := json.Unmarshal(raw, &ack); err != nil {
		return ""
	}
	if len(ack.ID) > 0 {
		var s string
		if json.Unmarshal(ack.ID, &s) == nil {
			return s
		}
		var obj struct {
			Serialized string `json:"_serialized"`
		}
		if json.Unmarshal(ack.ID, &obj) == nil && obj.Serialized != "" {
			return obj.Serialized
		}
	}
	return ack.Key.ID
}
