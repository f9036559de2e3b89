package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"apivro/internal/config"
	"apivro/internal/domain/ports/adapter"
)

var _ adapter.WebhookClient = (*HTTPClient)(nil)

const maxRedirects = 5

var errTooManyRedirects = errors.New("webhook: too many redirects")

// HTTPClient delivers envelopes to customer endpoints.
type HTTPClient struct {
	userAgent string
	timeout   time.Duration
	client    *http.Client
}

func NewHTTPClient(cfg config.WebhookConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		userAgent: cfg.UserAgent,
		timeout:   timeout,
		client: &http.Client{
			Timeout: timeout,
			// 307/308 replay the POST body, 301/302/303 downgrade to GET
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
	}
}

func (c *HTTPClient) Post(ctx context.Context, url string, payload any) (int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if resp != nil {
			return resp.StatusCode, err
		}
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return resp.StatusCode, nil
}
