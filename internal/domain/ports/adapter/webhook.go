package adapter

import "context"

// WebhookClient posts JSON envelopes to customer endpoints under a hard timeout.
// It returns the response status code (0 when no response arrived) and an
// error for transport failures and non-2xx answers.
type WebhookClient interface {
	Post(ctx context.Context, url string, payload any) (statusCode int, err error)
}
