package adapter

import "context"

// ObjectStorage stores blobs and returns their public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string, meta map[string]string) (url string, err error)
}
