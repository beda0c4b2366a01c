package port

import (
	"context"
	"errors"
	"io"
)

// ErrDisabled is returned when no object store is configured.
var ErrDisabled = errors.New("storage: image uploads are not configured")

// ObjectStore persists uploaded image bytes and serves them by URL.
type ObjectStore interface {
	// Put stores body under key and returns the public URL of the object.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}
