package port

import (
	"context"
	"errors"
	"time"
)

// Cache is the key-value contract shared by the profile cache and the
// notification worker. Values are opaque strings; callers own encoding.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns ErrMiss when key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value with ttl. A non-positive ttl never expires.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)

	Del(ctx context.Context, keys ...string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss signals a cache miss, distinct from transport errors.
var ErrMiss = errors.New("cache: miss")
