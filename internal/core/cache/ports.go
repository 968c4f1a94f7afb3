package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a best-effort key/value store with expiry. Callers must treat every
// error as a miss; nothing stored here is authoritative.
type Cache interface {
	// Get returns ErrMiss when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A ttl of 0 keeps it until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Ping(ctx context.Context) error
	Close() error
}
