package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document exists under the key.
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned by Create when the key is already taken.
	ErrExists = errors.New("document already exists")
	// ErrConflict is returned by Update when every optimistic attempt lost to a concurrent writer.
	ErrConflict = errors.New("document modified concurrently")
)

// MutateFunc receives the current document and returns its replacement.
// Returning an error aborts the update without writing anything.
type MutateFunc func(current []byte) ([]byte, error)

// Store is a key-value document store with optimistic per-document updates.
// This is a port; the Redis adapter is the production implementation.
type Store interface {
	// Get retrieves a document by key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Create stores a new document and fails with ErrExists if the key is taken.
	Create(ctx context.Context, key string, value []byte) error

	// Update reads the document, applies fn and writes the result only if no
	// other writer touched the key in between. The mutation is retried on
	// contention, so fn must be free of side effects.
	Update(ctx context.Context, key string, fn MutateFunc) ([]byte, error)

	// AddToIndex adds member to a named set.
	AddToIndex(ctx context.Context, index, member string) error

	// IndexMembers lists the members of a named set.
	IndexMembers(ctx context.Context, index string) ([]string, error)

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}

// Broadcaster publishes fire-and-forget messages on a named channel.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
