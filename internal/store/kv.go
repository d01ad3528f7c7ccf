package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key is absent from a KeyValue backend or
// a record id is absent from both tiers of the Inbox.
var ErrNotFound = errors.New("store: not found")

// KeyValue is the durable mirror contract: a string-keyed, string-valued
// store whose entries survive process restarts. Implementations are
// expected to serialize their own access; callers issue sequential
// operations only.
type KeyValue interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set inserts or overwrites the value for key.
	Set(ctx context.Context, key string, value string) error

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error

	// Keys returns every stored key that begins with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// MultiRemove deletes all given keys.
	MultiRemove(ctx context.Context, keys []string) error

	// Close releases the backend connection.
	Close() error
}
