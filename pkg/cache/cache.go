// Package cache stores computed layouts and rendered artifacts.
//
// Layout is a pure function of its input, so results are keyed by a content
// hash of the input plus the options that affect the output. Three backends
// implement [Cache]:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// Keys are built by a [Keyer]. Use [NewScopedKeyer] to give callers separate
// namespaces in a shared backend.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLLayout   = 24 * time.Hour
	TTLRow      = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl stores it without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
