// internal/store/lock_store.go
package store

import (
	"context"
	"time"
)

// LockStore is the capability a backend must provide for lease-based
// locking: set-if-absent with expiry, and atomic compare-and-act for
// release and extension. Implementations must perform release and
// extension as a single server-side conditional operation; a separate
// read-then-write pair reintroduces the race the lock exists to prevent.
type LockStore interface {
	// AcquireLock attempts to store key -> token with the given TTL,
	// succeeding only if the key is currently absent. It returns false
	// when another holder (or an unexpired stale entry) owns the key.
	// It never retries or blocks.
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)

	// ReleaseLock deletes the key only if it currently holds token.
	// It returns false when the key is absent or owned by a different
	// token; that outcome is not an error.
	ReleaseLock(ctx context.Context, key, token string) (bool, error)

	// ExtendLock resets the key's expiry to ttl from now only if it
	// currently holds token. It returns false when the lease is gone.
	ExtendLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close()

	// GetConfig returns the current store configuration.
	GetConfig() StoreConfig
}
