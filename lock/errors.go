package lock

import "errors"

var (
	// ErrLockHeld is returned when an acquisition attempt finds the
	// resource already locked. The manager never retries internally.
	ErrLockHeld = errors.New("resource already locked")

	// ErrNotConfigured is returned when the backing store has no
	// collection configured, meaning the owning application has not
	// opted into locking.
	ErrNotConfigured = errors.New("no lock collection configured")

	// ErrInvalidTTL is returned when a lock is requested with a
	// non-positive lease duration.
	ErrInvalidTTL = errors.New("lock TTL must be positive")

	// ErrInvalidExtendInterval is returned when the renewal cadence is
	// not strictly between zero and the lease duration.
	ErrInvalidExtendInterval = errors.New("extend interval must be positive and shorter than the TTL")
)
