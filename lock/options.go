package lock

import "time"

// DefaultTTL is the lease duration used when WithTTL is not given.
const DefaultTTL = 10 * time.Second

// Options configure a single acquisition.
type Options struct {
	// TTL is the initial lease duration enforced by the store. If the
	// holder crashes or stalls past it without renewing, the store
	// expires the key and another process may acquire it.
	TTL time.Duration

	// ExtendInterval is the renewal cadence. Must be strictly between
	// zero and TTL. When unset it defaults to half the TTL.
	ExtendInterval time.Duration

	// AutoExtend starts the background renewal loop on acquisition.
	AutoExtend bool

	// Callbacks receives lease lifecycle notifications.
	Callbacks Callbacks
}

// Option is a function that configures an acquisition
type Option func(*Options)

// WithTTL sets the initial lease duration
func WithTTL(d time.Duration) Option {
	return func(o *Options) {
		o.TTL = d
	}
}

// WithExtendInterval sets the renewal cadence
func WithExtendInterval(d time.Duration) Option {
	return func(o *Options) {
		o.ExtendInterval = d
	}
}

// WithoutAutoExtend disables the background renewal loop; the lease
// expires TTL after acquisition unless the caller extends it.
func WithoutAutoExtend() Option {
	return func(o *Options) {
		o.AutoExtend = false
	}
}

// WithCallbacks registers lease lifecycle notifications
func WithCallbacks(cb Callbacks) Option {
	return func(o *Options) {
		if cb != nil {
			o.Callbacks = cb
		}
	}
}

func defaultOptions() Options {
	return Options{
		TTL:        DefaultTTL,
		AutoExtend: true,
		Callbacks:  &NoOpCallbacks{},
	}
}

// validate checks the timing constraints. It runs before any store
// access so misconfiguration never results in a held lease. A zero
// extend interval is filled in as TTL/2 first.
func (o *Options) validate() error {
	if o.TTL <= 0 {
		return ErrInvalidTTL
	}
	if o.ExtendInterval == 0 {
		o.ExtendInterval = o.TTL / 2
	}
	if o.ExtendInterval <= 0 || o.ExtendInterval >= o.TTL {
		return ErrInvalidExtendInterval
	}
	return nil
}
