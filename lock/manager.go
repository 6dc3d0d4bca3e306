package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leaselock/leaselock/internal/observability"
	"github.com/leaselock/leaselock/internal/store"
)

// releaseTimeout bounds the store call made during teardown, which runs
// detached from the (possibly already cancelled) caller context.
const releaseTimeout = 5 * time.Second

// Manager acquires scoped locks against a single backing store. It is
// safe for concurrent use; every acquisition gets its own token and
// its own ScopedLock.
type Manager struct {
	store           store.LockStore
	collection      string
	defaultTTL      time.Duration
	defaultInterval time.Duration
	logger          *observability.SLogger
	metrics         *observability.OTelMetrics
}

// New creates a Manager on top of st. It fails with ErrNotConfigured
// when the store has no collection, i.e. the owning application has not
// opted into locking. The store config's TTL, when set, becomes the
// default lease duration, and its extend interval the default renewal
// cadence; WithTTL and WithExtendInterval override them per
// acquisition.
func New(st store.LockStore, logger *observability.SLogger, metrics *observability.OTelMetrics) (*Manager, error) {
	cfg := st.GetConfig()
	if cfg == nil || cfg.GetCollection() == "" {
		return nil, ErrNotConfigured
	}

	defaultTTL := DefaultTTL
	if cfg.GetTTL() > 0 {
		defaultTTL = time.Duration(cfg.GetTTL()) * time.Second
	}

	return &Manager{
		store:           st,
		collection:      cfg.GetCollection(),
		defaultTTL:      defaultTTL,
		defaultInterval: cfg.GetExtendInterval(),
		logger:          logger,
		metrics:         metrics,
	}, nil
}

// Key derives the store key for a resource id. Pure function of the
// collection and the id.
func (m *Manager) Key(resourceID string) string {
	return m.collection + "." + resourceID
}

// Lock attempts to acquire the lease for resourceID with a single
// atomic set-if-absent attempt; there is no retry or blocking wait.
// On conflict it returns ErrLockHeld. On success the returned
// ScopedLock already runs its renewal loop (unless auto-extend was
// disabled) and must be released by the caller on every exit path.
func (m *Manager) Lock(ctx context.Context, resourceID string, opts ...Option) (*ScopedLock, error) {
	o := defaultOptions()
	o.TTL = m.defaultTTL
	o.ExtendInterval = m.defaultInterval
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	key := m.Key(resourceID)
	token := uuid.NewString()

	start := time.Now()
	acquired, err := m.store.AcquireLock(ctx, key, token, o.TTL)
	m.recordLatency(ctx, start, "AcquireLock")
	if err != nil {
		return nil, err
	}
	if !acquired {
		m.increment(ctx, "lock.acquire.total", "outcome", "conflict")
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, key)
	}
	m.increment(ctx, "lock.acquire.total", "outcome", "acquired")

	l := &ScopedLock{
		key:       key,
		token:     token,
		ttl:       o.TTL,
		createdAt: start,
		store:     m.store,
		logger:    m.logger,
		metrics:   m.metrics,
		callbacks: o.Callbacks,
	}

	if o.AutoExtend {
		l.startRenewal(o.ExtendInterval)
	}

	return l, nil
}

// WithLock runs fn while holding the lease for resourceID. The lease is
// released on every exit path, including a panic inside fn, and the
// teardown never replaces fn's error. A release that finds the lease
// already gone is silent.
func (m *Manager) WithLock(ctx context.Context, resourceID string, fn func(ctx context.Context) error, opts ...Option) (err error) {
	l, lockErr := m.Lock(ctx, resourceID, opts...)
	if lockErr != nil {
		return lockErr
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()

		if rerr := l.Release(releaseCtx); rerr != nil {
			m.logger.Errorf("Error releasing lock %q: %v", l.key, rerr)
			if err == nil {
				err = rerr
			}
		}
	}()

	return fn(ctx)
}

// Ping verifies the backing store is reachable
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *Manager) increment(ctx context.Context, name string, attributes ...string) {
	if m.metrics == nil {
		return
	}
	m.metrics.Increment(ctx, name, 1, append(attributes, "collection", m.collection)...)
}

func (m *Manager) recordLatency(ctx context.Context, start time.Time, operation string) {
	if m.metrics == nil {
		return
	}
	if err := m.metrics.RecordLatency(ctx, time.Since(start),
		"operation", operation,
		"collection", m.collection,
	); err != nil {
		m.logger.ErrorCtx(ctx, err)
	}
}
