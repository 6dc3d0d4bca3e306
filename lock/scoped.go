package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leaselock/leaselock/internal/observability"
	"github.com/leaselock/leaselock/internal/store"
)

// ScopedLock is one held lease: a key, the token proving ownership, and
// the renewal loop keeping it alive. It is created exclusively by
// Manager.Lock and torn down by Release.
type ScopedLock struct {
	key       string
	token     string
	ttl       time.Duration
	createdAt time.Time

	store     store.LockStore
	logger    *observability.SLogger
	metrics   *observability.OTelMetrics
	callbacks Callbacks

	mu       sync.Mutex
	stop     chan struct{}
	renewers sync.WaitGroup
	released bool
	lost     atomic.Bool
}

// Key returns the derived store key for this lease
func (l *ScopedLock) Key() string {
	return l.key
}

// Token returns the opaque ownership proof generated for this
// acquisition
func (l *ScopedLock) Token() string {
	return l.token
}

// CreatedAt returns when the lease was acquired
func (l *ScopedLock) CreatedAt() time.Time {
	return l.createdAt
}

// Lost reports whether a renewal cycle found the lease gone. The
// critical section is never interrupted; callers that care can poll
// this or register Callbacks.
func (l *ScopedLock) Lost() bool {
	return l.lost.Load()
}

// Release tears the lease down: it stops the renewal loop, waits for it
// to finish, and then deletes the key with a token-guarded
// compare-and-delete. A false store result means the lease was already
// lost and is tolerated silently; only transport errors are returned.
// Release is idempotent.
func (l *ScopedLock) Release(ctx context.Context) error {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return nil
	}
	l.released = true
	stop := l.stop
	l.mu.Unlock()

	// The renewer must be fully stopped before the delete runs. A late
	// extend landing after the key has been re-acquired by another
	// holder would resurrect a dead lease and break mutual exclusion.
	if stop != nil {
		close(stop)
		l.renewers.Wait()
	}

	start := time.Now()
	released, err := l.store.ReleaseLock(ctx, l.key, l.token)
	l.recordLatency(ctx, start, "ReleaseLock")
	if err != nil {
		return err
	}

	if !released {
		l.logger.Debugf("Lease %q was already gone at release", l.key)
		l.increment(ctx, "lock.release.total", "outcome", "already_lost")
		return nil
	}

	l.increment(ctx, "lock.release.total", "outcome", "released")
	return nil
}

func (l *ScopedLock) increment(ctx context.Context, name string, attributes ...string) {
	if l.metrics == nil {
		return
	}
	l.metrics.Increment(ctx, name, 1, attributes...)
}

func (l *ScopedLock) recordLatency(ctx context.Context, start time.Time, operation string) {
	if l.metrics == nil {
		return
	}
	if err := l.metrics.RecordLatency(ctx, time.Since(start), "operation", operation); err != nil {
		l.logger.ErrorCtx(ctx, err)
	}
}
