package lock

import (
	"context"
	"time"
)

// renewTimeout bounds each extend call so the renewal loop, and the
// join performed by Release, can never hang on a stuck store.
const renewTimeout = 5 * time.Second

// startRenewal launches the background loop re-extending the lease
// every interval. Extends are strictly sequential: the loop issues one
// at a time and waits out the next interval before the next attempt.
// The loop exits on the stop signal or once a cycle finds the lease
// gone.
func (l *ScopedLock) startRenewal(interval time.Duration) {
	l.stop = make(chan struct{})
	l.renewers.Add(1)

	go func() {
		defer l.renewers.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				if !l.renewOnce() {
					return
				}
			}
		}
	}()
}

// renewOnce issues one extend call. It returns false when the loop
// should stop because the lease is gone. Transport errors are logged
// and retried on the next cycle; the lease may still be alive at the
// store.
func (l *ScopedLock) renewOnce() bool {
	ctx, cancel := context.WithTimeout(context.Background(), renewTimeout)
	defer cancel()

	start := time.Now()
	extended, err := l.store.ExtendLock(ctx, l.key, l.token, l.ttl)
	l.recordLatency(ctx, start, "ExtendLock")

	if err != nil {
		l.logger.Errorf("Error renewing lease %q: %v", l.key, err)
		l.increment(ctx, "lock.extend.total", "outcome", "error")
		return true
	}

	if !extended {
		l.logger.Warnf("Lease %q lost during renewal", l.key)
		l.increment(ctx, "lock.extend.total", "outcome", "lost")
		l.lost.Store(true)
		l.callbacks.OnLeaseLost(l.key)
		return false
	}

	l.increment(ctx, "lock.extend.total", "outcome", "extended")
	return true
}
