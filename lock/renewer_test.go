package lock

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lossRecorder struct {
	count atomic.Int32
	key   atomic.Value
}

func (r *lossRecorder) OnLeaseLost(key string) {
	r.count.Add(1)
	r.key.Store(key)
}

func TestRenewalKeepsLeaseAlive(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(t, st)
	ctx := context.Background()

	l, err := m.Lock(ctx, "order-42",
		WithTTL(100*time.Millisecond),
		WithExtendInterval(20*time.Millisecond),
	)
	require.NoError(t, err)

	// Hold the scope well past the extend interval.
	time.Sleep(120 * time.Millisecond)

	require.NoError(t, l.Release(ctx))

	assert.GreaterOrEqual(t, st.countCalls("extend"), 2)
	assert.False(t, l.Lost())
	assert.Empty(t, st.data)
}

func TestNoExtendAfterRelease(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(t, st)
	ctx := context.Background()

	l, err := m.Lock(ctx, "order-42",
		WithTTL(100*time.Millisecond),
		WithExtendInterval(10*time.Millisecond),
	)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, l.Release(ctx))

	// Give a lingering renewer every chance to misbehave.
	time.Sleep(50 * time.Millisecond)

	log := st.callLog()
	releaseSeen := false
	for _, op := range log {
		if op == "release" {
			releaseSeen = true
			continue
		}
		if releaseSeen {
			assert.NotEqual(t, "extend", op, "extend issued after release began: %v", log)
		}
	}
	assert.True(t, releaseSeen)
}

func TestRenewalStopsWhenLeaseLost(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(t, st)
	ctx := context.Background()

	recorder := &lossRecorder{}
	l, err := m.Lock(ctx, "order-42",
		WithTTL(100*time.Millisecond),
		WithExtendInterval(10*time.Millisecond),
		WithCallbacks(recorder),
	)
	require.NoError(t, err)

	// Simulate the lease expiring at the store mid-scope.
	st.mu.Lock()
	delete(st.data, "orders.order-42")
	st.mu.Unlock()

	require.Eventually(t, l.Lost, time.Second, 5*time.Millisecond)

	// The loop stopped: the call count settles.
	settled := st.countCalls("extend")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, st.countCalls("extend"))

	assert.Equal(t, int32(1), recorder.count.Load())
	assert.Equal(t, "orders.order-42", recorder.key.Load())

	// Exit is still clean; release is a silent no-op at the store.
	require.NoError(t, l.Release(ctx))
}

func TestRenewalSurvivesTransportErrors(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(t, st)
	ctx := context.Background()

	l, err := m.Lock(ctx, "order-42",
		WithTTL(100*time.Millisecond),
		WithExtendInterval(10*time.Millisecond),
	)
	require.NoError(t, err)

	st.mu.Lock()
	st.extendErr = errors.New("transient network blip")
	st.mu.Unlock()

	time.Sleep(40 * time.Millisecond)

	st.mu.Lock()
	st.extendErr = nil
	st.mu.Unlock()

	time.Sleep(40 * time.Millisecond)

	// The loop kept going through the blip and the lease is not marked
	// lost.
	assert.False(t, l.Lost())
	require.NoError(t, l.Release(ctx))
}

func TestRenewalUsesStoreConfigInterval(t *testing.T) {
	st := newFakeStore()
	st.cfg = &fakeConfig{collection: "orders", extendInterval: 15 * time.Millisecond}
	m := newTestManager(t, st)
	ctx := context.Background()

	// No WithExtendInterval: the cadence comes from the store config.
	l, err := m.Lock(ctx, "order-42", WithTTL(100*time.Millisecond))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return st.countCalls("extend") >= 2
	}, time.Second, 5*time.Millisecond)

	assert.False(t, l.Lost())
	require.NoError(t, l.Release(ctx))
}

func TestRenewalDerivesIntervalFromTTL(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(t, st)
	ctx := context.Background()

	// Neither the options nor the store config set a cadence; the loop
	// runs at half the lease duration.
	l, err := m.Lock(ctx, "order-42", WithTTL(60*time.Millisecond))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return st.countCalls("extend") >= 2
	}, time.Second, 5*time.Millisecond)

	assert.False(t, l.Lost())
	require.NoError(t, l.Release(ctx))
}

func TestWithoutAutoExtendNeverRenews(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(t, st)
	ctx := context.Background()

	l, err := m.Lock(ctx, "order-42", WithoutAutoExtend())
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, st.countCalls("extend"))
	require.NoError(t, l.Release(ctx))
}

func TestWithLockAutoExtends(t *testing.T) {
	st := newFakeStore()
	m := newTestManager(t, st)

	err := m.WithLock(context.Background(), "order-42", func(ctx context.Context) error {
		time.Sleep(60 * time.Millisecond)
		return nil
	},
		WithTTL(100*time.Millisecond),
		WithExtendInterval(15*time.Millisecond),
	)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, st.countCalls("extend"), 2)
	assert.Empty(t, st.data)
}
