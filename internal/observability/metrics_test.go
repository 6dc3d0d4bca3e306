// internal/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewMetricsClient(t *testing.T) {
	logger, _, err := NewTestLogger()
	require.NoError(t, err)

	metrics, err := NewMetricsClient(Config{
		ServiceName:    "leaselock-test",
		ServiceVersion: "0.1.0",
	}, logger)
	require.NoError(t, err)
	require.NotNil(t, metrics)
}

func TestIncrementDoesNotPanic(t *testing.T) {
	logger, _, err := NewTestLogger()
	require.NoError(t, err)

	metrics, err := NewMetricsClient(Config{ServiceName: "leaselock-test"}, logger)
	require.NoError(t, err)

	// Uses the global meter provider; a no-op provider is fine here.
	metrics.Increment(context.Background(), "lock.acquire.total", 1,
		"outcome", "acquired",
		"collection", "orders",
	)
}

func TestRecordLatency(t *testing.T) {
	logger, _, err := NewTestLogger()
	require.NoError(t, err)

	metrics, err := NewMetricsClient(Config{ServiceName: "leaselock-test"}, logger)
	require.NoError(t, err)

	err = metrics.RecordLatency(context.Background(), 25*time.Millisecond,
		"operation", "AcquireLock",
	)
	assert.NoError(t, err)
}

func TestAttributesFromTags(t *testing.T) {
	attrs := attributesFromTags([]string{"operation", "ReleaseLock", "dangling"})
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.String("operation", "ReleaseLock"), attrs[0])
}
