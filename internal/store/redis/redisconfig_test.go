// internal/store/redis/redisconfig_test.go
package redis

import (
	"testing"
	"time"

	"github.com/leaselock/leaselock/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ store.StoreConfig = (*RedisConfig)(nil)

func TestNewRedisConfigDefaults(t *testing.T) {
	cfg := NewRedisConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6379, cfg.Port)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, int32(10), cfg.TTL)
	assert.True(t, cfg.SharedConnection)
	assert.Empty(t, cfg.Collection)
}

func TestRedisConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := NewRedisConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("empty_collection_is_allowed", func(t *testing.T) {
		cfg := NewRedisConfig()
		cfg.Collection = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing_host", func(t *testing.T) {
		cfg := NewRedisConfig()
		cfg.Host = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "host is required")
	})

	t.Run("invalid_port", func(t *testing.T) {
		cfg := NewRedisConfig()
		cfg.Port = 70000
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "port must be between 1 and 65535")
	})

	t.Run("non_positive_ttl", func(t *testing.T) {
		cfg := NewRedisConfig()
		cfg.TTL = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TTL must be positive")
	})

	t.Run("negative_db", func(t *testing.T) {
		cfg := NewRedisConfig()
		cfg.DB = -1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB number must be non-negative")
	})
}

func TestRedisConfigExtendInterval(t *testing.T) {
	cfg := NewRedisConfig()
	assert.Zero(t, cfg.GetExtendInterval())

	cfg.ExtendInterval = 5 * time.Second
	assert.Equal(t, 5*time.Second, cfg.GetExtendInterval())
}

func TestRedisConfigGetEndpoints(t *testing.T) {
	cfg := NewRedisConfig()
	cfg.Host = "redis.internal"
	cfg.Port = 6380
	assert.Equal(t, []string{"redis.internal:6380"}, cfg.GetEndpoints())
}

func TestRedisConfigClone(t *testing.T) {
	cfg := NewRedisConfig()
	cfg.Collection = "orders"

	clone := cfg.Clone()
	clone.Collection = "billing"

	assert.Equal(t, "orders", cfg.Collection)
	assert.Equal(t, "billing", clone.Collection)
}
