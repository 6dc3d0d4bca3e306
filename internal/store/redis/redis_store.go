// internal/store/redis/redis_store.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leaselock/leaselock/internal/lockservice"
	"github.com/leaselock/leaselock/internal/observability"
	"github.com/leaselock/leaselock/internal/store"
	"github.com/redis/go-redis/v9"
)

// Error definitions
var (
	ErrConfigOptionMissing = errors.New("Redis requires a config option")
)

// StoreName is the registered name of the Redis store
const StoreName = "redis"

// releaseScript deletes the key only when it still holds the caller's
// token. Evaluated server-side so the compare and the delete cannot
// interleave with a re-acquisition by another holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// extendScript resets the key's expiry only when it still holds the
// caller's token. Same atomicity requirement as releaseScript.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
    return 0
end
`)

// redisClient defines the interface for Redis operations.
// This allows for easier mocking in tests.
type redisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Factory function for creating Redis clients.
// Can be replaced during tests for mocking.
var newRedisClientFn = func(config *RedisConfig) redisClient {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Username: config.Username,
		Password: config.Password,
		DB:       config.DB,
	})
}

// Register the Redis store with the lockservice package
func init() {
	lockservice.Register(StoreName, newStore)
}

// newStore creates a new Redis store instance from configuration
func newStore(ctx context.Context, options lockservice.Config, logger *observability.SLogger) (store.LockStore, error) {
	cfg, ok := options.(*RedisConfig)
	if !ok && options != nil {
		return nil, &store.InvalidConfigurationError{Store: StoreName, Config: options}
	}
	return New(ctx, cfg, logger)
}

// Store implements the store.LockStore interface for Redis
type Store struct {
	client redisClient
	l      *observability.SLogger
	config *RedisConfig
}

// GetConfig returns the current store configuration
func (s *Store) GetConfig() store.StoreConfig {
	return s.config
}

// New creates a new Redis store with the provided configuration
func New(ctx context.Context, config *RedisConfig, logger *observability.SLogger) (*Store, error) {
	if config == nil {
		return nil, ErrConfigOptionMissing
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		l:      logger,
		config: config,
	}

	if config.SharedConnection {
		s.client = newRedisClientFn(config)
	}

	if err := s.Ping(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return s, nil
}

// withClient runs fn against the shared client, or against a fresh
// connection that is closed when fn returns.
func (s *Store) withClient(fn func(c redisClient) error) error {
	if s.client != nil {
		return fn(s.client)
	}

	c := newRedisClientFn(s.config)
	defer func() {
		if err := c.Close(); err != nil {
			s.l.Errorf("Error closing Redis connection: %v", err)
		}
	}()
	return fn(c)
}

// AcquireLock stores key -> token with the given TTL only if the key is
// currently absent. A single attempt, no retry.
func (s *Store) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	var acquired bool
	err := s.withClient(func(c redisClient) error {
		ok, err := c.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		acquired = ok
		return nil
	})
	if err != nil {
		s.l.Errorf("Error acquiring lock %q: %v", key, err)
		return false, err
	}
	return acquired, nil
}

// ReleaseLock deletes the key only if it still holds token.
func (s *Store) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	var released bool
	err := s.withClient(func(c redisClient) error {
		res, err := releaseScript.Run(ctx, c, []string{key}, token).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to release lock: %w", err)
		}
		n, _ := res.(int64)
		released = n == 1
		return nil
	})
	if err != nil {
		s.l.Errorf("Error releasing lock %q: %v", key, err)
		return false, err
	}
	return released, nil
}

// ExtendLock pushes the key's expiry forward to ttl from now, only if it
// still holds token.
func (s *Store) ExtendLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	var extended bool
	err := s.withClient(func(c redisClient) error {
		res, err := extendScript.Run(ctx, c, []string{key}, token, ttl.Milliseconds()).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to extend lock: %w", err)
		}
		n, _ := res.(int64)
		extended = n == 1
		return nil
	})
	if err != nil {
		s.l.Errorf("Error extending lock %q: %v", key, err)
		return false, err
	}
	return extended, nil
}

// Ping verifies the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.withClient(func(c redisClient) error {
		if err := c.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrNotReachable, err)
		}
		return nil
	})
}

// Close closes the shared Redis client connection, if any
func (s *Store) Close() {
	if s.client == nil {
		return
	}
	if err := s.client.Close(); err != nil {
		s.l.Errorf("Error closing Redis connection: %v", err)
	}
	s.client = nil
}
