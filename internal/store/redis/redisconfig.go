// internal/store/redis/redisconfig.go
package redis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leaselock/leaselock/internal/store"
)

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	store.BaseStoreConfig `yaml:",inline" mapstructure:",squash"`

	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`

	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// DB selects the logical Redis database lock keys live in.
	DB int `yaml:"db" mapstructure:"db"`

	// SharedConnection reuses one long-lived client for all operations.
	// When false a fresh connection is opened and closed per operation.
	SharedConnection bool `yaml:"sharedConnection" mapstructure:"sharedConnection"`
}

// NewRedisConfig creates a new Redis configuration with default values
func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		BaseStoreConfig: store.BaseStoreConfig{
			TTL: 10,
		},
		Host:             "localhost",
		Port:             6379,
		DB:               0,
		SharedConnection: true,
	}
}

// GetEndpoints returns the Redis endpoint
func (c *RedisConfig) GetEndpoints() []string {
	return []string{fmt.Sprintf("%s:%d", c.Host, c.Port)}
}

// Validate ensures the Redis configuration is valid. An empty collection
// is allowed; it marks the store as not opted into locking.
func (c *RedisConfig) Validate() error {
	var errs []string

	if c.Host == "" {
		errs = append(errs, "host is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	if c.TTL <= 0 {
		errs = append(errs, "TTL must be positive")
	}

	if c.DB < 0 {
		errs = append(errs, "DB number must be non-negative")
	}

	if len(errs) > 0 {
		return errors.New("store validation failed: " + strings.Join(errs, "; "))
	}

	return nil
}

// String returns a string representation of the Redis configuration
func (c *RedisConfig) String() string {
	return fmt.Sprintf(
		"RedisConfig{Host: %s, Port: %d, DB: %d, Collection: %s, TTL: %d, SharedConnection: %t}",
		c.Host,
		c.Port,
		c.DB,
		c.Collection,
		c.TTL,
		c.SharedConnection,
	)
}

// Clone creates a copy of the Redis configuration
func (c *RedisConfig) Clone() *RedisConfig {
	clone := *c
	return &clone
}
