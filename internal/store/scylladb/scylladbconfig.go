// internal/store/scylladb/scylladbconfig.go
package scylladb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leaselock/leaselock/internal/store"
)

// ScyllaDBConfig holds ScyllaDB-specific configuration
type ScyllaDBConfig struct {
	store.BaseStoreConfig `yaml:",inline" mapstructure:",squash"`

	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`

	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	Keyspace    string `yaml:"keyspace" mapstructure:"keyspace"`
	Table       string `yaml:"table" mapstructure:"table"`
	Consistency string `yaml:"consistency" mapstructure:"consistency"`
}

// NewScyllaDBConfig creates a new ScyllaDB configuration with default values
func NewScyllaDBConfig() *ScyllaDBConfig {
	return &ScyllaDBConfig{
		BaseStoreConfig: store.BaseStoreConfig{
			TTL: 10,
		},
		Host:        "127.0.0.1",
		Port:        9042,
		Keyspace:    "leaselock",
		Table:       "locks",
		Consistency: "CONSISTENCY_QUORUM",
	}
}

// GetEndpoints returns the ScyllaDB endpoint
func (c *ScyllaDBConfig) GetEndpoints() []string {
	return []string{fmt.Sprintf("%s:%d", c.Host, c.Port)}
}

// Validate ensures the ScyllaDB configuration is valid
func (c *ScyllaDBConfig) Validate() error {
	var errs []string

	if c.Host == "" {
		errs = append(errs, "host is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	if c.Keyspace == "" {
		errs = append(errs, "keyspace is required")
	}

	if c.Table == "" {
		errs = append(errs, "table is required")
	}

	if c.TTL <= 0 {
		errs = append(errs, "TTL must be positive")
	}

	if len(errs) > 0 {
		return errors.New("store validation failed: " + strings.Join(errs, "; "))
	}

	return nil
}

// String returns a string representation of the ScyllaDB configuration
func (c *ScyllaDBConfig) String() string {
	return fmt.Sprintf(
		"ScyllaDBConfig{Host: %s, Port: %d, Keyspace: %s, Table: %s, Collection: %s, TTL: %d}",
		c.Host,
		c.Port,
		c.Keyspace,
		c.Table,
		c.Collection,
		c.TTL,
	)
}

// Clone creates a copy of the ScyllaDB configuration
func (c *ScyllaDBConfig) Clone() *ScyllaDBConfig {
	clone := *c
	return &clone
}
