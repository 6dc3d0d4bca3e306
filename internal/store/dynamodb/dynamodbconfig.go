// internal/store/dynamodb/dynamodbconfig.go
package dynamodb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leaselock/leaselock/internal/store"
)

// DynamoDBConfig holds DynamoDB-specific configuration
type DynamoDBConfig struct {
	store.BaseStoreConfig `yaml:",inline" mapstructure:",squash"`

	Region string `yaml:"region" mapstructure:"region"`
	Table  string `yaml:"table" mapstructure:"table"`

	// Endpoints optionally overrides the AWS endpoint, e.g. for a local
	// DynamoDB instance. Only the first entry is used.
	Endpoints []string `yaml:"endpoints" mapstructure:"endpoints"`

	AccessKeyID     string `yaml:"accessKeyId" mapstructure:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey" mapstructure:"secretAccessKey"`
}

// NewDynamoDBConfig creates a new DynamoDB configuration with default values
func NewDynamoDBConfig() *DynamoDBConfig {
	return &DynamoDBConfig{
		BaseStoreConfig: store.BaseStoreConfig{
			TTL: 10,
		},
		Region: "us-west-2",
		Table:  "locks",
	}
}

// GetEndpoints returns the configured endpoint overrides
func (c *DynamoDBConfig) GetEndpoints() []string {
	return c.Endpoints
}

// Validate ensures the DynamoDB configuration is valid
func (c *DynamoDBConfig) Validate() error {
	var errs []string

	if c.Region == "" {
		errs = append(errs, "region is required")
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

// String returns a string representation of the DynamoDB configuration
func (c *DynamoDBConfig) String() string {
	return fmt.Sprintf(
		"DynamoDBConfig{Region: %s, Table: %s, Collection: %s, TTL: %d}",
		c.Region,
		c.Table,
		c.Collection,
		c.TTL,
	)
}

// Clone creates a copy of the DynamoDB configuration
func (c *DynamoDBConfig) Clone() *DynamoDBConfig {
	clone := *c
	clone.Endpoints = make([]string, len(c.Endpoints))
	copy(clone.Endpoints, c.Endpoints)
	return &clone
}
