package store

import "time"

// StoreConfig is the configuration surface shared by all lock store
// backends.
type StoreConfig interface {
	// GetCollection returns the logical namespace lock keys live in.
	// An empty collection means the owning application has not opted
	// into locking for this backend.
	GetCollection() string

	// GetTTL returns the default lease duration in seconds, used when
	// a caller does not supply one.
	GetTTL() int32

	// GetExtendInterval returns the default renewal cadence. Zero
	// means derive it from the lease duration.
	GetExtendInterval() time.Duration

	// GetEndpoints returns the backend endpoints.
	GetEndpoints() []string

	// Validate checks the configuration for consistency.
	Validate() error
}

// BaseStoreConfig carries the fields common to every backend
// configuration.
type BaseStoreConfig struct {
	// Collection is the logical namespace prepended to lock keys. An
	// empty collection means locking has not been configured for this
	// store.
	Collection string `yaml:"collection" mapstructure:"collection"`

	// TTL is the default lease duration in seconds.
	TTL int32 `yaml:"ttl" mapstructure:"ttl"`

	// ExtendInterval is the default renewal cadence; zero derives it
	// from the lease duration.
	ExtendInterval time.Duration `yaml:"extendInterval" mapstructure:"extendInterval"`
}

func (b *BaseStoreConfig) GetCollection() string {
	return b.Collection
}

func (b *BaseStoreConfig) GetTTL() int32 {
	return b.TTL
}

func (b *BaseStoreConfig) GetExtendInterval() time.Duration {
	return b.ExtendInterval
}
