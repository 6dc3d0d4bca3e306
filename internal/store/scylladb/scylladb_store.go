// internal/store/scylladb/scylladb_store.go
package scylladb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/leaselock/leaselock/internal/lockservice"
	"github.com/leaselock/leaselock/internal/observability"
	"github.com/leaselock/leaselock/internal/store"
)

// Error definitions
var (
	ErrConfigOptionMissing = errors.New("ScyllaDB requires a config option")
)

// StoreName is the registered name of the ScyllaDB store
const StoreName = "scylladb"

// lockQueries holds the prepared CQL text for the lock operations.
// Release and extend use lightweight transactions so the token compare
// and the mutation are one atomic server-side unit.
type lockQueries struct {
	acquire string
	release string
	extend  string
}

func buildQueries(fullTableName string) lockQueries {
	return lockQueries{
		acquire: fmt.Sprintf("INSERT INTO %s (lock_key, token) VALUES (?, ?) IF NOT EXISTS USING TTL ?", fullTableName),
		release: fmt.Sprintf("DELETE FROM %s WHERE lock_key = ? IF token = ?", fullTableName),
		extend:  fmt.Sprintf("UPDATE %s USING TTL ? SET token = ? WHERE lock_key = ? IF token = ?", fullTableName),
	}
}

// parseConsistency converts string consistency to gocql.Consistency
func parseConsistency(c string) gocql.Consistency {
	switch c {
	case "CONSISTENCY_QUORUM":
		return gocql.Quorum
	case "CONSISTENCY_ONE":
		return gocql.One
	case "CONSISTENCY_ALL":
		return gocql.All
	default:
		return gocql.Quorum
	}
}

// Register the ScyllaDB store with the lockservice package
func init() {
	lockservice.Register(StoreName, newStore)
}

// newStore creates a new ScyllaDB store instance from configuration
func newStore(ctx context.Context, options lockservice.Config, logger *observability.SLogger) (store.LockStore, error) {
	cfg, ok := options.(*ScyllaDBConfig)
	if !ok && options != nil {
		return nil, &store.InvalidConfigurationError{Store: StoreName, Config: options}
	}
	return New(ctx, cfg, logger)
}

// Store implements the store.LockStore interface for ScyllaDB
type Store struct {
	session       *gocql.Session
	fullTableName string
	queries       lockQueries
	l             *observability.SLogger
	config        *ScyllaDBConfig
}

// GetConfig returns the current store configuration
func (s *Store) GetConfig() store.StoreConfig {
	return s.config
}

// New creates a new ScyllaDB store with the provided configuration
func New(ctx context.Context, config *ScyllaDBConfig, logger *observability.SLogger) (*Store, error) {
	if config == nil {
		return nil, ErrConfigOptionMissing
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	cluster := gocql.NewCluster(fmt.Sprintf("%s:%d", config.Host, config.Port))
	cluster.ProtoVersion = 4
	cluster.Consistency = parseConsistency(config.Consistency)
	if config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		logger.Errorf("Error creating session: %v", err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s := &Store{
		session:       session,
		fullTableName: fmt.Sprintf("%q.%q", config.Keyspace, config.Table),
		l:             logger,
		config:        config,
	}

	if err := s.initSchema(); err != nil {
		session.Close()
		return nil, err
	}
	s.queries = buildQueries(s.fullTableName)

	return s, nil
}

func (s *Store) initSchema() error {
	err := s.session.Query(fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %q
	WITH replication = {
		'class' : 'SimpleStrategy',
		'replication_factor' : 3
	}`, s.config.Keyspace)).Exec()
	if err != nil {
		return fmt.Errorf("failed to create keyspace: %w", err)
	}

	err = s.session.Query(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        lock_key text,
        token text,
        PRIMARY KEY (lock_key)
    )`, s.fullTableName)).Exec()
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// AcquireLock inserts key -> token only if no row exists for the key.
// The row carries the lease TTL; Scylla expires it server-side.
func (s *Store) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	applied, err := s.session.Query(s.queries.acquire, key, token, int(ttl.Seconds())).
		WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		s.l.Errorf("Error acquiring lock %q: %v", key, err)
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return applied, nil
}

// ReleaseLock deletes the row only if it still holds token.
func (s *Store) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	applied, err := s.session.Query(s.queries.release, key, token).
		WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		s.l.Errorf("Error releasing lock %q: %v", key, err)
		return false, fmt.Errorf("failed to release lock: %w", err)
	}
	return applied, nil
}

// ExtendLock rewrites the row with a fresh TTL only if it still holds
// token.
func (s *Store) ExtendLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	applied, err := s.session.Query(s.queries.extend, int(ttl.Seconds()), token, key, token).
		WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		s.l.Errorf("Error extending lock %q: %v", key, err)
		return false, fmt.Errorf("failed to extend lock: %w", err)
	}
	return applied, nil
}

// Ping verifies the ScyllaDB session is healthy
func (s *Store) Ping(ctx context.Context) error {
	if err := s.session.Query("SELECT now() FROM system.local").WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrNotReachable, err)
	}
	return nil
}

// Close closes the ScyllaDB session
func (s *Store) Close() {
	if s.session != nil {
		s.session.Close()
	}
}
