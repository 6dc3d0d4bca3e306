// internal/store/errors.go
package store

import (
	"errors"
	"fmt"
)

// ErrNotReachable is returned by Ping when the backend cannot be
// reached. Backends wrap it so callers can match with errors.Is.
var ErrNotReachable = errors.New("store not reachable")

// InvalidConfigurationError is thrown when the type of the configuration
// is not supported by a store.
type InvalidConfigurationError struct {
	Store  string
	Config any
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("%s: invalid configuration type: %T", e.Store, e.Config)
}

// UnknownConstructorError is thrown when a requested store is not
// registered.
type UnknownConstructorError struct {
	Store string
}

func (e UnknownConstructorError) Error() string {
	return fmt.Sprintf("unknown constructor %q (forgotten import?)", e.Store)
}
