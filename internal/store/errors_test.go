// internal/store/errors_test.go
package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidConfigurationError(t *testing.T) {
	err := &InvalidConfigurationError{Store: "redis", Config: 42}
	assert.Equal(t, "redis: invalid configuration type: int", err.Error())
}

func TestUnknownConstructorError(t *testing.T) {
	err := UnknownConstructorError{Store: "etcd"}
	assert.Equal(t, `unknown constructor "etcd" (forgotten import?)`, err.Error())
}
