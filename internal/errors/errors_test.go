package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/gsecret/internal/errors"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Connection timeout")
	assert.Contains(t, errMsg, "Check network connectivity")
	assert.Contains(t, errMsg, "💡")
}

// TestUserErrorFallsBackToWrappedError verifies the wrapped error is used when no message is set
func TestUserErrorFallsBackToWrappedError(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("token source unavailable")
	err := errors.UserError{
		Suggestion: "Run 'gsecret login' first",
		Err:        cause,
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "token source unavailable")
	assert.Contains(t, errMsg, "gsecret login")
}

// TestUserErrorUnwrap verifies errors.Is works through UserError
func TestUserErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("underlying failure")
	err := errors.UserError{
		Message: "Secret lookup failed",
		Err:     cause,
	}

	assert.True(t, stderrors.Is(err, cause))
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "auth.method",
		Value:      "oauth-dance",
		Message:    "unknown authentication method",
		Suggestion: "Use one of: adc, keyring, static",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "auth.method")
	assert.Contains(t, errMsg, "oauth-dance")
	assert.Contains(t, errMsg, "unknown authentication method")
	assert.Contains(t, errMsg, "adc, keyring, static")
}

// TestConfigErrorWithoutFieldOrValue verifies minimal config errors still read well
func TestConfigErrorWithoutFieldOrValue(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Message: "invalid YAML syntax in configuration file",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Configuration error")
	assert.Contains(t, errMsg, "invalid YAML syntax")
	assert.NotContains(t, errMsg, "field")
}
