package secretmanager

import (
	"errors"
	"fmt"
)

// Operation names used in errors, debug logs and metric labels.
const (
	opAccess     = "access"
	opCreate     = "create"
	opAddVersion = "add_version"
)

// ConfigurationError reports an invalid resolved configuration, detected
// before any token fetch or network request.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("secretmanager configuration error: %s", e.Message)
}

// PermissionError reports a 403 from a secret read: the credentials were
// accepted but lack access to this secret.
type PermissionError struct {
	Name       string
	StatusCode int
	Body       string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("secretmanager: access to secret %q denied (status %d)", e.Name, e.StatusCode)
}

// UnexpectedResponseError reports a status code outside the set an operation
// knows how to handle. It always carries the numeric status so callers can
// branch without parsing the message.
type UnexpectedResponseError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("secretmanager %s error (status %d): %s", e.Op, e.StatusCode, e.Body)
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var cerr *ConfigurationError
	return errors.As(err, &cerr)
}

// IsPermission reports whether err is a PermissionError.
func IsPermission(err error) bool {
	var perr *PermissionError
	return errors.As(err, &perr)
}

// IsUnexpectedResponse reports whether err is an UnexpectedResponseError.
// On a match it also returns the HTTP status that triggered it.
func IsUnexpectedResponse(err error) (int, bool) {
	var uerr *UnexpectedResponseError
	if errors.As(err, &uerr) {
		return uerr.StatusCode, true
	}
	return 0, false
}
