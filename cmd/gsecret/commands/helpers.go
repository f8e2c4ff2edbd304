package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/systmms/gsecret/internal/config"
	gserrors "github.com/systmms/gsecret/internal/errors"
	"github.com/systmms/gsecret/internal/secure"
	"github.com/systmms/gsecret/pkg/secretmanager"
)

// newHandle builds a client handle from the loaded configuration. The
// config file supplies the instance layer; auth comes from the configured
// method. A nil token source leaves credential resolution to the client.
func newHandle(cfg *config.Config) (*secretmanager.Handle, error) {
	source, description, err := cfg.TokenSource()
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("Authenticating via %s", description)

	opts := []secretmanager.Option{secretmanager.WithLogger(cfg.Logger)}
	if source != nil {
		opts = append(opts, secretmanager.WithTokenSource(source))
	}

	return secretmanager.New(cfg.ClientConfig(), opts...), nil
}

// readValue loads a secret value from --value, --value-file, or stdin, in
// that order of precedence. The value lands in a memguard-backed buffer
// and is used byte-for-byte, trailing newlines included. Empty input is an
// error.
func readValue(value, valueFile string) (*secure.SecureBuffer, error) {
	var (
		buf *secure.SecureBuffer
		err error
	)

	switch {
	case value != "":
		buf, err = secure.NewSecureBuffer([]byte(value))
	case valueFile != "":
		f, openErr := os.Open(valueFile)
		if openErr != nil {
			return nil, gserrors.UserError{
				Message:    fmt.Sprintf("Failed to open value file '%s'", valueFile),
				Details:    openErr.Error(),
				Suggestion: "Check the file path and permissions",
				Err:        openErr,
			}
		}
		defer func() { _ = f.Close() }()
		buf, err = secure.ReadAll(f)
	default:
		buf, err = secure.ReadAll(os.Stdin)
	}

	if errors.Is(err, secure.ErrEmptyPayload) {
		return nil, gserrors.UserError{
			Message:    "No secret value provided",
			Suggestion: "Pipe a value on stdin, or pass --value or --value-file",
			Err:        err,
		}
	}
	return buf, err
}

// describeClientError turns the client's typed errors into user-facing
// errors with actionable suggestions. Errors it does not recognize pass
// through unchanged.
func describeClientError(op, name string, err error) error {
	if secretmanager.IsConfiguration(err) {
		return gserrors.UserError{
			Message:    fmt.Sprintf("Cannot %s '%s': %v", op, name, err),
			Suggestion: "Set 'project' in gsecret.yaml or pass --project",
			Err:        err,
		}
	}

	if secretmanager.IsPermission(err) {
		return gserrors.UserError{
			Message:    fmt.Sprintf("Permission denied trying to %s '%s'", op, name),
			Details:    err.Error(),
			Suggestion: "Grant roles/secretmanager.secretAccessor for reads or roles/secretmanager.admin for writes, then retry",
			Err:        err,
		}
	}

	if status, ok := secretmanager.IsUnexpectedResponse(err); ok {
		return gserrors.UserError{
			Message:    fmt.Sprintf("Secret Manager returned status %d trying to %s '%s'", status, op, name),
			Details:    err.Error(),
			Suggestion: "Re-run with --debug to see the request, and check https://status.cloud.google.com",
			Err:        err,
		}
	}

	return err
}
