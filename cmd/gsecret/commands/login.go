package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/gsecret/internal/auth"
	"github.com/systmms/gsecret/internal/config"
	gserrors "github.com/systmms/gsecret/internal/errors"
	"github.com/systmms/gsecret/internal/logging"
	"github.com/systmms/gsecret/internal/secure"
)

func NewLoginCommand(cfg *config.Config) *cobra.Command {
	var (
		token      string
		tokenStdin bool
		clear      bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token in the OS keyring",
		Long: `Store the OAuth token used when gsecret.yaml sets auth.method: keyring.

The token lives in the operating system keyring (Secret Service on Linux,
Keychain on macOS, Credential Manager on Windows), never in the config
file. Every API request reads it back fresh, so replacing the stored
token takes effect immediately.

Examples:
  # Store a token without putting it in shell history
  gcloud auth print-access-token | gsecret login --token-stdin

  # Remove the stored token
  gsecret login --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			service, account := cfg.KeyringCoordinates()

			if clear {
				if err := auth.Clear(service, account); err != nil {
					return err
				}
				cfg.Logger.Info("Removed token from keyring (%s/%s)", service, account)
				return nil
			}

			if tokenStdin {
				buffer, err := secure.ReadAll(os.Stdin)
				if errors.Is(err, secure.ErrEmptyPayload) {
					return gserrors.UserError{
						Message:    "No token provided on stdin",
						Suggestion: "Pipe one, e.g. gcloud auth print-access-token | gsecret login --token-stdin",
						Err:        err,
					}
				}
				if err != nil {
					return err
				}
				defer buffer.Destroy()

				locked, err := buffer.Open()
				if err != nil {
					return fmt.Errorf("failed to open token buffer: %w", err)
				}
				defer locked.Destroy()

				token = strings.TrimSpace(locked.String())
			}

			if token == "" {
				return gserrors.UserError{
					Message:    "No token provided",
					Suggestion: "Pipe a token with --token-stdin, pass --token, or use --clear to remove a stored one",
				}
			}

			cfg.Logger.Debug("Storing token %s in keyring %s/%s", logging.Secret(token), service, account)
			if err := auth.Store(service, account, token); err != nil {
				return err
			}

			cfg.Logger.Info("Stored token in keyring (%s/%s)", service, account)
			cfg.Logger.Info("Set 'auth.method: keyring' in gsecret.yaml to use it")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Token value (prefer --token-stdin; flags leak into shell history)")
	cmd.Flags().BoolVar(&tokenStdin, "token-stdin", false, "Read the token from stdin")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the stored token")

	return cmd
}
