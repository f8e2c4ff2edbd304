package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/systmms/gsecret/internal/config"
	gserrors "github.com/systmms/gsecret/internal/errors"
	"github.com/systmms/gsecret/pkg/secretmanager"
)

func NewAddVersionCommand(cfg *config.Config) *cobra.Command {
	var (
		project   string
		value     string
		valueFile string
	)

	cmd := &cobra.Command{
		Use:   "add-version NAME",
		Short: "Add a version to an existing secret",
		Long: `Add a new version to a secret that already exists.

Unlike 'gsecret set' this does not create the secret first; a missing
secret is an error. The value comes from --value, --value-file, or stdin,
byte-for-byte.

Examples:
  printf 'hunter2' | gsecret add-version database-password
  gsecret add-version tls-key --value-file ./key.pem`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := cfg.Load(); err != nil {
				return err
			}

			buffer, err := readValue(value, valueFile)
			if err != nil {
				return err
			}
			defer buffer.Destroy()

			handle, err := newHandle(cfg)
			if err != nil {
				return err
			}

			locked, err := buffer.Open()
			if err != nil {
				return fmt.Errorf("failed to open secret value: %w", err)
			}
			defer locked.Destroy()

			ctx := context.Background()
			status, err := handle.AddSecretVersion(ctx, name, locked.String(), secretmanager.Config{Project: project})
			if err != nil {
				return describeClientError("add a version to", name, err)
			}

			if status != http.StatusOK {
				return gserrors.UserError{
					Message:    fmt.Sprintf("Secret Manager returned status %d adding a version to '%s'", status, name),
					Suggestion: fmt.Sprintf("Create the secret first with 'gsecret create %s', or use 'gsecret set %s' to do both", name, name),
				}
			}

			cfg.Logger.Info("Added a new version to secret '%s'", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (overrides config file)")
	cmd.Flags().StringVar(&value, "value", "", "Secret value (prefer --value-file or stdin)")
	cmd.Flags().StringVar(&valueFile, "value-file", "", "Read the secret value from this file")

	return cmd
}
