package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/gsecret/internal/config"
	"github.com/systmms/gsecret/pkg/secretmanager"
)

func NewSetCommand(cfg *config.Config) *cobra.Command {
	var (
		project   string
		value     string
		valueFile string
	)

	cmd := &cobra.Command{
		Use:   "set NAME",
		Short: "Write a secret value, creating the secret if needed",
		Long: `Write a secret value to Google Secret Manager.

The secret is created first when it does not exist yet, then the value is
added as a new version. An already existing secret is fine; its newest
version simply becomes this value. The two steps are separate API calls,
so a failure between them can leave a secret without versions. Re-running
the command completes the write.

The value comes from --value, --value-file, or stdin, and is used
byte-for-byte. Pipe with printf rather than echo to avoid a trailing
newline.

Examples:
  # From stdin (recommended; flags leak into shell history)
  printf 'hunter2' | gsecret set database-password

  # From a file
  gsecret set tls-key --value-file ./key.pem

  # Inline, for throwaway values
  gsecret set smoke-test --value hello`,
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

			cfg.Logger.Debug("Writing %d bytes to secret %s", locked.Size(), name)

			ctx := context.Background()
			if err := handle.Set(ctx, name, locked.String(), secretmanager.Config{Project: project}); err != nil {
				return describeClientError("write", name, err)
			}

			cfg.Logger.Info("Secret '%s' updated", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (overrides config file)")
	cmd.Flags().StringVar(&value, "value", "", "Secret value (prefer --value-file or stdin)")
	cmd.Flags().StringVar(&valueFile, "value-file", "", "Read the secret value from this file")

	return cmd
}
