package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/gsecret/internal/config"
	gserrors "github.com/systmms/gsecret/internal/errors"
	"github.com/systmms/gsecret/pkg/secretmanager"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var (
		project       string
		secretVersion string
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Read a secret value",
		Long: `Read a secret version from Google Secret Manager and print it to stdout.

By default only the raw value is printed, with no trailing newline, so the
command composes with shell pipelines. Status lines go to stderr.

Flags override the config file for this call only: --project selects the
project and --secret-version the version ("latest" when unset).

Examples:
  # Read the latest version
  gsecret get database-password

  # Read a pinned version from another project
  gsecret get database-password --project staging --secret-version 3

  # Use in scripts
  export DB_PASSWORD=$(gsecret get database-password)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if err := cfg.Load(); err != nil {
				return err
			}

			handle, err := newHandle(cfg)
			if err != nil {
				return err
			}

			ctx := context.Background()
			value, found, err := handle.Get(ctx, name, secretmanager.Config{
				Project: project,
				Version: secretVersion,
			})
			if err != nil {
				return describeClientError("read", name, err)
			}
			if !found {
				return gserrors.UserError{
					Message:    fmt.Sprintf("Secret '%s' not found", name),
					Suggestion: fmt.Sprintf("Check the name and project, or create it with 'gsecret set %s'", name),
				}
			}

			if jsonOutput {
				// Report the project and version the call actually used,
				// following the same precedence the client applies.
				effectiveProject := project
				if effectiveProject == "" {
					effectiveProject = cfg.ClientConfig().Project
				}
				effectiveVersion := secretVersion
				if effectiveVersion == "" {
					effectiveVersion = cfg.ClientConfig().Version
				}
				if effectiveVersion == "" {
					effectiveVersion = secretmanager.DefaultVersion
				}

				output := map[string]interface{}{
					"name":    name,
					"value":   value,
					"project": effectiveProject,
					"version": effectiveVersion,
				}

				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(output); err != nil {
					return fmt.Errorf("failed to encode JSON: %w", err)
				}
			} else {
				fmt.Print(value)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (overrides config file)")
	cmd.Flags().StringVar(&secretVersion, "secret-version", "", "Version to read (overrides config file, default \"latest\")")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output a JSON object with metadata")

	return cmd
}
