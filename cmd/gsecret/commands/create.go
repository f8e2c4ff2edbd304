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

func NewCreateCommand(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty secret",
		Long: `Create a secret container with automatic replication and no versions.

The secret holds no value until a version is added with 'gsecret
add-version' or 'gsecret set'. Creating a secret that already exists is
reported but not an error, so the command is safe to re-run.

Examples:
  gsecret create database-password
  gsecret create database-password --project staging`,
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
			status, err := handle.CreateSecret(ctx, name, secretmanager.Config{Project: project})
			if err != nil {
				return describeClientError("create", name, err)
			}

			switch status {
			case http.StatusOK:
				cfg.Logger.Info("Secret '%s' created", name)
			case http.StatusConflict:
				cfg.Logger.Info("Secret '%s' already exists", name)
			default:
				return gserrors.UserError{
					Message:    fmt.Sprintf("Secret Manager returned status %d creating '%s'", status, name),
					Suggestion: "Re-run with --debug to see the request details",
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (overrides config file)")

	return cmd
}
