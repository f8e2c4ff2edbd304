package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/gsecret/internal/config"
)

const exampleConfig = `version: 0

# Google Cloud project that owns your secrets.
project: my-project

# Version to read when 'get' is not given --secret-version.
# secretVersion: latest

# Override for Private Service Connect or test endpoints.
# endpoint: https://secretmanager.googleapis.com/v1

# How gsecret obtains OAuth tokens. The file never holds tokens itself.
auth:
  method: adc        # adc | keyring | static
  # keyringService: gsecret
  # keyringAccount: oauth-token
`

func NewInitCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new gsecret configuration",
		Long:  "Create a gsecret.yaml file with a commented starter configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(cfg.Path); err == nil {
				return fmt.Errorf("%s already exists. Remove it first if you want to reinitialize", cfg.Path)
			}

			if err := os.WriteFile(cfg.Path, []byte(exampleConfig), 0644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cfg.Logger.Info("Created %s", cfg.Path)
			cfg.Logger.Info("Next steps:")
			cfg.Logger.Info("  1. Edit %s and set your project", cfg.Path)
			cfg.Logger.Info("  2. Authenticate: gcloud auth application-default login")
			cfg.Logger.Info("  3. Run 'gsecret doctor' to verify the setup")
			cfg.Logger.Info("  4. Run 'gsecret get <name>' to read a secret")

			return nil
		},
	}

	return cmd
}
