package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/gsecret/cmd/gsecret/commands"
	"github.com/systmms/gsecret/internal/config"
	"github.com/systmms/gsecret/internal/logging"
	"github.com/systmms/gsecret/internal/metrics"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Wipe every secure buffer on the way out. SafeExit does the same on
	// the error path, where os.Exit would skip the defer.
	defer memguard.Purge()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		memguard.SafeExit(1)
	}
}

func run() error {
	metrics.InitMetrics()

	// Global flags
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "gsecret",
		Short: "Google Secret Manager from the command line",
		Long: `gsecret reads and writes Google Secret Manager secrets over its REST API.

Secret values print to stdout so the tool composes with shell pipelines;
status lines and diagnostics go to stderr.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			// Update config with parsed values
			cfg.Path = configFile
			cfg.Logger = logger
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "gsecret.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewInitCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewSetCommand(cfg),
		commands.NewCreateCommand(cfg),
		commands.NewAddVersionCommand(cfg),
		commands.NewLoginCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
