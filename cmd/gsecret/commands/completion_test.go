package commands

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/systmms/gsecret/internal/config"
	"github.com/systmms/gsecret/internal/logging"
)

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			cfg := &config.Config{
				Path:   filepath.Join(t.TempDir(), "gsecret.yaml"),
				Logger: logging.New(false, true),
			}

			// Completion scripts are generated for the root command, so the
			// test mounts the command the way main does.
			root := &cobra.Command{Use: "gsecret"}
			root.AddCommand(NewCompletionCommand(cfg))

			output := captureOutput(t, root, []string{"completion", shell})
			assert.NotEmpty(t, output)
			assert.Contains(t, output, "gsecret")
		})
	}
}

func TestCompletionCommand_RejectsUnknownShell(t *testing.T) {
	cfg := &config.Config{
		Path:   filepath.Join(t.TempDir(), "gsecret.yaml"),
		Logger: logging.New(false, true),
	}

	root := &cobra.Command{Use: "gsecret"}
	root.AddCommand(NewCompletionCommand(cfg))
	root.SetArgs([]string{"completion", "tcsh"})

	err := root.Execute()
	assert.Error(t, err)
}
