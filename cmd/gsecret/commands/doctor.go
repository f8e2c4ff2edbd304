package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/gsecret/internal/auth"
	"github.com/systmms/gsecret/internal/config"
	"github.com/systmms/gsecret/pkg/secretmanager"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	var (
		project string
		probe   bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and authentication",
		Long: `Verify that gsecret is ready to talk to Secret Manager.

This command checks:
- Configuration file validity (YAML syntax and schema)
- Project selection
- Credential availability for the configured auth method

With --probe it also sends one read request for a name that should not
exist; a not-found answer proves the endpoint and credentials work.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]checkResult, 0, 4)

			// Config file
			loadErr := cfg.Load()
			switch {
			case loadErr != nil:
				results = append(results, checkResult{"config", statusError, loadErr.Error()})
			case fileMissing(cfg.Path):
				results = append(results, checkResult{"config", statusOK, fmt.Sprintf("%s not found, defaults apply", cfg.Path)})
			default:
				results = append(results, checkResult{"config", statusOK, fmt.Sprintf("%s loaded", cfg.Path)})
			}

			// Project selection
			effectiveProject := project
			if effectiveProject == "" && loadErr == nil {
				effectiveProject = cfg.ClientConfig().Project
			}
			if effectiveProject == "" {
				results = append(results, checkResult{"project", statusError, "no project configured; set 'project' in gsecret.yaml or pass --project"})
			} else {
				results = append(results, checkResult{"project", statusOK, effectiveProject})
			}

			// Credentials for the configured method
			results = append(results, checkAuth(cfg))

			// Optional API probe
			if probe {
				results = append(results, checkAPI(cfg, effectiveProject))
			}

			displayCheckResults(results)

			passed := 0
			for _, result := range results {
				if result.Status == statusOK {
					passed++
				}
			}
			fmt.Printf("\nSummary: %d/%d checks passed\n", passed, len(results))
			if passed < len(results) {
				return fmt.Errorf("some checks failed")
			}

			cfg.Logger.Info("gsecret is ready")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project ID (overrides config file)")
	cmd.Flags().BoolVar(&probe, "probe", false, "Send one read request to verify connectivity")

	return cmd
}

const (
	statusOK    = "ok"
	statusError = "error"
)

// checkResult is one row of the doctor report.
type checkResult struct {
	Name   string
	Status string
	Detail string
}

func fileMissing(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// checkAuth verifies that credentials for the configured method are
// available without sending any API request.
func checkAuth(cfg *config.Config) checkResult {
	method := cfg.AuthMethod()

	switch method {
	case config.AuthMethodADC:
		if _, err := secretmanager.DefaultTokenSource(context.Background()); err != nil {
			return checkResult{"auth", statusError, "no application default credentials; run 'gcloud auth application-default login'"}
		}
		return checkResult{"auth", statusOK, "application default credentials found"}

	case config.AuthMethodKeyring:
		service, account := cfg.KeyringCoordinates()
		source := auth.FromKeyring(service, account)
		if _, err := source.Token(); err != nil {
			if auth.IsNotFound(err) {
				return checkResult{"auth", statusError, fmt.Sprintf("no token in keyring %s/%s; run 'gsecret login --token-stdin'", service, account)}
			}
			return checkResult{"auth", statusError, err.Error()}
		}
		return checkResult{"auth", statusOK, fmt.Sprintf("token present in keyring %s/%s", service, account)}

	case config.AuthMethodStatic:
		if os.Getenv(config.TokenEnvVar) == "" {
			return checkResult{"auth", statusError, fmt.Sprintf("$%s is unset or empty", config.TokenEnvVar)}
		}
		return checkResult{"auth", statusOK, fmt.Sprintf("token present in $%s", config.TokenEnvVar)}

	default:
		return checkResult{"auth", statusError, fmt.Sprintf("unknown auth method '%s'", method)}
	}
}

// checkAPI reads a name that should not exist. Absence is the healthy
// answer: it proves the endpoint, credentials, and project all line up.
func checkAPI(cfg *config.Config, project string) checkResult {
	if project == "" {
		return checkResult{"api", statusError, "skipped: no project configured"}
	}

	handle, err := newHandle(cfg)
	if err != nil {
		return checkResult{"api", statusError, err.Error()}
	}

	_, found, err := handle.Get(context.Background(), "gsecret-doctor-probe", secretmanager.Config{Project: project})
	switch {
	case err == nil && !found:
		return checkResult{"api", statusOK, "endpoint reachable, credentials accepted"}
	case err == nil && found:
		return checkResult{"api", statusOK, "endpoint reachable (probe secret exists)"}
	case secretmanager.IsPermission(err):
		return checkResult{"api", statusError, "authenticated, but missing roles/secretmanager.secretAccessor"}
	default:
		return checkResult{"api", statusError, err.Error()}
	}
}

// displayCheckResults shows the report in a formatted table.
func displayCheckResults(results []checkResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tDETAIL\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t------\n")

	for _, result := range results {
		status := result.Status
		switch result.Status {
		case statusOK:
			status = "✓ " + status
		case statusError:
			status = "✗ " + status
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", result.Name, status, result.Detail)
	}

	_ = w.Flush()
}
