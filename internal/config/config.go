// Package config loads the optional gsecret.yaml file and turns it into the
// instance-level configuration layer for the Secret Manager client.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"

	"github.com/systmms/gsecret/internal/auth"
	gserrors "github.com/systmms/gsecret/internal/errors"
	"github.com/systmms/gsecret/internal/logging"
	"github.com/systmms/gsecret/pkg/secretmanager"
)

// Supported auth.method values.
const (
	AuthMethodADC     = "adc"
	AuthMethodKeyring = "keyring"
	AuthMethodStatic  = "static"
)

// TokenEnvVar is the environment variable the static auth method reads.
// The config file itself never holds tokens.
const TokenEnvVar = "GSECRET_TOKEN"

//go:embed schema.json
var configSchema string

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition represents the gsecret.yaml structure.
type Definition struct {
	Version       int        `yaml:"version"`
	Project       string     `yaml:"project,omitempty"`
	SecretVersion string     `yaml:"secretVersion,omitempty"`
	Endpoint      string     `yaml:"endpoint,omitempty"`
	Auth          AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig selects how API tokens are obtained.
type AuthConfig struct {
	Method         string `yaml:"method,omitempty"`
	KeyringService string `yaml:"keyringService,omitempty"`
	KeyringAccount string `yaml:"keyringAccount,omitempty"`
}

// Load reads and parses the gsecret.yaml file. A missing file is not an
// error: every setting can arrive through flags instead, so the Definition
// is simply left empty.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Definition = &Definition{}
			return nil
		}
		return gserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return gserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	// Validate version
	if def.Version != 0 {
		return gserrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your gsecret.yaml file",
		}
	}

	if err := validateWithSchema(data); err != nil {
		return err
	}

	c.Definition = &def
	return nil
}

// validateWithSchema validates the raw YAML document against the embedded
// JSON schema. Validating the document rather than the parsed struct is
// what catches misspelled keys, which yaml.Unmarshal silently drops.
func validateWithSchema(data []byte) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse configuration for validation: %w", err)
	}
	if raw == nil {
		// Empty file: nothing to validate.
		return nil
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return gserrors.ConfigError{
			Message:    fmt.Sprintf("configuration failed schema validation:\n  - %s", strings.Join(errorMessages, "\n  - ")),
			Suggestion: "Fix the listed fields in your gsecret.yaml file",
		}
	}

	return nil
}

// ClientConfig maps the file's settings onto the client's instance
// configuration layer. Empty fields stay empty so library defaults and
// call-time flags keep their overlay precedence.
func (c *Config) ClientConfig() secretmanager.Config {
	if c.Definition == nil {
		return secretmanager.Config{}
	}
	return secretmanager.Config{
		Project:  c.Definition.Project,
		Version:  c.Definition.SecretVersion,
		Endpoint: c.Definition.Endpoint,
	}
}

// AuthMethod returns the configured auth method, defaulting to adc.
func (c *Config) AuthMethod() string {
	if c.Definition == nil || c.Definition.Auth.Method == "" {
		return AuthMethodADC
	}
	return c.Definition.Auth.Method
}

// KeyringCoordinates returns the keyring service/account for the keyring
// auth method, falling back to the package defaults.
func (c *Config) KeyringCoordinates() (service, account string) {
	service = auth.KeyringService
	account = auth.KeyringAccount
	if c.Definition != nil {
		if c.Definition.Auth.KeyringService != "" {
			service = c.Definition.Auth.KeyringService
		}
		if c.Definition.Auth.KeyringAccount != "" {
			account = c.Definition.Auth.KeyringAccount
		}
	}
	return service, account
}

// TokenSource builds the token source for the configured auth method,
// along with a human-readable description for diagnostics.
//
// For the adc method the returned source is nil: the client resolves
// Application Default Credentials itself, freshly on every call.
func (c *Config) TokenSource() (oauth2.TokenSource, string, error) {
	switch method := c.AuthMethod(); method {
	case AuthMethodADC:
		return nil, "application default credentials", nil
	case AuthMethodKeyring:
		service, account := c.KeyringCoordinates()
		return auth.FromKeyring(service, account),
			fmt.Sprintf("OS keyring (%s/%s)", service, account), nil
	case AuthMethodStatic:
		return auth.FromEnv(TokenEnvVar),
			fmt.Sprintf("static token from $%s", TokenEnvVar), nil
	default:
		// The schema rejects unknown methods at Load time; this branch is
		// only reachable when a Definition is constructed by hand.
		return nil, "", gserrors.ConfigError{
			Field:      "auth.method",
			Value:      method,
			Message:    "unknown authentication method",
			Suggestion: "Use one of: adc, keyring, static",
		}
	}
}
