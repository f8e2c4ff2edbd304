package secretmanager

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/systmms/gsecret/internal/logging"
)

// Handle is a reusable client with an instance-level configuration layer.
// SetProject and SetVersion mutate the handle in place and return it for
// chaining; Get and Set accept call-time overrides that never touch the
// handle's own config. Configure a handle before sharing it across
// goroutines: the mutating setters are not synchronized.
type Handle struct {
	config Config
	client *apiClient
}

// Option configures a Handle's collaborators at construction time.
type Option func(*Handle)

// WithHTTPClient sets a custom HTTP client (custom transport, timeout, or a
// test server's client).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(h *Handle) {
		h.client.httpClient = httpClient
	}
}

// WithTokenSource sets the token source consulted on every request. Without
// this option, Application Default Credentials are resolved per call.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(h *Handle) {
		h.client.tokens = ts
	}
}

// WithLogger sets the logger for request debug lines.
func WithLogger(logger *logging.Logger) Option {
	return func(h *Handle) {
		h.client.logger = logger
	}
}

// New creates a Handle carrying cfg as its instance configuration layer.
// Nothing is validated or resolved here: a handle built from a zero Config
// works as long as each call supplies the project through an override.
func New(cfg Config, opts ...Option) *Handle {
	h := &Handle{
		config: cfg,
		client: newAPIClient(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// SetProject changes the handle's project and returns the same handle.
func (h *Handle) SetProject(project string) *Handle {
	h.config.Project = project
	return h
}

// SetVersion changes the handle's read version and returns the same handle.
func (h *Handle) SetVersion(version string) *Handle {
	h.config.Version = version
	return h
}

// Config returns a copy of the handle's instance configuration layer, with
// no defaults applied.
func (h *Handle) Config() Config {
	return h.config
}

// Get reads one secret version and reports whether it exists. Absence (a
// 404 from the API) is not an error: the caller gets ("", false, nil).
// A 403 surfaces as *PermissionError, any other unexpected status as
// *UnexpectedResponseError.
func (h *Handle) Get(ctx context.Context, name string, overrides ...Config) (string, bool, error) {
	cfg, err := resolveConfig(h.config, overrides...)
	if err != nil {
		return "", false, err
	}

	return h.client.accessSecretVersion(ctx, cfg, name)
}

// Set stores value as a new version of name, creating the secret first if
// needed. It issues exactly two requests in order:
//
//  1. create the secret container; 200 (created) and 409 (already exists)
//     both continue, anything else stops with *UnexpectedResponseError.
//  2. add the new version; only 200 succeeds.
//
// The sequence is not atomic: a crash between the calls leaves an empty
// secret behind. Re-running Set is safe, since step 1 tolerates the 409.
func (h *Handle) Set(ctx context.Context, name, value string, overrides ...Config) error {
	cfg, err := resolveConfig(h.config, overrides...)
	if err != nil {
		return err
	}

	status, body, err := h.client.createSecret(ctx, cfg, name)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusConflict {
		return &UnexpectedResponseError{Op: opCreate, StatusCode: status, Body: body}
	}

	status, body, err = h.client.addSecretVersion(ctx, cfg, name, value)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &UnexpectedResponseError{Op: opAddVersion, StatusCode: status, Body: body}
	}

	return nil
}

// CreateSecret issues the raw create call and returns the HTTP status code
// unclassified. A 409 means the secret already existed; most callers want
// Set instead, which folds that case in.
func (h *Handle) CreateSecret(ctx context.Context, name string, overrides ...Config) (int, error) {
	cfg, err := resolveConfig(h.config, overrides...)
	if err != nil {
		return 0, err
	}

	status, _, err := h.client.createSecret(ctx, cfg, name)
	return status, err
}

// AddSecretVersion issues the raw add-version call and returns the HTTP
// status code unclassified. Only 200 means the version was stored.
func (h *Handle) AddSecretVersion(ctx context.Context, name, value string, overrides ...Config) (int, error) {
	cfg, err := resolveConfig(h.config, overrides...)
	if err != nil {
		return 0, err
	}

	status, _, err := h.client.addSecretVersion(ctx, cfg, name, value)
	return status, err
}
