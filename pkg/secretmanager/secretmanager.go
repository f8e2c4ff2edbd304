package secretmanager

import "context"

// Package-level surface: every function builds a fresh Handle, so calls are
// independent of each other. The setters return the new handle, which makes
// one-off chained reads possible without naming a client:
//
//	value, found, err := secretmanager.SetProject("my-project").Get(ctx, "db-password")

// Get reads a secret with a fresh handle. The project must arrive through
// an override layer.
func Get(ctx context.Context, name string, overrides ...Config) (string, bool, error) {
	return New(Config{}).Get(ctx, name, overrides...)
}

// Set writes a secret version with a fresh handle, creating the secret if
// it does not exist yet.
func Set(ctx context.Context, name, value string, overrides ...Config) error {
	return New(Config{}).Set(ctx, name, value, overrides...)
}

// CreateSecret issues a raw create with a fresh handle and returns the
// unclassified status code.
func CreateSecret(ctx context.Context, name string, overrides ...Config) (int, error) {
	return New(Config{}).CreateSecret(ctx, name, overrides...)
}

// AddSecretVersion issues a raw add-version with a fresh handle and returns
// the unclassified status code.
func AddSecretVersion(ctx context.Context, name, value string, overrides ...Config) (int, error) {
	return New(Config{}).AddSecretVersion(ctx, name, value, overrides...)
}

// SetProject builds a fresh handle configured with project. Chain further
// setters or calls off the returned handle.
func SetProject(project string) *Handle {
	return New(Config{}).SetProject(project)
}

// SetVersion builds a fresh handle configured with version.
func SetVersion(version string) *Handle {
	return New(Config{}).SetVersion(version)
}
