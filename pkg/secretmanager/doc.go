// Package secretmanager is a small client for Google Secret Manager built
// directly on its HTTP REST API.
//
// It deliberately avoids the generated Google Cloud SDK: the full surface
// here is three REST calls, and speaking HTTP directly keeps the dependency
// footprint small and every request inspectable. The package reads single
// secret versions and writes new ones; it does not list, delete, rotate, or
// manage IAM.
//
// # Configuration Layers
//
// Every operation resolves its effective configuration from three ordered
// layers:
//
//	library defaults  <  handle config  <  call-time overrides
//	(version=latest,     (New / SetProject    (variadic ...Config on
//	 endpoint)            / SetVersion)        Get, Set, ...)
//
// For each field the right-most non-empty value wins; an empty field in a
// later layer never clears an earlier one. Resolution happens inside each
// call, never at construction, and validates exactly one rule: a project
// must be present. A missing project fails with *ConfigurationError before
// any token fetch or network traffic.
//
// # Two Surfaces
//
// The stateful surface is a Handle, created once and reused:
//
//	client := secretmanager.New(secretmanager.Config{Project: "my-project"})
//	value, found, err := client.Get(ctx, "db-password")
//
// SetProject and SetVersion mutate the handle in place and return the same
// handle, so reconfiguration chains:
//
//	client.SetProject("other-project").SetVersion("3")
//
// Call-time overrides layer on top without mutating the handle:
//
//	value, found, err = client.Get(ctx, "db-password",
//	    secretmanager.Config{Version: "2"})
//
// The stateless surface mirrors the same operations as package functions.
// Each call builds a fresh handle, and the package-level setters return it,
// which makes one-off chained calls read naturally:
//
//	value, found, err := secretmanager.SetProject("my-project").
//	    SetVersion("3").
//	    Get(ctx, "db-password")
//
// # Reads
//
// Get maps HTTP statuses explicitly:
//
//   - 200: the payload is decoded (JSON envelope, base64 data) and returned.
//   - 404: the secret or version does not exist. This is absence, not an
//     error: Get returns ("", false, nil).
//   - 403: *PermissionError.
//   - anything else: *UnexpectedResponseError carrying the status code.
//
// # Writes
//
// Set performs exactly two requests in order: create the secret container
// (200 created and 409 already-exists both count as success), then add the
// value as a new version (200 only). A failure in the first step stops the
// sequence before the second request. The pair is not atomic, but re-running
// Set is safe because the create step tolerates 409.
//
// CreateSecret and AddSecretVersion expose the two write calls individually,
// returning the raw status code for callers that classify statuses
// themselves.
//
// # Authentication
//
// Requests carry a bearer token from an oauth2.TokenSource. The source is
// consulted fresh for every request; this package never memoizes tokens, so
// credential rotation in the source is visible immediately. Without
// WithTokenSource, Application Default Credentials are resolved per call:
//
//	client := secretmanager.New(cfg,
//	    secretmanager.WithTokenSource(secretmanager.StaticTokenSource(tok)))
//
// # Observability
//
// Each REST call is recorded through internal/metrics (operation, status,
// duration) once metrics are initialized, and debug-logged with method, URL
// and status. Secret values never appear in logs.
package secretmanager
