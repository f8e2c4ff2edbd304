// Package fakes provides test doubles for gsecret's remote dependencies.
//
// The client talks plain HTTP, so the main double is an httptest-backed
// Secret Manager API rather than an interface mock. It keeps secrets and
// versions in memory, records every request in order, and has per-operation
// status knobs for forcing error responses.
//
// Usage:
//
//	fake := fakes.NewSecretManagerServer()
//	defer fake.Close()
//	fake.SetSecret("my-project", "api-key", "hunter2")
//
//	handle := secretmanager.New(secretmanager.Config{
//	    Project:  "my-project",
//	    Endpoint: fake.URL(),
//	}, secretmanager.WithTokenSource(secretmanager.StaticTokenSource("t")))
//	// Test client operations...
package fakes
