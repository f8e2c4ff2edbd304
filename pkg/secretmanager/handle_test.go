package secretmanager_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/systmms/gsecret/internal/logging"
	"github.com/systmms/gsecret/pkg/secretmanager"
)

// newTestHandle builds a handle pointed at the test server with a static
// token, wiring all construction options.
func newTestHandle(server *httptest.Server, cfg secretmanager.Config) *secretmanager.Handle {
	if cfg.Endpoint == "" {
		cfg.Endpoint = server.URL
	}
	return secretmanager.New(cfg,
		secretmanager.WithHTTPClient(server.Client()),
		secretmanager.WithTokenSource(secretmanager.StaticTokenSource("test-token")),
		secretmanager.WithLogger(logging.New(false, true)),
	)
}

// capturedRequest is one request as seen by a test server.
type capturedRequest struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

// countingTokenSource hands out a different token on every call so tests
// can prove the client asks again per request.
type countingTokenSource struct {
	mu    sync.Mutex
	calls int
}

func (s *countingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &oauth2.Token{AccessToken: fmt.Sprintf("token-%d", s.calls)}, nil
}

func TestHandleGet(t *testing.T) {
	t.Parallel()

	var captured capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			header: r.Header.Clone(),
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"projects/test-project/secrets/db-password/versions/1","payload":{"data":"c2VjcmV0"}}`)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	value, found, err := client.Get(context.Background(), "db-password")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "secret", value)

	assert.Equal(t, "GET", captured.method)
	assert.Equal(t, "/projects/test-project/secrets/db-password/versions/latest:access", captured.path)
	assert.Equal(t, "Bearer test-token", captured.header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.header.Get("Accept"))
}

func TestHandleGetNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	value, found, err := client.Get(context.Background(), "no-such-secret")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestHandleGetPermissionDenied(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"status":"PERMISSION_DENIED"}}`)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	_, found, err := client.Get(context.Background(), "db-password")
	assert.False(t, found)
	require.Error(t, err)
	assert.True(t, secretmanager.IsPermission(err))

	var perr *secretmanager.PermissionError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "db-password", perr.Name)
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
	assert.Contains(t, perr.Body, "PERMISSION_DENIED")
}

func TestHandleGetUnexpectedStatus(t *testing.T) {
	t.Parallel()

	// Everything outside {200, 403, 404} is unexpected, including other
	// 2xx codes.
	tests := []struct {
		name   string
		status int
	}{
		{name: "internal server error", status: http.StatusInternalServerError},
		{name: "bad gateway", status: http.StatusBadGateway},
		{name: "created is not a read status", status: http.StatusCreated},
		{name: "too many requests", status: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, "upstream noise")
			}))
			defer server.Close()

			client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

			_, found, err := client.Get(context.Background(), "db-password")
			assert.False(t, found)
			require.Error(t, err)

			status, ok := secretmanager.IsUnexpectedResponse(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, status)

			var uerr *secretmanager.UnexpectedResponseError
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, "access", uerr.Op)
			assert.Equal(t, "upstream noise", uerr.Body)
		})
	}
}

func TestHandleGetMissingProjectMakesNoRequest(t *testing.T) {
	t.Parallel()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{})

	_, _, err := client.Get(context.Background(), "db-password")
	require.Error(t, err)
	assert.True(t, secretmanager.IsConfiguration(err))
	assert.Contains(t, err.Error(), "project is required")
	assert.Zero(t, requests, "validation must fail before any HTTP request")
}

func TestHandleGetCallOverrideDoesNotMutateHandle(t *testing.T) {
	t.Parallel()

	var capturedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		fmt.Fprint(w, `{"payload":{"data":""}}`)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	_, _, err := client.Get(context.Background(), "db-password",
		secretmanager.Config{Version: "2"})
	require.NoError(t, err)

	assert.Equal(t, "/projects/test-project/secrets/db-password/versions/2:access", capturedPath)
	assert.Empty(t, client.Config().Version, "call override leaked into the handle")
}

func TestHandleGetEmptyPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"payload":{"data":""}}`)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	value, found, err := client.Get(context.Background(), "empty-secret")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, value)
}

func TestHandleGetMalformedResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"payload":`},
		{name: "invalid base64", body: `{"payload":{"data":"%%%not-base64%%%"}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

			_, found, err := client.Get(context.Background(), "db-password")
			assert.False(t, found)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "decode")

			// The status was the expected 200; only the body was bad.
			_, ok := secretmanager.IsUnexpectedResponse(err)
			assert.False(t, ok)
		})
	}
}

func TestHandleSet(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var calls []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		mu.Lock()
		calls = append(calls, capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   body,
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	err := client.Set(context.Background(), "db-password", "hunter2")
	require.NoError(t, err)

	require.Len(t, calls, 2, "Set must issue exactly two requests")

	create := calls[0]
	assert.Equal(t, "POST", create.method)
	assert.Equal(t, "/projects/test-project/secrets", create.path)
	assert.Equal(t, "db-password", create.query.Get("secretId"))
	assert.Equal(t, "application/json", create.header.Get("Content-Type"))
	assert.Equal(t, "Bearer test-token", create.header.Get("Authorization"))
	assert.JSONEq(t, `{"replication":{"automatic":{}}}`, string(create.body))

	addVersion := calls[1]
	assert.Equal(t, "POST", addVersion.method)
	assert.Equal(t, "/projects/test-project/secrets/db-password:addVersion", addVersion.path)
	assert.Equal(t, "application/json", addVersion.header.Get("Content-Type"))

	var payload struct {
		Payload struct {
			Data string `json:"data"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(addVersion.body, &payload))
	decoded, err := base64.StdEncoding.DecodeString(payload.Payload.Data)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(decoded))
}

func TestHandleSetToleratesExistingSecret(t *testing.T) {
	t.Parallel()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if strings.HasSuffix(r.URL.Path, ":addVersion") {
			w.WriteHeader(http.StatusOK)
			return
		}
		// The secret container already exists.
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	err := client.Set(context.Background(), "db-password", "rotated-value")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestHandleSetCreateFailureStopsSequence(t *testing.T) {
	t.Parallel()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "backend exploded")
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	err := client.Set(context.Background(), "db-password", "never-stored")
	require.Error(t, err)

	var uerr *secretmanager.UnexpectedResponseError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "create", uerr.Op)
	assert.Equal(t, http.StatusInternalServerError, uerr.StatusCode)
	assert.Equal(t, "backend exploded", uerr.Body)

	assert.Equal(t, 1, requests, "a failed create must gate the addVersion call")
}

func TestHandleSetAddVersionFailure(t *testing.T) {
	t.Parallel()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if strings.HasSuffix(r.URL.Path, ":addVersion") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	err := client.Set(context.Background(), "db-password", "rejected")
	require.Error(t, err)

	var uerr *secretmanager.UnexpectedResponseError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "add_version", uerr.Op)
	assert.Equal(t, http.StatusBadRequest, uerr.StatusCode)

	assert.Equal(t, 2, requests)
}

func TestHandleSetMissingProjectMakesNoRequest(t *testing.T) {
	t.Parallel()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{})

	err := client.Set(context.Background(), "db-password", "value")
	require.Error(t, err)
	assert.True(t, secretmanager.IsConfiguration(err))
	assert.Zero(t, requests)
}

func TestHandleChainedSettersMutateInPlace(t *testing.T) {
	t.Parallel()

	var capturedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{})

	// Both setters must return the same handle, mutated.
	chained := client.SetProject("chain-project").SetVersion("3")
	assert.Same(t, client, chained)
	assert.Equal(t, "chain-project", client.Config().Project)
	assert.Equal(t, "3", client.Config().Version)

	value, found, err := chained.Get(context.Background(), "api-key")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
	assert.Equal(t, "/projects/chain-project/secrets/api-key/versions/3:access", capturedPath)
}

func TestHandleFetchesFreshTokenPerRequest(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		tokens = append(tokens, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := &countingTokenSource{}
	client := secretmanager.New(secretmanager.Config{Project: "test-project", Endpoint: server.URL},
		secretmanager.WithHTTPClient(server.Client()),
		secretmanager.WithTokenSource(source),
	)

	_, _, err := client.Get(context.Background(), "db-password")
	require.NoError(t, err)
	_, _, err = client.Get(context.Background(), "db-password")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer token-1", "Bearer token-2"}, tokens)
	assert.Equal(t, 2, source.calls)
}

func TestHandleCreateSecretReturnsRawStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{name: "created", status: http.StatusOK},
		{name: "already exists", status: http.StatusConflict},
		{name: "server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

			status, err := client.CreateSecret(context.Background(), "db-password")
			require.NoError(t, err, "raw primitives never classify statuses")
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestHandleAddSecretVersionReturnsRawStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestHandle(server, secretmanager.Config{Project: "test-project"})

	status, err := client.AddSecretVersion(context.Background(), "db-password", "v")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleGetTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := secretmanager.New(secretmanager.Config{Project: "test-project", Endpoint: server.URL},
		secretmanager.WithTokenSource(secretmanager.StaticTokenSource("test-token")),
	)

	_, found, err := client.Get(context.Background(), "db-password")
	assert.False(t, found)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access request failed")
}
