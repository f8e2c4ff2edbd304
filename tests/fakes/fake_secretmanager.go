package fakes

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// SecretManagerServer is an in-memory stand-in for the Secret Manager REST
// API, served over httptest. Point a client's Endpoint at URL() and it
// behaves like the real service for the three operations the client uses:
// access, create, and addVersion.
type SecretManagerServer struct {
	mu sync.Mutex

	// secrets maps "project/name" to the ordered list of version values.
	// Version numbers are 1-based; "latest" resolves to the last entry.
	secrets map[string][]string

	// requests records every request in arrival order.
	requests []RecordedRequest

	// AccessStatus, CreateStatus, and AddVersionStatus force a response
	// code for the matching operation when non-zero, instead of the
	// stored-state behavior.
	AccessStatus     int
	CreateStatus     int
	AddVersionStatus int

	server *httptest.Server
}

// RecordedRequest is one request as the fake received it.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Body          string
	Authorization string
}

// NewSecretManagerServer starts the fake. Callers must Close it.
func NewSecretManagerServer() *SecretManagerServer {
	f := &SecretManagerServer{secrets: make(map[string][]string)}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the base endpoint to put in a client Config.
func (f *SecretManagerServer) URL() string {
	return f.server.URL
}

// Close shuts the underlying test server down.
func (f *SecretManagerServer) Close() {
	f.server.Close()
}

// SetSecret creates the secret if needed and appends value as its newest
// version.
func (f *SecretManagerServer) SetSecret(project, name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := project + "/" + name
	f.secrets[key] = append(f.secrets[key], value)
}

// Versions returns the stored version values for a secret, oldest first.
func (f *SecretManagerServer) Versions(project, name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.secrets[project+"/"+name]...)
}

// Requests returns a copy of every recorded request in arrival order.
func (f *SecretManagerServer) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// RequestCount returns how many requests the fake has served.
func (f *SecretManagerServer) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *SecretManagerServer) handle(w http.ResponseWriter, r *http.Request) {
	bodyBytes, _ := io.ReadAll(r.Body)
	body := string(bodyBytes)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Body:          body,
		Authorization: r.Header.Get("Authorization"),
	})
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, ":access"):
		f.handleAccess(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":addVersion"):
		f.handleAddVersion(w, r, body)
	case r.Method == http.MethodPost:
		f.handleCreate(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// handleAccess serves GET /projects/{p}/secrets/{k}/versions/{v}:access.
func (f *SecretManagerServer) handleAccess(w http.ResponseWriter, r *http.Request) {
	if f.AccessStatus != 0 {
		writeStatus(w, f.AccessStatus)
		return
	}

	parts := strings.Split(strings.TrimSuffix(r.URL.Path, ":access"), "/")
	if len(parts) != 7 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	project, name, version := parts[2], parts[4], parts[6]

	f.mu.Lock()
	versions := f.secrets[project+"/"+name]
	f.mu.Unlock()

	index := len(versions)
	if version != "latest" {
		n, err := strconv.Atoi(version)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		index = n
	}
	if index < 1 || index > len(versions) {
		writeStatus(w, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"name": fmt.Sprintf("projects/%s/secrets/%s/versions/%d", project, name, index),
		"payload": map[string]string{
			"data": base64.StdEncoding.EncodeToString([]byte(versions[index-1])),
		},
	})
}

// handleCreate serves POST /projects/{p}/secrets?secretId={k}.
func (f *SecretManagerServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	if f.CreateStatus != 0 {
		writeStatus(w, f.CreateStatus)
		return
	}

	parts := strings.Split(r.URL.Path, "/")
	if len(parts) != 4 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	project := parts[2]
	name := r.URL.Query().Get("secretId")
	if name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	_, exists := f.secrets[project+"/"+name]
	if !exists {
		f.secrets[project+"/"+name] = []string{}
	}
	f.mu.Unlock()

	if exists {
		writeStatus(w, http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"name": fmt.Sprintf("projects/%s/secrets/%s", project, name),
	})
}

// handleAddVersion serves POST /projects/{p}/secrets/{k}:addVersion.
func (f *SecretManagerServer) handleAddVersion(w http.ResponseWriter, r *http.Request, body string) {
	if f.AddVersionStatus != 0 {
		writeStatus(w, f.AddVersionStatus)
		return
	}

	parts := strings.Split(strings.TrimSuffix(r.URL.Path, ":addVersion"), "/")
	if len(parts) != 5 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	project, name := parts[2], parts[4]

	var payload struct {
		Payload struct {
			Data string `json:"data"`
		} `json:"payload"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	value, err := base64.StdEncoding.DecodeString(payload.Payload.Data)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	key := project + "/" + name
	_, exists := f.secrets[key]
	if exists {
		f.secrets[key] = append(f.secrets[key], string(value))
	}
	count := len(f.secrets[key])
	f.mu.Unlock()

	if !exists {
		writeStatus(w, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"name": fmt.Sprintf("projects/%s/secrets/%s/versions/%d", project, name, count),
	})
}

// writeStatus emits a Secret Manager style error body alongside the code.
func writeStatus(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 400 {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":    status,
				"message": http.StatusText(status),
			},
		})
	}
}
