package secretmanager

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/systmms/gsecret/internal/logging"
	"github.com/systmms/gsecret/internal/metrics"
)

// apiClient performs the raw Secret Manager REST calls. It holds the
// transport-level collaborators; all request-level configuration (project,
// version, endpoint) arrives per call as a resolved Config.
type apiClient struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     *logging.Logger
}

func newAPIClient() *apiClient {
	return &apiClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.New(false, false),
	}
}

// accessToken fetches a bearer token for a single request. The client never
// stores tokens: when no source was injected, Application Default
// Credentials are resolved anew for each call, so rotated credentials take
// effect on the very next request.
func (c *apiClient) accessToken(ctx context.Context) (string, error) {
	ts := c.tokens
	if ts == nil {
		var err error
		ts, err = google.DefaultTokenSource(ctx, CloudPlatformScope)
		if err != nil {
			return "", fmt.Errorf("failed to locate application default credentials: %w", err)
		}
	}

	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("failed to fetch access token: %w", err)
	}
	return tok.AccessToken, nil
}

// setHeaders sets the per-request headers. Every request authenticates with
// a bearer token and asks for JSON; writes also declare their JSON body.
func (c *apiClient) setHeaders(req *http.Request, token string, hasBody bool) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// accessSecretVersion reads one secret version.
//
// GET {endpoint}/projects/{project}/secrets/{name}/versions/{version}:access
//
// Status handling is exhaustive: 200 parses the payload, 404 means the
// secret or version does not exist (not an error), 403 is a permission
// failure, and every other status is unexpected.
func (c *apiClient) accessSecretVersion(ctx context.Context, cfg Config, name string) (string, bool, error) {
	url := fmt.Sprintf("%s/projects/%s/secrets/%s/versions/%s:access",
		cfg.Endpoint, cfg.Project, name, cfg.Version)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", false, err
	}
	c.setHeaders(req, token, false)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAPICall(opAccess, 0, time.Since(start).Seconds())
		return "", false, fmt.Errorf("access request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveAPICall(opAccess, resp.StatusCode, time.Since(start).Seconds())

	c.logger.Debug("GET %s -> %d", url, resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusOK:
		// Parsed below.
	case http.StatusNotFound:
		return "", false, nil
	case http.StatusForbidden:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", false, &PermissionError{
			Name:       name,
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	default:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", false, &UnexpectedResponseError{
			Op:         opAccess,
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}

	var accessResp struct {
		Payload struct {
			Data string `json:"data"`
		} `json:"payload"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&accessResp); err != nil {
		return "", false, fmt.Errorf("failed to decode access response: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(accessResp.Payload.Data)
	if err != nil {
		return "", false, fmt.Errorf("failed to decode secret payload: %w", err)
	}

	return string(data), true, nil
}

// createSecret creates an (empty) secret container with automatic
// replication.
//
// POST {endpoint}/projects/{project}/secrets?secretId={name}
//
// The raw status code and body are returned without classification; callers
// decide which statuses they accept (Set treats 200 and 409 as success).
func (c *apiClient) createSecret(ctx context.Context, cfg Config, name string) (int, string, error) {
	url := fmt.Sprintf("%s/projects/%s/secrets", cfg.Endpoint, cfg.Project)

	body := map[string]any{
		"replication": map[string]any{
			"automatic": map[string]any{},
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("secretId", name)
	req.URL.RawQuery = q.Encode()

	token, err := c.accessToken(ctx)
	if err != nil {
		return 0, "", err
	}
	c.setHeaders(req, token, true)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAPICall(opCreate, 0, time.Since(start).Seconds())
		return 0, "", fmt.Errorf("create request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveAPICall(opCreate, resp.StatusCode, time.Since(start).Seconds())

	c.logger.Debug("POST %s -> %d", req.URL.String(), resp.StatusCode)

	bodyBytes, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(bodyBytes), nil
}

// addSecretVersion stores value as a new version of an existing secret.
//
// POST {endpoint}/projects/{project}/secrets/{name}:addVersion
//
// As with createSecret the raw status is returned; only 200 counts as
// success for callers.
func (c *apiClient) addSecretVersion(ctx context.Context, cfg Config, name, value string) (int, string, error) {
	url := fmt.Sprintf("%s/projects/%s/secrets/%s:addVersion", cfg.Endpoint, cfg.Project, name)

	body := map[string]any{
		"payload": map[string]string{
			"data": base64.StdEncoding.EncodeToString([]byte(value)),
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal add version request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return 0, "", err
	}
	c.setHeaders(req, token, true)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAPICall(opAddVersion, 0, time.Since(start).Seconds())
		return 0, "", fmt.Errorf("add version request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveAPICall(opAddVersion, resp.StatusCode, time.Since(start).Seconds())

	c.logger.Debug("POST %s -> %d", url, resp.StatusCode)

	bodyBytes, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(bodyBytes), nil
}
