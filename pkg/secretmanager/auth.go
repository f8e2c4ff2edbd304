package secretmanager

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CloudPlatformScope is the OAuth2 scope Secret Manager requires.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// DefaultTokenSource resolves Application Default Credentials: the
// GOOGLE_APPLICATION_CREDENTIALS file, gcloud user credentials, or the
// metadata server on GCE/GKE.
func DefaultTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	ts, err := google.DefaultTokenSource(ctx, CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to locate application default credentials: %w", err)
	}
	return ts, nil
}

// StaticTokenSource wraps a fixed access token. Intended for short-lived
// tokens minted elsewhere (CI, `gcloud auth print-access-token`).
func StaticTokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}
