// Package auth supplies OAuth2 token sources for the Secret Manager client
// beyond Application Default Credentials: tokens stored in the OS keyring
// and tokens taken from the environment.
//
// Every source re-reads its backing store on each Token call. The client
// never caches credentials, so a token rotated in the keyring is picked up
// by the very next API request.
package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

// Keyring coordinates for the CLI's stored token.
const (
	// KeyringService is the service name under which gsecret stores tokens
	// in the OS keyring (Secret Service on Linux, Keychain on macOS,
	// Credential Manager on Windows).
	KeyringService = "gsecret"

	// KeyringAccount is the account name for the OAuth2 access token.
	KeyringAccount = "oauth-token"
)

// KeyringError describes a failed keyring operation.
type KeyringError struct {
	Op      string // "get", "store", or "clear"
	Service string
	Account string
	Err     error
}

func (e *KeyringError) Error() string {
	return fmt.Sprintf("keyring %s for %s/%s: %v", e.Op, e.Service, e.Account, e.Err)
}

func (e *KeyringError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the keyring has no stored token.
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}

// keyringTokenSource reads the token from the OS keyring on every call.
type keyringTokenSource struct {
	service string
	account string
}

// FromKeyring returns a token source backed by the OS keyring entry for
// service/account. Nothing is read until Token is called, and every call
// reads again.
func FromKeyring(service, account string) oauth2.TokenSource {
	return &keyringTokenSource{service: service, account: account}
}

func (s *keyringTokenSource) Token() (*oauth2.Token, error) {
	secret, err := keyring.Get(s.service, s.account)
	if err != nil {
		return nil, &KeyringError{Op: "get", Service: s.service, Account: s.account, Err: err}
	}
	return &oauth2.Token{AccessToken: secret}, nil
}

// Store writes token into the OS keyring, replacing any previous entry.
func Store(service, account, token string) error {
	if err := keyring.Set(service, account, token); err != nil {
		return &KeyringError{Op: "store", Service: service, Account: account, Err: err}
	}
	return nil
}

// Clear removes the stored token. Clearing an absent entry is not an error,
// so logout stays idempotent.
func Clear(service, account string) error {
	err := keyring.Delete(service, account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return &KeyringError{Op: "clear", Service: service, Account: account, Err: err}
	}
	return nil
}

// envTokenSource reads a token from an environment variable on every call.
type envTokenSource struct {
	name string
}

// FromEnv returns a token source that reads the named environment variable
// on each Token call. An empty or unset variable is an error at call time,
// not at construction.
func FromEnv(name string) oauth2.TokenSource {
	return &envTokenSource{name: name}
}

func (s *envTokenSource) Token() (*oauth2.Token, error) {
	value := os.Getenv(s.name)
	if value == "" {
		return nil, fmt.Errorf("environment variable %s is empty or unset", s.name)
	}
	return &oauth2.Token{AccessToken: value}, nil
}
