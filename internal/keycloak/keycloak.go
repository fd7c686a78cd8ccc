/*
Copyright (c) 2025 Red Hat Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the
License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the specific
language governing permissions and limitations under the License.
*/

// Package keycloak authenticates the test suites against the Keycloak
// instance of the cluster using the resource owner password grant, the same
// flow the fulfillment-cli uses.
package keycloak

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

const (
	// Realm is the Keycloak realm the fulfillment service trusts.
	Realm = "innabox"

	// ClientID is the public client used for the password grant.
	ClientID = "fulfillment-cli"
)

// Scopes requested with the token. The fulfillment service maps groups and
// username claims to its own access rules.
var Scopes = []string{"openid", "groups", "username"}

// Options contains the parameters of the login.
type Options struct {
	// BaseURL is the base URL of the Keycloak instance, without the realm path.
	BaseURL string

	// Username and Password are the resource owner credentials.
	Username string
	Password string

	// InsecureSkipVerify disables TLS certificate verification. Lab clusters
	// run Keycloak behind self-signed certificates.
	InsecureSkipVerify bool
}

// Session is the result of a successful login.
type Session struct {
	config *oauth2.Config
	token  *oauth2.Token
	source oauth2.TokenSource
}

// Login performs the password grant and returns a session.
func Login(ctx context.Context, opts Options) (*Session, error) {
	if opts.Username == "" || opts.Password == "" {
		return nil, fmt.Errorf("keycloak username and password are required")
	}

	config := &oauth2.Config{
		ClientID: ClientID,
		Scopes:   Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL: fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", opts.BaseURL, Realm),
		},
	}

	if opts.InsecureSkipVerify {
		httpClient := &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	token, err := config.PasswordCredentialsToken(ctx, opts.Username, opts.Password)
	if err != nil {
		return nil, fmt.Errorf("keycloak authentication failed: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("keycloak returned no access token")
	}

	return &Session{
		config: config,
		token:  token,
		source: config.TokenSource(ctx, token),
	}, nil
}

// AccessToken returns the access token obtained at login time.
func (s *Session) AccessToken() string {
	return s.token.AccessToken
}

// TokenSource returns a token source that refreshes the token when needed.
// It is intended to be wrapped into gRPC per-RPC credentials.
func (s *Session) TokenSource() oauth2.TokenSource {
	return s.source
}

// cliConfig is the on-disk configuration format of the fulfillment-cli.
type cliConfig struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Insecure     bool   `json:"insecure"`
	Address      string `json:"address"`
	TokenExpiry  string `json:"token_expiry"`
}

// DefaultCLIConfigPath returns the path the fulfillment-cli reads its
// configuration from.
func DefaultCLIConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fulfillment-cli", "config.json"), nil
}

// WriteCLIConfig writes the fulfillment-cli configuration file so that the
// external binary can reuse the session. The expiry is set an hour out, which
// matches the realm's token lifetime.
func (s *Session) WriteCLIConfig(path, address string, insecure bool) error {
	expiry := s.token.Expiry
	if expiry.IsZero() {
		expiry = time.Now().UTC().Add(time.Hour)
	}
	content := cliConfig{
		AccessToken:  s.token.AccessToken,
		RefreshToken: s.token.RefreshToken,
		Insecure:     insecure,
		Address:      address,
		TokenExpiry:  expiry.UTC().Format("2006-01-02T15:04:05Z"),
	}

	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal fulfillment-cli config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create fulfillment-cli config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write fulfillment-cli config: %w", err)
	}
	return nil
}
