// Package prclient provides the main entry point for creating Pressroom API clients
package prclient

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pressroom-io/papi/internal/client"
	"github.com/pressroom-io/papi/pkg/papi"
)

// New creates a new Pressroom API client from config.
func New(ctx context.Context, config *papi.Config) (papi.Client, error) {
	if config == nil {
		return nil, papi.ErrConfigRequired
	}

	endpoint, err := normalizeEndpoint(config.APIEndpoint)
	if err != nil {
		return nil, err
	}

	config.APIEndpoint = endpoint

	if config.SkipTLSVerify && !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set PAPI_DEV_MODE=true)", papi.ErrSkipTLSOnlyInDev)
	}

	apiClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return apiClient, nil
}

// normalizeEndpoint trims a trailing slash, defaults the scheme to https,
// and rejects URLs without a host.
func normalizeEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		return "", papi.ErrEndpointRequired
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	endpoint = strings.TrimSuffix(endpoint, "/")

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("%q: %w", endpoint, papi.ErrNoHostInURL)
	}

	return endpoint, nil
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("PAPI_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// NewWithEndpoint creates a new client with just an API endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (papi.Client, error) {
	return New(ctx, &papi.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithAPIKey creates a new client authenticating with a Pressroom API
// key.
func NewWithAPIKey(ctx context.Context, endpoint, apiKey string) (papi.Client, error) {
	return New(ctx, &papi.Config{
		APIEndpoint: endpoint,
		APIKey:      apiKey,
	})
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(ctx context.Context, endpoint, token string) (papi.Client, error) {
	return New(ctx, &papi.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithServiceAccount creates a new client using OAuth2 client
// credentials.
func NewWithServiceAccount(ctx context.Context, endpoint, clientID, clientSecret string) (papi.Client, error) {
	return New(ctx, &papi.Config{
		APIEndpoint:  endpoint,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a new client using username/password
// authentication.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (papi.Client, error) {
	return New(ctx, &papi.Config{
		APIEndpoint: endpoint,
		Username:    username,
		Password:    password,
	})
}
