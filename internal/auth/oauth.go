package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pressroom-io/papi/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
	ErrTokenURLRequired   = errors.New("token URL is required")
)

// OAuth2Config configures the service-account token manager. Pressroom
// issues tokens from {endpoint}/oauth/token for the refresh_token,
// client_credentials, and password grants.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	AccessToken  string
	Scopes       []string
}

// OAuth2TokenManager obtains and renews Pressroom service-account tokens.
// Grant selection: refresh_token when a refresh token is held, otherwise
// client_credentials when a client ID/secret pair is configured, otherwise
// the password grant. Tokens are cached until they near expiry.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
	mu         sync.Mutex
}

// NewOAuth2TokenManager creates a token manager for the given config. An
// AccessToken in the config seeds the store so it is used until it expires.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: &http.Client{Timeout: constants.ShortHTTPTimeout},
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	} else if config.RefreshToken != "" {
		// Seed the refresh token so the first GetToken uses the
		// refresh_token grant.
		manager.store.Set(&Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	}

	return manager
}

// NewServiceAccountTokenManager creates a manager for a Pressroom service
// account using the client_credentials grant against the standard token
// endpoint.
func NewServiceAccountTokenManager(endpoint, clientID, clientSecret string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     strings.TrimSuffix(endpoint, "/") + "/oauth/token",
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewPasswordTokenManager creates a manager that signs in with a username
// and password through the password grant.
func NewPasswordTokenManager(endpoint, username, password string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL: strings.TrimSuffix(endpoint, "/") + "/oauth/token",
		Username: username,
		Password: password,
	})
}

// Scheme implements TokenManager.
func (m *OAuth2TokenManager) Scheme() string {
	return "Bearer"
}

// GetToken returns a valid access token, fetching or refreshing one when
// the cached token is missing or near expiry.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	fresh, err := m.fetchToken(ctx, token)
	if err != nil {
		return "", err
	}

	m.store.Set(fresh)

	return fresh.AccessToken, nil
}

// RefreshToken discards the cached token and obtains a new one.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh, err := m.fetchToken(ctx, m.store.Get())
	if err != nil {
		return err
	}

	m.store.Set(fresh)

	return nil
}

// SetToken manually installs an access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.store.Get()

	refreshToken := ""
	if current != nil {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})
}

// CurrentToken returns the stored token, or nil when none is held.
func (m *OAuth2TokenManager) CurrentToken() *Token {
	return m.store.Get()
}

// fetchToken picks a grant based on the available credentials and executes
// it. Caller holds the lock.
func (m *OAuth2TokenManager) fetchToken(ctx context.Context, current *Token) (*Token, error) {
	if m.config.TokenURL == "" {
		return nil, ErrTokenURLRequired
	}

	switch {
	case current != nil && current.RefreshToken != "":
		return m.requestToken(ctx, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {current.RefreshToken},
		}, false)
	case m.config.ClientID != "" && m.config.ClientSecret != "":
		return m.requestToken(ctx, url.Values{
			"grant_type": {"client_credentials"},
		}, true)
	case m.config.Username != "" && m.config.Password != "":
		return m.requestToken(ctx, url.Values{
			"grant_type": {"password"},
			"username":   {m.config.Username},
			"password":   {m.config.Password},
		}, false)
	default:
		return nil, ErrNoValidCredentials
	}
}

// requestToken posts a url-encoded grant request to the token endpoint.
// basicAuth sends the client credentials in the Authorization header, the
// form the Pressroom token service expects for client_credentials.
func (m *OAuth2TokenManager) requestToken(ctx context.Context, form url.Values, basicAuth bool) (*Token, error) {
	if len(m.config.Scopes) > 0 {
		form.Set("scope", strings.Join(m.config.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	if basicAuth {
		req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseTokenError(resp.StatusCode, body)
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}

// tokenError is the standard OAuth error body.
type tokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func parseTokenError(statusCode int, body []byte) error {
	var oauthErr tokenError
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Code != "" {
		return fmt.Errorf("token request failed (%d): %s: %s", statusCode, oauthErr.Code, oauthErr.Description)
	}

	return fmt.Errorf("token request failed (%d): %s", statusCode, strings.TrimSpace(string(body)))
}
