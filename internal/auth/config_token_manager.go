package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister saves refreshed tokens back to wherever the credentials
// came from. The CLI implements it over its config file.
type ConfigPersister interface {
	UpdateServerToken(serverName, token string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager decorates an OAuth2TokenManager so that every token
// the manager obtains is written back through a ConfigPersister. The CLI
// uses it to keep ~/.papi/config.yml current across refreshes.
type ConfigTokenManager struct {
	oauth      *OAuth2TokenManager
	persister  ConfigPersister
	serverName string

	mu            sync.Mutex
	lastPersisted string
	lastExpiry    time.Time
}

// NewConfigTokenManager wraps an OAuth manager for the named server entry.
// A known initial token seeds the OAuth manager so it is reused until it
// expires.
func NewConfigTokenManager(config *OAuth2Config, persister ConfigPersister, serverName, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	oauth := NewOAuth2TokenManager(config)

	if initialToken != "" {
		oauth.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		oauth:         oauth,
		persister:     persister,
		serverName:    serverName,
		lastPersisted: initialToken,
		lastExpiry:    initialExpiry,
	}
}

// Scheme implements TokenManager.
func (m *ConfigTokenManager) Scheme() string {
	return m.oauth.Scheme()
}

// GetToken returns a valid access token, persisting it when the underlying
// manager refreshed it since the last persist.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.oauth.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a refresh and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.oauth.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken installs a token in the underlying manager without persisting;
// the token came from the config in the first place.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.oauth.SetToken(token, expiresAt)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastPersisted = token
	m.lastExpiry = expiresAt
}

// TokenExpiry returns the current token's expiration time, zero when no
// token is held.
func (m *ConfigTokenManager) TokenExpiry() time.Time {
	token := m.oauth.CurrentToken()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

// ExpiringSoon reports whether the current token expires within the given
// duration. A missing token counts as expiring.
func (m *ConfigTokenManager) ExpiringSoon(within time.Duration) bool {
	token := m.oauth.CurrentToken()
	if token == nil {
		return true
	}

	return time.Now().Add(within).After(token.ExpiresAt)
}

// persistIfChanged writes the current token through the persister when it
// differs from the last persisted one. Persistence failures are reported
// on stderr but never fail the request that triggered them.
func (m *ConfigTokenManager) persistIfChanged() {
	token := m.oauth.CurrentToken()
	if token == nil {
		return
	}

	m.mu.Lock()
	changed := token.AccessToken != m.lastPersisted || !token.ExpiresAt.Equal(m.lastExpiry)
	if changed {
		m.lastPersisted = token.AccessToken
		m.lastExpiry = token.ExpiresAt
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	err := m.persist(token)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
	}
}

func (m *ConfigTokenManager) persist(token *Token) error {
	if m.persister == nil {
		return ErrNoConfigPersister
	}

	err := m.persister.UpdateServerToken(m.serverName, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update server token: %w", err)
	}

	return nil
}
