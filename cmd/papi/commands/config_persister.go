package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/pressroom-io/papi/internal/constants"
)

// ConfigPersister implements the auth.ConfigPersister interface over the
// CLI config file, so refreshed tokens survive across invocations.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateServerToken updates the saved token and related metadata for the
// named server.
func (p *ConfigPersister) UpdateServerToken(serverName, token string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	server, exists := config.Servers[serverName]
	if !exists {
		return fmt.Errorf("server '%s': %w", serverName, constants.ErrServerConfigNotFound)
	}

	server.Token = token
	if !expiresAt.IsZero() {
		server.TokenExpiresAt = &expiresAt
	}

	if refreshToken != "" {
		server.RefreshToken = refreshToken
	}

	now := time.Now()
	server.LastRefreshed = &now

	return saveConfigStruct(config)
}
