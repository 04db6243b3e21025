package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/papi"
)

const settingsPath = "v1/server_settings"

// SettingsClient implements the papi.SettingsClient interface. Server
// settings change rarely, so responses are cached when a cache manager
// is configured.
type SettingsClient struct {
	session papi.Session
	cache   *papi.CacheManager
}

// NewSettingsClient creates a new settings client. cache may be nil, in
// which case every Get hits the server.
func NewSettingsClient(session papi.Session, cache *papi.CacheManager) *SettingsClient {
	return &SettingsClient{
		session: session,
		cache:   cache,
	}
}

// Get retrieves the server's settings and capabilities.
func (c *SettingsClient) Get(ctx context.Context) (*papi.ServerSettings, error) {
	var cacheKey string

	if c.cache != nil {
		cacheKey = c.cache.GetCacheKey(nethttp.MethodGet, settingsPath, nil)

		data, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			return decodeSettings(data)
		}
	}

	body, err := c.session.Get(ctx, settingsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("getting server settings: %w", err)
	}

	settings, err := decodeSettings(body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		// Storage failures are not worth failing the read over.
		_ = c.cache.Set(ctx, cacheKey, body, constants.SettingsCacheTTL)
	}

	return settings, nil
}

func decodeSettings(body []byte) (*papi.ServerSettings, error) {
	var settings papi.ServerSettings

	err := json.Unmarshal(body, &settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server settings response: %w", err)
	}

	return &settings, nil
}
