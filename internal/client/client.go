// Package client is the concrete implementation of papi.Client: one
// resource client per endpoint family, all sharing a single transport and
// token manager. Construct it through pkg/prclient.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pressroom-io/papi/internal/auth"
	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/internal/http"
	"github.com/pressroom-io/papi/pkg/papi"
)

// Static errors for err113 compliance.
var (
	ErrAPIEndpointRequired      = errors.New("API endpoint is required")
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
)

// Client implements the papi.Client interface.
type Client struct {
	httpClient   *http.Client
	session      papi.Session
	tokenManager auth.TokenManager
	baseURL      string
	logger       papi.Logger
	cacheManager *papi.CacheManager

	// Resource clients
	users       papi.UsersClient
	groups      papi.GroupsClient
	content     papi.ContentClient
	bundles     papi.BundlesClient
	tasks       papi.TasksClient
	permissions papi.PermissionsClient
	environment papi.EnvironmentClient
	vanities    papi.VanitiesClient
	tags        papi.TagsClient
	auditLogs   papi.AuditLogsClient
	settings    papi.SettingsClient
}

// createTokenManager creates the appropriate token manager based on config.
func createTokenManager(config *papi.Config) auth.TokenManager {
	if config.APIKey != "" {
		return &apiKeyTokenManager{key: config.APIKey}
	}

	if config.ClientID != "" && config.ClientSecret != "" {
		return createOAuth2TokenManager(config)
	}

	if config.Username != "" && config.Password != "" {
		return createOAuth2TokenManager(config)
	}

	if config.AccessToken != "" {
		return &staticTokenManager{token: config.AccessToken}
	}

	return nil // No authentication
}

// createOAuth2TokenManager builds the OAuth manager for service-account or
// password credentials.
func createOAuth2TokenManager(config *papi.Config) auth.TokenManager {
	oauthConfig := &auth.OAuth2Config{
		TokenURL:     getTokenURL(config),
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.AccessToken,
	}

	return auth.NewOAuth2TokenManager(oauthConfig)
}

// getTokenURL returns the token URL from config or the endpoint default.
func getTokenURL(config *papi.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return config.APIEndpoint + "/oauth/token"
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *papi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	// Honored only in explicit development environments; pkg/prclient
	// rejects the flag outright outside of them.
	if config.SkipTLSVerify && devModeEnabled() {
		httpOpts = append(httpOpts, http.WithSkipTLSVerify())
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// devModeEnabled reports whether the PAPI_DEV_MODE escape hatch is set.
func devModeEnabled() bool {
	mode := os.Getenv("PAPI_DEV_MODE")

	return mode == "true" || mode == "1"
}

// New creates a new Pressroom API client.
func New(ctx context.Context, config *papi.Config) (*Client, error) {
	return NewWithTokenManager(ctx, config, createTokenManager(config))
}

// NewWithTokenManager creates a new Pressroom API client with a custom
// token manager.
func NewWithTokenManager(ctx context.Context, config *papi.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config.APIEndpoint == "" {
		return nil, ErrAPIEndpointRequired
	}

	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(config.APIEndpoint, tokenManager, httpOpts...)

	client := &Client{
		httpClient:   httpClient,
		session:      &session{httpClient: httpClient},
		tokenManager: tokenManager,
		baseURL:      config.APIEndpoint,
		logger:       config.Logger,
	}

	if config.CacheConfig != nil {
		cache, err := papi.NewCacheFromConfig(config.CacheConfig)
		if err != nil {
			return nil, fmt.Errorf("building cache: %w", err)
		}

		client.cacheManager = papi.NewCacheManager(cache, papi.DefaultCachingPolicy())
	}

	client.initializeResourceClients()

	if config.FetchSettingsOnInit {
		_, err := client.settings.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching server settings: %w", err)
		}
	}

	return client, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// Session returns the papi.Session the resource engine runs over, for
// callers that build their own handles and collections.
func (c *Client) Session() papi.Session {
	return c.session
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// Resource client accessors

// Users implements papi.Client.Users.
func (c *Client) Users() papi.UsersClient {
	return c.users
}

// Groups implements papi.Client.Groups.
func (c *Client) Groups() papi.GroupsClient {
	return c.groups
}

// Content implements papi.Client.Content.
func (c *Client) Content() papi.ContentClient {
	return c.content
}

// Bundles implements papi.Client.Bundles.
func (c *Client) Bundles() papi.BundlesClient {
	return c.bundles
}

// Tasks implements papi.Client.Tasks.
func (c *Client) Tasks() papi.TasksClient {
	return c.tasks
}

// Permissions implements papi.Client.Permissions.
func (c *Client) Permissions() papi.PermissionsClient {
	return c.permissions
}

// Environment implements papi.Client.Environment.
func (c *Client) Environment() papi.EnvironmentClient {
	return c.environment
}

// Vanities implements papi.Client.Vanities.
func (c *Client) Vanities() papi.VanitiesClient {
	return c.vanities
}

// Tags implements papi.Client.Tags.
func (c *Client) Tags() papi.TagsClient {
	return c.tags
}

// AuditLogs implements papi.Client.AuditLogs.
func (c *Client) AuditLogs() papi.AuditLogsClient {
	return c.auditLogs
}

// Settings implements papi.Client.Settings.
func (c *Client) Settings() papi.SettingsClient {
	return c.settings
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.users = NewUsersClient(c.session)
	c.groups = NewGroupsClient(c.session)
	c.content = NewContentClient(c.session)
	c.bundles = NewBundlesClient(c.session)
	c.tasks = NewTasksClient(c.session)
	c.permissions = NewPermissionsClient(c.session)
	c.environment = NewEnvironmentClient(c.session)
	c.vanities = NewVanitiesClient(c.session)
	c.tags = NewTagsClient(c.session)
	c.auditLogs = NewAuditLogsClient(c.session)
	c.settings = NewSettingsClient(c.session, c.cacheManager)
}

// session adapts the transport to papi.Session. The transport has already
// classified HTTP-level errors by the time bodies come back.
type session struct {
	httpClient *http.Client
}

func (s *session) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := s.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (s *session) Post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	resp, err := s.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (s *session) Put(ctx context.Context, path string, body interface{}) ([]byte, error) {
	resp, err := s.httpClient.Put(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (s *session) Patch(ctx context.Context, path string, body interface{}) ([]byte, error) {
	resp, err := s.httpClient.Patch(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (s *session) Delete(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.httpClient.Delete(ctx, path)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// apiKeyTokenManager supplies a static Pressroom API key.
type apiKeyTokenManager struct {
	key string
}

func (m *apiKeyTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.key, nil
}

func (m *apiKeyTokenManager) RefreshToken(ctx context.Context) error {
	return papi.ErrStaticKeyCannotRefresh
}

func (m *apiKeyTokenManager) SetToken(token string, expiresAt time.Time) {
	m.key = token
}

func (m *apiKeyTokenManager) Scheme() string {
	return "Key"
}

// staticTokenManager supplies a fixed Bearer token.
type staticTokenManager struct {
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

func (m *staticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenCannotRefresh
}

func (m *staticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

func (m *staticTokenManager) Scheme() string {
	return "Bearer"
}

// loggerAdapter adapts papi.Logger to http.Logger.
type loggerAdapter struct {
	logger papi.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
