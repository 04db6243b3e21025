package papi

import (
	"context"
	"errors"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrUseFacadeConstructor = errors.New("use github.com/pressroom-io/papi/pkg/prclient.New to create a client")
)

// PublishingClients provides access to the core publishing resource clients.
type PublishingClients interface {
	Users() UsersClient
	Groups() GroupsClient
	Content() ContentClient
	Bundles() BundlesClient
}

// ContentServiceClients provides access to per-content-item service clients.
type ContentServiceClients interface {
	Permissions() PermissionsClient
	Environment() EnvironmentClient
	Vanities() VanitiesClient
	Tags() TagsClient
}

// OperationsClients provides access to operational resource clients.
type OperationsClients interface {
	Tasks() TasksClient
	AuditLogs() AuditLogsClient
	Settings() SettingsClient
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	// Composite interfaces for resource groups
	PublishingClients
	ContentServiceClients
	OperationsClients
}

type Client interface {
	ResourceClients
}

// UsersClient operates on user accounts under /v1/users.
type UsersClient interface {
	List(ctx context.Context, params *QueryParams) ([]*User, error)
	ListAll(ctx context.Context, params *QueryParams) ([]*User, error)
	Get(ctx context.Context, guid string) (*User, error)
	GetCurrent(ctx context.Context) (*User, error)
	Update(ctx context.Context, guid string, request *UserUpdateRequest) (*User, error)
	Lock(ctx context.Context, guid string) error
	Unlock(ctx context.Context, guid string) error
	// FindBy returns the first user matching every condition; the bool
	// reports whether one was found. Not finding a user is not an error.
	FindBy(ctx context.Context, conditions map[string]any) (*User, bool, error)
}

// GroupsClient operates on groups under /v1/groups.
type GroupsClient interface {
	List(ctx context.Context, params *QueryParams) ([]*Group, error)
	Get(ctx context.Context, guid string) (*Group, error)
	Create(ctx context.Context, request *GroupCreateRequest) (*Group, error)
	Delete(ctx context.Context, guid string) error
	Members(ctx context.Context, guid string, params *QueryParams) ([]*User, error)
	AddMember(ctx context.Context, guid, userGUID string) error
	RemoveMember(ctx context.Context, guid, userGUID string) error
}

// ContentClient operates on content items under /v1/content.
type ContentClient interface {
	// List returns every content item visible to the caller; an owner guid
	// in params narrows the result server-side.
	List(ctx context.Context, params *QueryParams) ([]*ContentItem, error)
	Get(ctx context.Context, guid string) (*ContentItem, error)
	Create(ctx context.Context, request *ContentCreateRequest) (*ContentItem, error)
	Update(ctx context.Context, guid string, request *ContentUpdateRequest) (*ContentItem, error)
	Delete(ctx context.Context, guid string) error
	// Deploy starts publishing the given bundle (the active one when
	// bundleID is empty) and returns a handle on the server-side task.
	Deploy(ctx context.Context, guid, bundleID string) (*Task, error)
	FindBy(ctx context.Context, conditions map[string]any) (*ContentItem, bool, error)
}

// BundlesClient operates on a content item's uploaded bundles.
type BundlesClient interface {
	List(ctx context.Context, contentGUID string) ([]*Bundle, error)
	Get(ctx context.Context, contentGUID, bundleID string) (*Bundle, error)
	Delete(ctx context.Context, contentGUID, bundleID string) error
	// Active returns the bundle currently being served for the content
	// item; the bool reports whether one exists.
	Active(ctx context.Context, contentGUID string) (*Bundle, bool, error)
}

// TasksClient operates on server-side tasks under /v1/tasks.
type TasksClient interface {
	// Get fetches one task snapshot. first is the output offset already
	// seen; wait asks the server to long-poll up to that many seconds.
	// Zero values are omitted from the request.
	Get(ctx context.Context, taskID string, first, wait int) (*Task, error)
	// WaitFor polls the task until the server reports it finished and
	// returns the final snapshot.
	WaitFor(ctx context.Context, taskID string, opts PollOptions) (*Task, error)
}

// PermissionsClient operates on a content item's access rules.
type PermissionsClient interface {
	List(ctx context.Context, contentGUID string) ([]*Permission, error)
	Get(ctx context.Context, contentGUID, permissionID string) (*Permission, error)
	Create(ctx context.Context, contentGUID string, request *PermissionCreateRequest) (*Permission, error)
	Update(ctx context.Context, contentGUID, permissionID string, request *PermissionUpdateRequest) (*Permission, error)
	Delete(ctx context.Context, contentGUID, permissionID string) error
	FindByUser(ctx context.Context, contentGUID, principalGUID string) (*Permission, bool, error)
}

// EnvironmentClient operates on a content item's runtime environment
// variables. Values are write-only on the wire; reads return names.
type EnvironmentClient interface {
	List(ctx context.Context, contentGUID string) ([]string, error)
	// Set merges the given variables into the existing environment. A nil
	// value deletes that variable. Returns the resulting variable names.
	Set(ctx context.Context, contentGUID string, vars map[string]*string) ([]string, error)
	// Replace swaps the entire environment for the given set.
	Replace(ctx context.Context, contentGUID string, vars map[string]string) ([]string, error)
	Clear(ctx context.Context, contentGUID string) error
}

// VanitiesClient operates on vanity paths for content items.
type VanitiesClient interface {
	Get(ctx context.Context, contentGUID string) (*Vanity, error)
	Set(ctx context.Context, contentGUID string, request *VanitySetRequest) (*Vanity, error)
	Delete(ctx context.Context, contentGUID string) error
	// List returns every vanity path on the server. Requires
	// administrator privileges.
	List(ctx context.Context) ([]*Vanity, error)
}

// TagsClient operates on the tag tree and per-content tag assignments.
type TagsClient interface {
	List(ctx context.Context) ([]*Tag, error)
	Get(ctx context.Context, tagID string) (*Tag, error)
	Create(ctx context.Context, request *TagCreateRequest) (*Tag, error)
	Delete(ctx context.Context, tagID string) error
	Children(ctx context.Context, tagID string) ([]*Tag, error)
	ListContentTags(ctx context.Context, contentGUID string) ([]*Tag, error)
	AddContentTag(ctx context.Context, contentGUID, tagID string) error
	RemoveContentTag(ctx context.Context, contentGUID, tagID string) error
}

// AuditLogsClient reads the cursor-paginated audit trail.
type AuditLogsClient interface {
	// List fetches one page; the returned page carries the next cursor.
	List(ctx context.Context, params *QueryParams) (*CursorPage[AuditEntry], error)
	// All walks the whole trail. maxPages caps the walk; 0 is unbounded.
	All(ctx context.Context, params *QueryParams, maxPages int) ([]AuditEntry, error)
	ForEach(ctx context.Context, params *QueryParams, maxPages int, fn func(AuditEntry) error) error
}

// SettingsClient reads server metadata.
type SettingsClient interface {
	Get(ctx context.Context) (*ServerSettings, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a papi.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/prclient and internal/client):
//  1. APIKey: if set, every request carries "Authorization: Key <key>".
//     This is the normal way to talk to a Pressroom server.
//  2. ClientID/ClientSecret: uses the OAuth2 client_credentials grant for
//     service accounts, sending "Authorization: Bearer <token>". If a
//     RefreshToken, Username, or Password is also provided, the OAuth2
//     manager can refresh or use an alternate grant as appropriate.
//  3. Username/Password: uses the OAuth2 password grant.
//  4. AccessToken: if set (and nothing above is), it is used directly as a
//     static Bearer token.
//  5. No credentials: requests are sent without authentication, which only
//     works against endpoints that allow anonymous access.
//
// # Token URL
//
// OAuth2 grants post to TokenURL when set, otherwise to
// "<APIEndpoint>/oauth/token".
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Requests are attempted exactly once unless RetryMax is
// set; retries then apply to connection errors, 429, and 5xx responses,
// backed off between RetryWaitMin and RetryWaitMax. SkipTLSVerify is only
// honored when the environment variable PAPI_DEV_MODE is set to "true" or
// "1"; do not use it in production.
type Config struct {
	// Required fields
	// APIEndpoint: base URL for the Pressroom server (e.g.,
	// "https://press.example.com"). prclient.New normalizes this value by
	// trimming a trailing slash and adding "https://" if no scheme is
	// present.
	APIEndpoint string

	// Authentication options (provide one)
	// APIKey: a Pressroom API key, sent with the "Key" scheme.
	APIKey string
	// ClientID: OAuth2 client ID for a service-account grant.
	ClientID string
	// ClientSecret: OAuth2 client secret used with ClientID.
	ClientSecret string
	// Username: account username for the OAuth2 password grant.
	Username string
	// Password: account password for the OAuth2 password grant.
	Password string
	// RefreshToken: optional refresh token used by the OAuth2 manager to renew access tokens.
	RefreshToken string
	// AccessToken: if set, used directly as a static Bearer token.
	AccessToken string
	// TokenURL: full OAuth2 token endpoint. If empty, derived from
	// APIEndpoint.
	TokenURL string

	// Optional configurations
	// HTTPTimeout: optional default HTTP timeout where supported. Most client
	// calls should rely on context timeouts; this may be used by helpers.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (>=500, 429,
	// and connection errors). 0 disables retries entirely.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// SkipTLSVerify: if true, TLS verification is skipped, and only when
	// PAPI_DEV_MODE is set. Intended for local development.
	SkipTLSVerify bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// CacheConfig: optional cache backend for slow-moving server metadata.
	// Nil disables caching entirely.
	CacheConfig *CacheConfig
	// FetchSettingsOnInit: when true, the client fetches /server_settings
	// on initialization to warm the settings cache and fail fast on
	// unreachable endpoints.
	FetchSettingsOnInit bool
}

// NewClient creates a new Pressroom API client.
// Deprecated: Use github.com/pressroom-io/papi/pkg/prclient.New instead.
func NewClient(config *Config) (Client, error) {
	return nil, ErrUseFacadeConstructor
}

// ServerSettings represents the /server_settings response: the public
// metadata a server reports about itself.
type ServerSettings struct {
	Version            string `json:"version"              yaml:"version"`
	Build              string `json:"build"                yaml:"build"`
	About              string `json:"about"                yaml:"about"`
	Hostname           string `json:"hostname"             yaml:"hostname"`
	MailConfigured     bool   `json:"mail_configured"      yaml:"mail_configured"`
	PublicWarehouse    bool   `json:"public_warehouse"     yaml:"public_warehouse"`
	MaxBundleSizeBytes int64  `json:"max_bundle_size"      yaml:"max_bundle_size"`
	MaxBundleFiles     int    `json:"max_bundle_files"     yaml:"max_bundle_files"`
	VanitiesEnabled    bool   `json:"vanities_enabled"     yaml:"vanities_enabled"`
	Authentication     string `json:"authentication"       yaml:"authentication"`
}
