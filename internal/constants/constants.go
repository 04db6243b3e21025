package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for longer operations such as deploys.
	ExtendedHTTPTimeout = 45 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Ordinary API calls are not retried; these bound the
// opt-in retry configuration.
const (
	// DefaultRetryMax disables retries for ordinary API calls.
	DefaultRetryMax = 0

	// OptInRetryMax is the retry ceiling applied when retries are enabled
	// through configuration.
	OptInRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait between enabled retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between enabled retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Task polling defaults.
const (
	// DefaultTaskInitialWait is the first sleep between task polls.
	DefaultTaskInitialWait = 1 * time.Second

	// DefaultTaskMaxWait caps the sleep between task polls.
	DefaultTaskMaxWait = 10 * time.Second

	// DefaultTaskBackoff is the multiplicative backoff factor between polls.
	DefaultTaskBackoff = 1.5
)

// Pagination limits.
const (
	// MaxPageSize is the largest page size the server accepts; larger
	// requests are clamped to this value.
	MaxPageSize = 500

	// DefaultPageSize is the page size used when the caller does not pick one.
	DefaultPageSize = 500

	// CLIPageSize is the page size used by CLI listings.
	CLIPageSize = 50
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 5

	// BufferSize is the default buffer size for streaming channels.
	BufferSize = 100
)

// Cache sizing and lifetimes.
const (
	// DefaultCacheSize is the default cache entry limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// SettingsCacheTTL is the TTL for cached server settings.
	SettingsCacheTTL = 10 * time.Minute

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024
)

// Circuit breaker thresholds.
const (
	// CircuitBreakerThreshold is the failure count that opens the breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold closes a half-open breaker.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is how long an open breaker rejects calls.
	CircuitBreakerTimeout = 30 * time.Second
)

// Token lifetimes.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// State and status constants.
const (
	// StatusOpen indicates an open circuit breaker.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open circuit breaker.
	StatusHalfOpen = "half-open"

	// StatusClosed indicates a closed circuit breaker.
	StatusClosed = "closed"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for tabular output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// DescriptionDisplayLength is the default length for truncating descriptions.
	DescriptionDisplayLength = 60
)

// Command argument counts.
const (
	// TwoArguments indicates commands requiring exactly 2 arguments.
	TwoArguments = 2
)
