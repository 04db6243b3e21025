package constants

import "errors"

// Server configuration errors.
var (
	ErrNoServersConfigured   = errors.New("no servers configured, use 'papi login' to add one")
	ErrServerConfigNotFound  = errors.New("server configuration not found")
	ErrCurrentServerNotFound = errors.New("current server not found in configuration")
	ErrEndpointRequired      = errors.New("server endpoint is required")
	ErrNotAuthenticated      = errors.New("not authenticated, use 'papi login' first")
	ErrUnknownConfigKey      = errors.New("unknown configuration key")
)

// Command input errors.
var (
	ErrInvalidEnvAssignment = errors.New("environment variables must be given as KEY=VALUE")
	ErrInvalidPrincipalType = errors.New("principal type must be 'user' or 'group'")
	ErrAPIKeyRequired       = errors.New("an API key is required")
	ErrNoUpdatesSpecified   = errors.New("no updates specified")
)

// Operation errors.
var (
	ErrDeployFailed       = errors.New("deploy failed")
	ErrTaskFailed         = errors.New("task failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrContentNotFound    = errors.New("content item not found")
	ErrNoActiveBundle     = errors.New("content item has no active bundle")
	ErrPermissionNotFound = errors.New("no permission found for that principal")
)
