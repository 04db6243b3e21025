package papi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error returned by the Pressroom API.
// The server reports failures as a JSON object carrying a Pressroom error
// code and a human-readable message; the HTTP status the body arrived with
// is recorded alongside.
type APIError struct {
	Code        int            `json:"code"  yaml:"code"`
	Message     string         `json:"error" yaml:"error"`
	HTTPStatus  int            `json:"-"     yaml:"-"`
	HTTPMessage string         `json:"-"     yaml:"-"`
	Payload     map[string]any `json:"-"     yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (error code %d, HTTP status %d %s)", e.Message, e.Code, e.HTTPStatus, e.HTTPMessage)
}

// HTTPError represents a failed response whose body was not a Pressroom
// error object, such as an HTML page from an intermediary proxy.
type HTTPError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Status     string `json:"status"      yaml:"status"`
	Body       []byte `json:"-"           yaml:"-"`
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("HTTP error: %s", e.Status)
	}

	return fmt.Sprintf("HTTP error: %s: %s", e.Status, bodySnippet(e.Body))
}

// maxBodySnippet bounds how much of a non-JSON error body is echoed into
// error strings.
const maxBodySnippet = 200

func bodySnippet(body []byte) string {
	if len(body) <= maxBodySnippet {
		return string(body)
	}

	return string(body[:maxBodySnippet]) + "..."
}

// Pressroom API error codes.
const (
	ErrorCodeInvalidRequest  = 1
	ErrorCodeUnauthorized    = 2
	ErrorCodeForbidden       = 3
	ErrorCodeNotFound        = 4
	ErrorCodeConflict        = 5
	ErrorCodeTooManyRequests = 6
	ErrorCodeInternal        = 7
	ErrorCodeInvalidBundle   = 8
	ErrorCodeTaskNotFound    = 9
	ErrorCodeLicenseLimit    = 10
)

// Common static errors that can be wrapped with context.
var (
	ErrAttributeMissing         = errors.New("attribute not present")
	ErrAttributeType            = errors.New("attribute has unexpected type")
	ErrUIDKeyMissing            = errors.New("record is missing its uid key")
	ErrTooManyPages             = errors.New("page limit exceeded")
	ErrNotJSONObject            = errors.New("body is not a JSON object")
	ErrNotJSONArray             = errors.New("body is not a JSON array")
	ErrAbsolutePath             = errors.New("path must be relative to the API root")
	ErrNoMoreItems              = errors.New("no more items")
	ErrNoMorePages              = errors.New("no more pages")
	ErrCircuitBreakerOpen       = errors.New("circuit breaker is open")
	ErrConfigRequired           = errors.New("config is required")
	ErrEndpointRequired         = errors.New("API endpoint is required")
	ErrSkipTLSOnlyInDev         = errors.New("skipTLS is only allowed in development environments")
	ErrNotAuthenticated         = errors.New("not authenticated")
	ErrStaticKeyCannotRefresh   = errors.New("static API key cannot be refreshed")
	ErrUnknownConfigKey         = errors.New("unknown configuration key")
	ErrCredentialsCannotUnset   = errors.New("credential fields cannot be unset via config command")
	ErrNoEndpointsConfigured    = errors.New("no endpoints configured")
	ErrCurrentEndpointNotFound  = errors.New("current endpoint not found in configuration")
	ErrEndpointAlreadyExists    = errors.New("endpoint already exists")
	ErrEndpointNotFound         = errors.New("endpoint not found")
	ErrCannotDeleteOnlyEndpoint = errors.New("cannot delete the only configured endpoint")
	ErrNameOrEndpointRequired   = errors.New("endpoint name or URL is required")
	ErrNoHostInURL              = errors.New("no host specified in URL")
	ErrInvalidFilePath          = errors.New("invalid file path")
	ErrPathTraversalAttempt     = errors.New("potential path traversal attempt")
	ErrUserNotFound             = errors.New("user not found")
	ErrGroupNotFound            = errors.New("group not found")
	ErrContentNotFound          = errors.New("content item not found")
	ErrBundleNotFound           = errors.New("bundle not found")
	ErrVanityNotFound           = errors.New("vanity URL not found")
	ErrInvalidClientType        = errors.New("invalid client type")
	ErrTaskIDMissing            = errors.New("server response carried no task id")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus == http.StatusNotFound
	}

	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus == http.StatusUnauthorized
	}

	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusUnauthorized
	}

	return false
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus == http.StatusForbidden
	}

	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusForbidden
	}

	return false
}

// ParseErrorResponse classifies a failed response body. A JSON object
// carrying both "code" and "error" produces an *APIError with the full
// payload attached; anything else produces an *HTTPError wrapping the raw
// body.
func ParseErrorResponse(statusCode int, body []byte) error {
	status := fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return &HTTPError{StatusCode: statusCode, Status: status, Body: body}
	}

	code, hasCode := payload["code"].(float64)
	message, hasMessage := payload["error"].(string)

	if !hasCode || !hasMessage {
		return &HTTPError{StatusCode: statusCode, Status: status, Body: body}
	}

	return &APIError{
		Code:        int(code),
		Message:     message,
		HTTPStatus:  statusCode,
		HTTPMessage: http.StatusText(statusCode),
		Payload:     payload,
	}
}
