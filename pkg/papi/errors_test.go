package papi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		Code:        ErrorCodeNotFound,
		Message:     "The requested object does not exist.",
		HTTPStatus:  http.StatusNotFound,
		HTTPMessage: "Not Found",
	}

	assert.Equal(t, "The requested object does not exist. (error code 4, HTTP status 404 Not Found)", err.Error())
}

func TestHTTPError_Error(t *testing.T) {
	t.Run("without body", func(t *testing.T) {
		err := &HTTPError{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway"}
		assert.Equal(t, "HTTP error: 502 Bad Gateway", err.Error())
	})

	t.Run("with body", func(t *testing.T) {
		err := &HTTPError{
			StatusCode: http.StatusBadGateway,
			Status:     "502 Bad Gateway",
			Body:       []byte("<html>upstream unavailable</html>"),
		}
		assert.Equal(t, "HTTP error: 502 Bad Gateway: <html>upstream unavailable</html>", err.Error())
	})

	t.Run("long body is truncated", func(t *testing.T) {
		err := &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Status:     "500 Internal Server Error",
			Body:       []byte(strings.Repeat("x", 500)),
		}
		assert.True(t, strings.HasSuffix(err.Error(), "..."))
		assert.Less(t, len(err.Error()), 300)
	})
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "APIError not found",
			err:      &APIError{HTTPStatus: http.StatusNotFound},
			expected: true,
		},
		{
			name:     "APIError other status",
			err:      &APIError{HTTPStatus: http.StatusConflict},
			expected: false,
		},
		{
			name:     "HTTPError not found",
			err:      &HTTPError{StatusCode: http.StatusNotFound},
			expected: true,
		},
		{
			name:     "HTTPError other status",
			err:      &HTTPError{StatusCode: http.StatusBadGateway},
			expected: false,
		},
		{
			name:     "wrapped APIError",
			err:      fmt.Errorf("fetching user: %w", &APIError{HTTPStatus: http.StatusNotFound}),
			expected: true,
		},
		{
			name:     "other error type",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFound(tt.err))
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "APIError unauthorized",
			err:      &APIError{HTTPStatus: http.StatusUnauthorized},
			expected: true,
		},
		{
			name:     "APIError other status",
			err:      &APIError{HTTPStatus: http.StatusNotFound},
			expected: false,
		},
		{
			name:     "HTTPError unauthorized",
			err:      &HTTPError{StatusCode: http.StatusUnauthorized},
			expected: true,
		},
		{
			name:     "other error type",
			err:      errors.New("some error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUnauthorized(tt.err))
		})
	}
}

func TestIsForbidden(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "APIError forbidden",
			err:      &APIError{HTTPStatus: http.StatusForbidden},
			expected: true,
		},
		{
			name:     "APIError other status",
			err:      &APIError{HTTPStatus: http.StatusNotFound},
			expected: false,
		},
		{
			name:     "HTTPError forbidden",
			err:      &HTTPError{StatusCode: http.StatusForbidden},
			expected: true,
		},
		{
			name:     "other error type",
			err:      errors.New("some error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsForbidden(tt.err))
		})
	}
}

func TestParseErrorResponse(t *testing.T) {
	t.Run("pressroom error object", func(t *testing.T) {
		body := []byte(`{"code": 4, "error": "The requested object does not exist.", "payload": null}`)

		err := ParseErrorResponse(http.StatusNotFound, body)
		require.Error(t, err)

		apiErr := &APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 4, apiErr.Code)
		assert.Equal(t, "The requested object does not exist.", apiErr.Message)
		assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
		assert.Equal(t, "Not Found", apiErr.HTTPMessage)
		assert.Contains(t, apiErr.Payload, "payload")
	})

	t.Run("non-JSON body", func(t *testing.T) {
		body := []byte("<html><body>Bad Gateway</body></html>")

		err := ParseErrorResponse(http.StatusBadGateway, body)
		require.Error(t, err)

		httpErr := &HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
		assert.Equal(t, "502 Bad Gateway", httpErr.Status)
		assert.Equal(t, body, httpErr.Body)
	})

	t.Run("JSON object without error fields", func(t *testing.T) {
		body := []byte(`{"message": "nope"}`)

		err := ParseErrorResponse(http.StatusInternalServerError, body)
		require.Error(t, err)

		httpErr := &HTTPError{}
		assert.ErrorAs(t, err, &httpErr)
	})

	t.Run("JSON array body", func(t *testing.T) {
		body := []byte(`[1, 2, 3]`)

		err := ParseErrorResponse(http.StatusBadRequest, body)
		require.Error(t, err)

		httpErr := &HTTPError{}
		assert.ErrorAs(t, err, &httpErr)
	})

	t.Run("empty body", func(t *testing.T) {
		err := ParseErrorResponse(http.StatusServiceUnavailable, nil)
		require.Error(t, err)

		httpErr := &HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, "HTTP error: 503 Service Unavailable", httpErr.Error())
	})

	t.Run("classified errors satisfy helpers", func(t *testing.T) {
		notFound := ParseErrorResponse(http.StatusNotFound, []byte(`{"code": 4, "error": "gone"}`))
		assert.True(t, IsNotFound(notFound))

		unauthorized := ParseErrorResponse(http.StatusUnauthorized, []byte("nope"))
		assert.True(t, IsUnauthorized(unauthorized))
	})
}
