// Package http wraps the shared HTTP transport every resource client and
// the core engine talk through. Ordinary API calls are never retried; the
// retryablehttp machinery is dormant until retries are explicitly enabled
// through WithRetryConfig.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/papi"
)

// DefaultUserAgent identifies the SDK on the wire.
const DefaultUserAgent = "papi-go-client/1.0"

// TokenManager supplies the Authorization credential for each request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	Scheme() string
}

// Logger mirrors papi.Logger so the transport does not force a concrete
// logging implementation on callers.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes one API call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response carries the decoded-enough result of one API call. Body is the
// raw payload; callers unmarshal it themselves.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the shared transport. Safe for concurrent use.
type Client struct {
	baseURL      string
	tokenManager TokenManager
	httpClient   *retryablehttp.Client
	logger       Logger
	debug        bool
	userAgent    string
	interceptors *papi.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger used for debug logging.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the configured
// logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables retries for transient failures (connection
// errors, 429, and 5xx). Client errors are never retried. Without this
// option every request is attempted exactly once.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithSkipTLSVerify disables TLS certificate verification. Callers gate
// this behind an explicit development-mode check.
func WithSkipTLSVerify() Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- gated by the caller's dev-mode check
		}
	}
}

// WithInterceptors attaches an interceptor chain that runs around every
// request.
func WithInterceptors(chain *papi.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a transport rooted at baseURL. A nil tokenManager
// sends unauthenticated requests, which tests use freely.
func NewClient(baseURL string, tokenManager TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil
	// Hand exhausted responses back untouched so status >= 400 still goes
	// through the error classifier instead of a generic "giving up" error.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		httpClient:   retryClient,
		userAgent:    DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes one request. Responses with status >= 400 are returned
// together with the classified error so callers can still inspect the
// raw response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", c.userAgent)

	var bodyBytes []byte

	if req.Body != nil {
		bodyBytes, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		headers.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting auth token: %w", err)
		}

		headers.Set("Authorization", c.tokenManager.Scheme()+" "+token)
	}

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	interceptReq := &papi.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: headers,
		Body:    bodyBytes,
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteRequestInterceptors(ctx, interceptReq)
		if err != nil {
			return nil, err
		}

		// A cache interceptor may have already resolved the request.
		if cached, ok := interceptReq.Metadata[papi.CachedBodyMetadataKey].([]byte); ok {
			return &Response{StatusCode: http.StatusOK, Body: cached}, nil
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	response, err := c.execute(ctx, req.Method, fullURL, interceptReq.Headers, bodyBytes)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":   req.Method,
			"url":      fullURL,
			"status":   response.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	var resultErr error
	if response.StatusCode >= http.StatusBadRequest {
		resultErr = papi.ParseErrorResponse(response.StatusCode, response.Body)
	}

	if c.interceptors != nil {
		interceptResp := &papi.Response{
			StatusCode: response.StatusCode,
			Headers:    response.Headers,
			Body:       response.Body,
			Error:      resultErr,
		}

		err = c.interceptors.ExecuteResponseInterceptors(ctx, interceptReq, interceptResp)
		if err != nil {
			return response, err
		}

		// Interceptors may rewrite the response (304 resolution).
		response.StatusCode = interceptResp.StatusCode
		response.Body = interceptResp.Body
	}

	return response, resultErr
}

// execute performs the network round trip.
func (c *Client) execute(ctx context.Context, method, fullURL string, headers http.Header, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// buildURL joins the base URL with a path relative to the API root.
// Absolute URLs are rejected so a poisoned record can never redirect a
// request off-host.
func (c *Client) buildURL(path string, query url.Values) (string, error) {
	if strings.Contains(path, "://") {
		return "", fmt.Errorf("%q: %w", path, papi.ErrAbsolutePath)
	}

	full := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	return full, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
