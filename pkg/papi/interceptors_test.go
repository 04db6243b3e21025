package papi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom-io/papi/pkg/papi"
)

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := papi.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *papi.Request) error {
		executionOrder = append(executionOrder, "first")
		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *papi.Request) error {
		executionOrder = append(executionOrder, "second")
		return nil
	})

	req := &papi.Request{
		Method: "GET",
		Path:   "/test",
	}

	err := chain.ExecuteRequestInterceptors(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := papi.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *papi.Request, resp *papi.Response) error {
		executionOrder = append(executionOrder, "first")
		return nil
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *papi.Request, resp *papi.Response) error {
		executionOrder = append(executionOrder, "second")
		return nil
	})

	req := &papi.Request{
		Method: "GET",
		Path:   "/test",
	}
	resp := &papi.Response{
		StatusCode: 200,
	}

	err := chain.ExecuteResponseInterceptors(ctx, req, resp)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_RequestInterceptorError(t *testing.T) {
	chain := papi.NewInterceptorChain()
	ctx := context.Background()

	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *papi.Request) error {
		return assert.AnError
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *papi.Request) error {
		called = true
		return nil
	})

	err := chain.ExecuteRequestInterceptors(ctx, &papi.Request{Method: "GET", Path: "/test"})
	require.Error(t, err)
	require.ErrorIs(t, err, assert.AnError)

	// A failing interceptor stops the chain.
	assert.False(t, called)
}

func TestHeaderInterceptor(t *testing.T) {
	headers := map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	}

	interceptor := papi.HeaderInterceptor(headers)
	ctx := context.Background()
	req := &papi.Request{
		Method: "GET",
		Path:   "/test",
	}

	err := interceptor(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-ID"))
}

func TestAuthenticationInterceptor(t *testing.T) {
	keyProvider := func(ctx context.Context) (string, error) {
		return "test-key", nil
	}

	interceptor := papi.AuthenticationInterceptor(keyProvider)
	ctx := context.Background()
	req := &papi.Request{
		Method: "GET",
		Path:   "/test",
	}

	err := interceptor(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "Key test-key", req.Headers.Get("Authorization"))
}

func TestAuthenticationInterceptor_ProviderError(t *testing.T) {
	keyProvider := func(ctx context.Context) (string, error) {
		return "", assert.AnError
	}

	interceptor := papi.AuthenticationInterceptor(keyProvider)
	err := interceptor(context.Background(), &papi.Request{Method: "GET", Path: "/test"})
	require.Error(t, err)
	require.ErrorIs(t, err, assert.AnError)
}

func TestMetricsCollector(t *testing.T) {
	collector := papi.NewMetricsCollector()

	var notifiedEndpoint string
	var notifiedMetrics *papi.Metrics

	collector.SetOnChange(func(endpoint string, metrics *papi.Metrics) {
		notifiedEndpoint = endpoint
		notifiedMetrics = metrics
	})

	requestInterceptor := papi.MetricsRequestInterceptor(collector)
	responseInterceptor := papi.MetricsResponseInterceptor(collector)

	ctx := context.Background()
	req := &papi.Request{
		Method: "GET",
		Path:   "/v1/content",
	}

	err := requestInterceptor(ctx, req)
	require.NoError(t, err)

	// Simulate some latency
	time.Sleep(10 * time.Millisecond)

	resp := &papi.Response{
		StatusCode: 200,
	}
	err = responseInterceptor(ctx, req, resp)
	require.NoError(t, err)

	assert.Equal(t, "GET /v1/content", notifiedEndpoint)
	require.NotNil(t, notifiedMetrics)
	assert.Equal(t, int64(1), notifiedMetrics.TotalRequests)
	assert.Equal(t, int64(0), notifiedMetrics.TotalErrors)
	assert.Positive(t, notifiedMetrics.AverageLatency)

	// A failing response counts as an error.
	req2 := &papi.Request{
		Method: "GET",
		Path:   "/v1/content",
	}
	resp2 := &papi.Response{
		StatusCode: 500,
	}
	err = responseInterceptor(ctx, req2, resp2)
	require.NoError(t, err)

	metrics := collector.GetMetrics("GET /v1/content")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)

	// Unknown endpoints have no metrics.
	assert.Nil(t, collector.GetMetrics("GET /v1/users"))
}

func TestCircuitBreaker(t *testing.T) {
	config := &papi.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          100 * time.Millisecond,
		SuccessThreshold: 1,
	}
	breaker := papi.NewCircuitBreaker(config)

	requestInterceptor := papi.CircuitBreakerRequestInterceptor(breaker)
	responseInterceptor := papi.CircuitBreakerResponseInterceptor(breaker)

	ctx := context.Background()
	req := &papi.Request{
		Method: "GET",
		Path:   "/test",
	}

	// Circuit starts closed.
	err := requestInterceptor(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "closed", breaker.State())

	// Two failures reach the threshold.
	for i := 0; i < 2; i++ {
		resp := &papi.Response{StatusCode: 500}
		err = responseInterceptor(ctx, req, resp)
		require.NoError(t, err)
	}

	assert.Equal(t, "open", breaker.State())

	err = requestInterceptor(ctx, req)
	require.Error(t, err)
	require.ErrorIs(t, err, papi.ErrCircuitBreakerOpen)
	assert.Contains(t, err.Error(), "circuit breaker is open")

	// After the timeout the breaker admits a probe request.
	time.Sleep(150 * time.Millisecond)

	err = requestInterceptor(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "half-open", breaker.State())

	// One success closes it again.
	resp := &papi.Response{StatusCode: 200}
	err = responseInterceptor(ctx, req, resp)
	require.NoError(t, err)

	err = requestInterceptor(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "closed", breaker.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	config := &papi.CircuitBreakerConfig{
		Threshold:        1,
		Timeout:          50 * time.Millisecond,
		SuccessThreshold: 2,
	}
	breaker := papi.NewCircuitBreaker(config)

	requestInterceptor := papi.CircuitBreakerRequestInterceptor(breaker)
	responseInterceptor := papi.CircuitBreakerResponseInterceptor(breaker)

	ctx := context.Background()
	req := &papi.Request{Method: "GET", Path: "/test"}

	err := responseInterceptor(ctx, req, &papi.Response{StatusCode: 503})
	require.NoError(t, err)
	assert.Equal(t, "open", breaker.State())

	time.Sleep(80 * time.Millisecond)

	err = requestInterceptor(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "half-open", breaker.State())

	// A failure during the probe reopens immediately.
	err = responseInterceptor(ctx, req, &papi.Response{StatusCode: 500})
	require.NoError(t, err)
	assert.Equal(t, "open", breaker.State())
}

func TestRetryResponseInterceptor(t *testing.T) {
	config := &papi.RetryConfig{
		MaxRetries:   3,
		RetryDelay:   100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		RetryOnCodes: []int{429, 500, 502, 503, 504},
	}

	interceptor := papi.RetryResponseInterceptor(config)
	ctx := context.Background()
	req := &papi.Request{
		Method: "GET",
		Path:   "/test",
	}

	resp := &papi.Response{
		StatusCode: 500,
		Headers:    make(http.Header),
	}

	err := interceptor(ctx, req, resp)
	require.NoError(t, err)
	assert.Equal(t, "true", resp.Headers.Get("X-Should-Retry"))

	resp2 := &papi.Response{
		StatusCode: 404,
		Headers:    make(http.Header),
	}

	err = interceptor(ctx, req, resp2)
	require.NoError(t, err)
	assert.Equal(t, "", resp2.Headers.Get("X-Should-Retry"))
}

func TestDefaultRetryConfig(t *testing.T) {
	config := papi.DefaultRetryConfig()
	assert.Equal(t, 3, config.MaxRetries)
	assert.Contains(t, config.RetryOnCodes, 429)
	assert.Contains(t, config.RetryOnCodes, 503)
	assert.NotContains(t, config.RetryOnCodes, 404)
}
