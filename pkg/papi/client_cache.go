package papi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pressroom-io/papi/internal/constants"
)

// CachedBodyMetadataKey is the request metadata key under which the
// cache interceptor stashes a cached response body. Transports may use
// it to skip the network round trip.
const CachedBodyMetadataKey = "cached_body"

// CacheInterceptor returns a request/response interceptor pair that
// serves GET responses from the cache and stores cacheable responses.
//
// On a cache hit the request interceptor places the cached body in the
// request metadata under CachedBodyMetadataKey. The response
// interceptor also resolves 304 Not Modified responses from the cache.
func CacheInterceptor(manager *CacheManager, policy *CachingPolicy) (RequestInterceptor, ResponseInterceptor) {
	if policy == nil {
		policy = manager.Policy()
	}

	requestInterceptor := func(ctx context.Context, req *Request) error {
		if req.Method != http.MethodGet {
			return nil
		}

		key := manager.GetCacheKey(req.Method, req.Path, nil)

		data, err := manager.Get(ctx, key)
		if err != nil {
			// Miss. The request proceeds to the network.
			return nil
		}

		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[CachedBodyMetadataKey] = data

		return nil
	}

	responseInterceptor := func(ctx context.Context, req *Request, resp *Response) error {
		key := manager.GetCacheKey(req.Method, req.Path, nil)

		if resp.StatusCode == http.StatusNotModified {
			entry, err := manager.GetEntry(ctx, key)
			if err == nil {
				resp.StatusCode = http.StatusOK
				resp.Body = entry.Data
			}

			return nil
		}

		if resp.Error != nil || !policy.ShouldCache(req.Method, req.Path, resp.StatusCode) {
			return nil
		}

		var etag string
		if resp.Headers != nil {
			etag = resp.Headers.Get("ETag")
		}

		return manager.SetWithETag(ctx, key, resp.Body, etag, manager.TTLFor(req.Path))
	}

	return requestInterceptor, responseInterceptor
}

// ConditionalRequestInterceptor adds an If-None-Match header to GET
// requests when a cached entry with an ETag exists, so unchanged
// resources come back as 304 without a body.
func ConditionalRequestInterceptor(manager *CacheManager) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Method != http.MethodGet {
			return nil
		}

		key := manager.GetCacheKey(req.Method, req.Path, nil)

		entry, err := manager.GetEntry(ctx, key)
		if err != nil || entry.ETag == "" {
			return nil
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("If-None-Match", entry.ETag)

		return nil
	}
}

// CacheInvalidationInterceptor drops cached entries for a resource and
// its parent collection after a successful mutation.
func CacheInvalidationInterceptor(manager *CacheManager) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		switch req.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return nil
		}

		if resp.Error != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil
		}

		err := manager.InvalidateResource(ctx, req.Path)
		if err != nil {
			return fmt.Errorf("invalidating cache for %s: %w", req.Path, err)
		}

		return nil
	}
}

// SmartCacheConfig bundles the caching interceptors into one setup.
type SmartCacheConfig struct {
	// EnableSmartInvalidation invalidates related cache entries after
	// successful mutations.
	EnableSmartInvalidation bool

	// EnableConditionalRequests sends If-None-Match headers for cached
	// entries that carry an ETag.
	EnableConditionalRequests bool

	// EnableMetrics attaches a metrics collector to the chain.
	EnableMetrics bool

	// ResourceTTLs overrides the cache TTL per path prefix.
	ResourceTTLs map[string]time.Duration
}

// DefaultSmartCacheConfig returns the recommended smart cache setup.
// Server settings change rarely and get a longer TTL than content.
func DefaultSmartCacheConfig() *SmartCacheConfig {
	return &SmartCacheConfig{
		EnableSmartInvalidation:   true,
		EnableConditionalRequests: true,
		EnableMetrics:             true,
		ResourceTTLs: map[string]time.Duration{
			"/v1/server_settings": constants.SettingsCacheTTL,
			"/v1/tags":            constants.DefaultCacheTTL,
			"/v1/content":         2 * time.Minute,
		},
	}
}

// ConfigureSmartCache wires the caching interceptors into the chain.
// Returns the metrics collector when metrics are enabled, nil
// otherwise.
func ConfigureSmartCache(chain *InterceptorChain, manager *CacheManager, config *SmartCacheConfig) *MetricsCollector {
	if config == nil {
		config = DefaultSmartCacheConfig()
	}

	if len(config.ResourceTTLs) > 0 {
		manager.SetResourceTTLs(config.ResourceTTLs)
	}

	requestInterceptor, responseInterceptor := CacheInterceptor(manager, nil)
	chain.AddRequestInterceptor(requestInterceptor)
	chain.AddResponseInterceptor(responseInterceptor)

	if config.EnableConditionalRequests {
		chain.AddRequestInterceptor(ConditionalRequestInterceptor(manager))
	}

	if config.EnableSmartInvalidation {
		chain.AddResponseInterceptor(CacheInvalidationInterceptor(manager))
	}

	if !config.EnableMetrics {
		return nil
	}

	collector := NewMetricsCollector()
	chain.AddRequestInterceptor(MetricsRequestInterceptor(collector))
	chain.AddResponseInterceptor(MetricsResponseInterceptor(collector))

	return collector
}

// CacheWarmer preloads cache entries for frequently read paths.
type CacheWarmer struct {
	session Session
	manager *CacheManager
}

// NewCacheWarmer creates a warmer that fetches through the given
// session and stores results through the manager.
func NewCacheWarmer(session Session, manager *CacheManager) *CacheWarmer {
	return &CacheWarmer{
		session: session,
		manager: manager,
	}
}

// Warm fetches each path and stores the response in the cache. It
// stops at the first transport error.
func (w *CacheWarmer) Warm(ctx context.Context, paths ...string) error {
	if w.session == nil {
		return ErrConfigRequired
	}

	for _, path := range paths {
		body, err := w.session.Get(ctx, path, nil)
		if err != nil {
			return fmt.Errorf("warming %s: %w", path, err)
		}

		key := w.manager.GetCacheKey(http.MethodGet, path, nil)

		err = w.manager.Set(ctx, key, body, w.manager.TTLFor(path))
		if err != nil {
			return fmt.Errorf("storing warmed entry for %s: %w", path, err)
		}
	}

	return nil
}
