package papi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pressroom-io/papi/internal/constants"
)

// Cache errors.
var (
	ErrCacheKeyNotFound  = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
)

// Cache is the interface implemented by cache backends.
type Cache interface {
	// Get retrieves a cached entry. Returns an error when the key is
	// missing or the entry has expired.
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores an entry under the given key.
	Set(ctx context.Context, key string, entry *CacheEntry) error

	// Delete removes an entry.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Has reports whether a live (non-expired) entry exists for the key.
	Has(ctx context.Context, key string) bool
}

// CacheEntry is a single cached response body with its expiry and
// optional ETag for conditional requests.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// IsExpired reports whether the entry has passed its expiry time.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// CacheOptions are common tuning knobs applied to any backend.
type CacheOptions struct {
	// DefaultTTL is used when a caller does not supply an explicit TTL.
	DefaultTTL time.Duration

	// MaxValueSize is the largest response body that will be cached.
	// Larger bodies are silently skipped. Zero means no limit.
	MaxValueSize int
}

// DefaultCacheOptions returns the default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		DefaultTTL:   constants.DefaultCacheTTL,
		MaxValueSize: constants.MaxCacheValueSize,
	}
}

// MemoryCache is an in-process Cache with a bounded entry count.
// When the cache is full, the entry closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int

	janitorStop chan struct{}
	janitorOnce sync.Once
}

// NewMemoryCache creates an in-memory cache holding at most maxSize
// entries. A maxSize of zero or less falls back to the default size.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get retrieves an entry. Expired entries are removed on access.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if entry.IsExpired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry, evicting the entry closest to expiry when the
// cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry

	return nil
}

// evictOldest drops the entry with the earliest expiry. Caller must
// hold the write lock.
func (c *MemoryCache) evictOldest() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)

	for key, entry := range c.entries {
		if !found || entry.ExpiresAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.ExpiresAt
			found = true
		}
	}

	if found {
		delete(c.entries, oldestKey)
	}
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has reports whether a live entry exists for the key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]

	return ok && !entry.IsExpired()
}

// Cleanup removes all expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.IsExpired() {
			delete(c.entries, key)
		}
	}
}

// StartJanitor sweeps expired entries on the given interval until
// StopJanitor is called. Starting twice has no effect.
func (c *MemoryCache) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		return
	}

	c.janitorOnce.Do(func() {
		c.janitorStop = make(chan struct{})

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					c.Cleanup()
				case <-c.janitorStop:
					return
				}
			}
		}()
	})
}

// StopJanitor stops the background sweeper, if one is running.
func (c *MemoryCache) StopJanitor() {
	if c.janitorStop != nil {
		close(c.janitorStop)
		c.janitorStop = nil
	}
}

// NATSKVConfig configures the NATS JetStream key-value cache backend.
type NATSKVConfig struct {
	// URL is the NATS server URL, e.g. nats://localhost:4222
	URL string

	// Bucket is the KV bucket name. Created if it does not exist.
	Bucket string

	// CredsFile is an optional NATS credentials file.
	CredsFile string

	// Username and Password for basic authentication (optional).
	Username string
	Password string

	// Token authentication (optional).
	Token string

	// TTL applies bucket-wide. Per-entry expiry still applies on read.
	TTL time.Duration

	// Replicas for the KV bucket in clustered JetStream.
	Replicas int
}

// NATSKVCache is a Cache backed by a NATS JetStream key-value bucket,
// letting several processes share one cache.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and opens (or creates) the
// configured KV bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{nats.Name("papi-cache")}
	if config.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(config.CredsFile))
	}

	if config.Username != "" {
		opts = append(opts, nats.UserInfo(config.Username, config.Password))
	}

	if config.Token != "" {
		opts = append(opts, nats.Token(config.Token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	jetStream, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = "papi-cache"
	}

	keyValue, err := jetStream.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		keyValue, err = jetStream.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:   bucket,
			TTL:      config.TTL,
			Replicas: config.Replicas,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening KV bucket %s: %w", bucket, err)
	}

	return &NATSKVCache{
		conn: conn,
		kv:   keyValue,
	}, nil
}

// natsKey hashes a cache key into the restricted NATS KV key charset.
func natsKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

// Get retrieves an entry from the KV bucket.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(natsKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
		}

		return nil, fmt.Errorf("reading key %s: %w", key, err)
	}

	var entry CacheEntry

	err = json.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cached entry %s: %w", key, err)
	}

	if entry.IsExpired() {
		_ = c.kv.Delete(natsKey(key))

		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return &entry, nil
}

// Set stores an entry in the KV bucket.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	_, err = c.kv.Put(natsKey(key), data)
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}

	return nil
}

// Delete removes an entry from the KV bucket.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(natsKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}

	return nil
}

// Clear removes all entries from the KV bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing keys: %w", err)
	}

	for _, key := range keys {
		err = c.kv.Delete(key)
		if err != nil {
			return fmt.Errorf("deleting key %s: %w", key, err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for the key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	entry, err := c.Get(ctx, key)

	return err == nil && entry != nil
}

// Close closes the underlying NATS connection.
func (c *NATSKVCache) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}

	return nil
}

// CacheManager layers key construction, TTL handling, and hit/miss
// accounting on top of a Cache backend.
type CacheManager struct {
	cache   Cache
	policy  *CachingPolicy
	options *CacheOptions

	mu           sync.Mutex
	stats        CacheStats
	resourceTTLs map[string]time.Duration
}

// NewCacheManager creates a manager over the given backend. A nil
// policy uses DefaultCachingPolicy.
func NewCacheManager(cache Cache, policy *CachingPolicy) *CacheManager {
	if policy == nil {
		policy = DefaultCachingPolicy()
	}

	return &CacheManager{
		cache:   cache,
		policy:  policy,
		options: DefaultCacheOptions(),
	}
}

// Policy returns the caching policy in effect.
func (m *CacheManager) Policy() *CachingPolicy {
	return m.policy
}

// GetCacheKey builds a cache key from the request method, path, and
// query parameters. Parameters are sorted so equivalent requests map
// to the same key.
func (m *CacheManager) GetCacheKey(method, path string, params map[string]string) string {
	if len(params) == 0 {
		return method + ":" + path
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}

	return method + ":" + path + ":" + strings.Join(pairs, "&")
}

// Get retrieves cached data, recording a hit or miss.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	if m.cache == nil {
		return nil, ErrCacheDisabled
	}

	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		m.mu.Lock()
		m.stats.Misses++
		m.mu.Unlock()

		return nil, err
	}

	m.mu.Lock()
	m.stats.Hits++
	m.mu.Unlock()

	return entry.Data, nil
}

// GetEntry retrieves the raw cache entry, including its ETag. Unlike
// Get it does not count toward hit/miss statistics.
func (m *CacheManager) GetEntry(ctx context.Context, key string) (*CacheEntry, error) {
	if m.cache == nil {
		return nil, ErrCacheDisabled
	}

	return m.cache.Get(ctx, key)
}

// Set stores data under the key with the given TTL. A TTL of zero or
// less uses the default TTL.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores data along with its ETag for later conditional
// requests. Bodies over the configured size limit are skipped.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	if m.cache == nil {
		return nil
	}

	if m.options.MaxValueSize > 0 && len(data) > m.options.MaxValueSize {
		return nil
	}

	if ttl <= 0 {
		ttl = m.options.DefaultTTL
	}

	entry := &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		ETag:      etag,
	}

	err := m.cache.Set(ctx, key, entry)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.stats.Sets++
	m.mu.Unlock()

	return nil
}

// Invalidate removes a single cache entry.
func (m *CacheManager) Invalidate(ctx context.Context, key string) error {
	if m.cache == nil {
		return nil
	}

	return m.cache.Delete(ctx, key)
}

// InvalidateResource removes the cached GET response for a resource
// path and for its parent collection, so mutations are visible on the
// next read.
func (m *CacheManager) InvalidateResource(ctx context.Context, path string) error {
	if m.cache == nil {
		return nil
	}

	err := m.cache.Delete(ctx, m.GetCacheKey(http.MethodGet, path, nil))
	if err != nil {
		return err
	}

	if idx := strings.LastIndex(strings.TrimSuffix(path, "/"), "/"); idx > 0 {
		parent := path[:idx]

		return m.cache.Delete(ctx, m.GetCacheKey(http.MethodGet, parent, nil))
	}

	return nil
}

// Clear removes all cached entries and resets statistics.
func (m *CacheManager) Clear(ctx context.Context) error {
	if m.cache == nil {
		return nil
	}

	err := m.cache.Clear(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.stats = CacheStats{}
	m.mu.Unlock()

	return nil
}

// GetStats returns a snapshot of the cache statistics.
func (m *CacheManager) GetStats() *CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.stats

	return &snapshot
}

// SetResourceTTLs installs per-path TTL overrides used by TTLFor.
func (m *CacheManager) SetResourceTTLs(ttls map[string]time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resourceTTLs = ttls
}

// TTLFor returns the TTL for a path, honoring per-resource overrides
// by longest matching prefix.
func (m *CacheManager) TTLFor(path string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		best    string
		bestTTL time.Duration
	)

	for prefix, ttl := range m.resourceTTLs {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(best) {
			best = prefix
			bestTTL = ttl
		}
	}

	if best == "" {
		return m.options.DefaultTTL
	}

	return bestTTL
}

// CacheStats tracks cache effectiveness.
type CacheStats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// GetHitRate returns hits as a fraction of all lookups, or 0 when no
// lookups have happened.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses

	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// CachingPolicy decides which responses are cacheable.
type CachingPolicy struct {
	// CacheGET enables caching of GET responses.
	CacheGET bool

	// CachePOST enables caching of POST responses.
	CachePOST bool

	// CacheErrors enables caching of non-2xx responses.
	CacheErrors bool

	// IncludePaths, when non-empty, restricts caching to paths with one
	// of these prefixes.
	IncludePaths []string

	// ExcludePaths lists path prefixes that are never cached.
	ExcludePaths []string
}

// DefaultCachingPolicy caches successful GET responses, except for
// volatile endpoints whose payloads change between polls.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET: true,
		ExcludePaths: []string{
			"/v1/tasks",
			"/v1/audit_logs",
		},
	}
}

// ShouldCache reports whether a response to the given request is
// cacheable under this policy.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	switch method {
	case http.MethodGet:
		if !p.CacheGET {
			return false
		}
	case http.MethodPost:
		if !p.CachePOST {
			return false
		}
	default:
		return false
	}

	if !p.CacheErrors && (statusCode < 200 || statusCode >= 300) {
		return false
	}

	for _, excluded := range p.ExcludePaths {
		if strings.HasPrefix(path, excluded) {
			return false
		}
	}

	if len(p.IncludePaths) > 0 {
		for _, included := range p.IncludePaths {
			if strings.HasPrefix(path, included) {
				return true
			}
		}

		return false
	}

	return true
}
