package papi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Session is the transport boundary the resource engine talks through. The
// production implementation lives in internal/http; tests swap in fakes.
// Paths are relative to the API root (e.g. "v1/users/abc"). Implementations
// return the raw response body, already vetted for HTTP-level errors.
type Session interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body interface{}) ([]byte, error)
	Put(ctx context.Context, path string, body interface{}) ([]byte, error)
	Patch(ctx context.Context, path string, body interface{}) ([]byte, error)
	Delete(ctx context.Context, path string) ([]byte, error)
}

// Resource is a handle on a single API record: its endpoint path and a
// locked snapshot of its attributes. Attributes are read through accessors
// and only ever change as a whole, via ReplaceAttrs or Refresh. There is no
// partial mutation.
type Resource struct {
	session Session
	path    string
	attrs   Attrs
}

// NewResource creates a resource from an already-fetched attribute set. No
// network call is made; the attributes are deep-copied in.
func NewResource(session Session, path string, attrs Attrs) *Resource {
	return &Resource{
		session: session,
		path:    path,
		attrs:   attrs.Clone(),
	}
}

// OpenResource creates a resource by fetching its attributes from the API.
func OpenResource(ctx context.Context, session Session, path string) (*Resource, error) {
	body, err := session.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching resource %s: %w", path, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, fmt.Errorf("decoding resource %s: %w", path, err)
	}

	return &Resource{session: session, path: path, attrs: attrs}, nil
}

// Path returns the endpoint path the resource was constructed with.
func (r *Resource) Path() string {
	return r.path
}

// Attr returns the named attribute, or ErrAttributeMissing when the
// snapshot has no such key.
func (r *Resource) Attr(key string) (any, error) {
	value, ok := r.attrs[key]
	if !ok {
		return nil, fmt.Errorf("attribute %q: %w", key, ErrAttributeMissing)
	}

	return value, nil
}

// Lookup returns the named attribute and whether it is present.
func (r *Resource) Lookup(key string) (any, bool) {
	value, ok := r.attrs[key]

	return value, ok
}

// AttrOr returns the named attribute, or def when absent.
func (r *Resource) AttrOr(key string, def any) any {
	if value, ok := r.attrs[key]; ok {
		return value
	}

	return def
}

// String returns the named attribute as a string.
func (r *Resource) String(key string) (string, error) {
	value, err := r.Attr(key)
	if err != nil {
		return "", err
	}

	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("attribute %q (%T): %w", key, value, ErrAttributeType)
	}

	return str, nil
}

// StringOr returns the named attribute as a string, or def when absent or
// of another type.
func (r *Resource) StringOr(key, def string) string {
	if str, ok := r.attrs[key].(string); ok {
		return str
	}

	return def
}

// Int returns the named attribute as an int. JSON numbers decode as
// float64; both forms are accepted.
func (r *Resource) Int(key string) (int, error) {
	value, err := r.Attr(key)
	if err != nil {
		return 0, err
	}

	switch typed := value.(type) {
	case float64:
		return int(typed), nil
	case int:
		return typed, nil
	default:
		return 0, fmt.Errorf("attribute %q (%T): %w", key, value, ErrAttributeType)
	}
}

// IntOr returns the named attribute as an int, or def when absent or of
// another type.
func (r *Resource) IntOr(key string, def int) int {
	if n, err := r.Int(key); err == nil {
		return n
	}

	return def
}

// Bool returns the named attribute as a bool.
func (r *Resource) Bool(key string) (bool, error) {
	value, err := r.Attr(key)
	if err != nil {
		return false, err
	}

	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("attribute %q (%T): %w", key, value, ErrAttributeType)
	}

	return b, nil
}

// BoolOr returns the named attribute as a bool, or def when absent or of
// another type.
func (r *Resource) BoolOr(key string, def bool) bool {
	if b, ok := r.attrs[key].(bool); ok {
		return b
	}

	return def
}

// Float64 returns the named attribute as a float64.
func (r *Resource) Float64(key string) (float64, error) {
	value, err := r.Attr(key)
	if err != nil {
		return 0, err
	}

	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("attribute %q (%T): %w", key, value, ErrAttributeType)
	}

	return f, nil
}

// Strings returns the named attribute as a slice of strings.
func (r *Resource) Strings(key string) ([]string, error) {
	value, err := r.Attr(key)
	if err != nil {
		return nil, err
	}

	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("attribute %q (%T): %w", key, value, ErrAttributeType)
	}

	strs := make([]string, len(items))

	for i, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("attribute %q element %d (%T): %w", key, i, item, ErrAttributeType)
		}

		strs[i] = str
	}

	return strs, nil
}

// Attrs returns a deep copy of the attribute snapshot. Mutating the copy
// does not change what the handle reads.
func (r *Resource) Attrs() Attrs {
	return r.attrs.Clone()
}

// ReplaceAttrs swaps the whole attribute snapshot for a new one. This is
// the only way resource state changes locally.
func (r *Resource) ReplaceAttrs(attrs Attrs) {
	r.attrs = attrs.Clone()
}

// Refresh re-fetches the resource and replaces the snapshot with the
// response. Extra query parameters are forwarded as-is.
func (r *Resource) Refresh(ctx context.Context, query url.Values) error {
	body, err := r.session.Get(ctx, r.path, query)
	if err != nil {
		return fmt.Errorf("refreshing resource %s: %w", r.path, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return fmt.Errorf("decoding resource %s: %w", r.path, err)
	}

	r.attrs = attrs

	return nil
}

// Destroy deletes the record on the server. The local snapshot is left in
// place; callers discard the handle after a successful destroy.
func (r *Resource) Destroy(ctx context.Context) error {
	_, err := r.session.Delete(ctx, r.path)
	if err != nil {
		return fmt.Errorf("destroying resource %s: %w", r.path, err)
	}

	return nil
}

// decodeAttrs decodes a response body that must be a single JSON object.
func decodeAttrs(data []byte) (Attrs, error) {
	var decoded any

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, ErrNotJSONObject
	}

	return Attrs(obj), nil
}
