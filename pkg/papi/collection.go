package papi

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// DefaultUIDKey is the attribute most Pressroom records are identified by.
const DefaultUIDKey = "guid"

// Factory maps a member path and a raw record to a typed handle. Resource
// clients inject factories that build their own wrapper types.
type Factory[T any] func(path string, attrs Attrs) (T, error)

// recordSource selects how a collection pulls its records.
type recordSource int

const (
	sourceArray recordSource = iota
	sourceOffset
	sourceCursor
)

// Collection reads the members of a collection endpoint and materializes
// them through a factory. Every operation fetches fresh from the server;
// nothing is cached across calls.
type Collection[T any] struct {
	session  Session
	path     string
	uidKey   string
	factory  Factory[T]
	source   recordSource
	pageSize int
	limit    int
}

// NewCollection creates a collection whose members are identified by the
// default uid key, "guid".
func NewCollection[T any](session Session, path string, factory Factory[T]) *Collection[T] {
	return NewKeyedCollection(session, path, DefaultUIDKey, factory)
}

// NewKeyedCollection creates a collection with an explicit uid key for
// endpoints that identify members by something other than "guid".
func NewKeyedCollection[T any](session Session, path, uidKey string, factory Factory[T]) *Collection[T] {
	return &Collection[T]{
		session: session,
		path:    path,
		uidKey:  uidKey,
		factory: factory,
		source:  sourceArray,
	}
}

// WithOffsetPagination makes Fetch pull records through the offset
// paginator instead of decoding a plain JSON array.
func (c *Collection[T]) WithOffsetPagination(pageSize int) *Collection[T] {
	c.source = sourceOffset
	c.pageSize = pageSize

	return c
}

// WithCursorPagination makes Fetch pull records through the cursor
// paginator instead of decoding a plain JSON array.
func (c *Collection[T]) WithCursorPagination(limit int) *Collection[T] {
	c.source = sourceCursor
	c.limit = limit

	return c
}

// Path returns the collection endpoint path.
func (c *Collection[T]) Path() string {
	return c.path
}

// Fetch retrieves every member of the collection, in server order.
func (c *Collection[T]) Fetch(ctx context.Context) ([]T, error) {
	records, err := c.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]T, 0, len(records))

	for _, record := range records {
		member, err := c.materialize(record)
		if err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return members, nil
}

// Find returns the first member whose uid key equals uid. The boolean
// reports whether a match existed; an absent member is not an error.
// Record uids are normalized the same way member paths are, so numeric
// uids match their string form.
func (c *Collection[T]) Find(ctx context.Context, uid string) (T, bool, error) {
	var zero T

	records, err := c.fetchRecords(ctx)
	if err != nil {
		return zero, false, err
	}

	for _, record := range records {
		recordUID, ok := uidString(record[c.uidKey])
		if !ok || recordUID != uid {
			continue
		}

		member, err := c.materialize(record)
		if err != nil {
			return zero, false, err
		}

		return member, true, nil
	}

	return zero, false, nil
}

// FindBy returns the first member whose attributes are a superset of
// conditions, tested in server order.
func (c *Collection[T]) FindBy(ctx context.Context, conditions Attrs) (T, bool, error) {
	var zero T

	records, err := c.fetchRecords(ctx)
	if err != nil {
		return zero, false, err
	}

	for _, record := range records {
		if !matchesConditions(record, conditions) {
			continue
		}

		member, err := c.materialize(record)
		if err != nil {
			return zero, false, err
		}

		return member, true, nil
	}

	return zero, false, nil
}

// FindOne is FindBy under the name finder-style callers expect.
func (c *Collection[T]) FindOne(ctx context.Context, conditions Attrs) (T, bool, error) {
	return c.FindBy(ctx, conditions)
}

// Where returns every member whose attributes are a superset of conditions,
// in server order.
func (c *Collection[T]) Where(ctx context.Context, conditions Attrs) ([]T, error) {
	records, err := c.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	var members []T

	for _, record := range records {
		if !matchesConditions(record, conditions) {
			continue
		}

		member, err := c.materialize(record)
		if err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return members, nil
}

// fetchRecords pulls the raw records fresh from the server using the
// configured record source.
func (c *Collection[T]) fetchRecords(ctx context.Context) ([]Attrs, error) {
	switch c.source {
	case sourceOffset:
		params := NewQueryParams().WithPageSize(c.pageSize)
		paginator := NewOffsetPaginator[Attrs](SessionLister[Attrs]{Session: c.session}, c.path, params)

		return paginator.FetchAll(ctx)
	case sourceCursor:
		params := NewQueryParams().WithLimit(c.limit)
		paginator := NewCursorPaginator[Attrs](SessionCursorLister[Attrs]{Session: c.session}, c.path, params)

		return paginator.All(ctx)
	default:
		body, err := c.session.Get(ctx, c.path, nil)
		if err != nil {
			return nil, fmt.Errorf("fetching collection %s: %w", c.path, err)
		}

		return DecodeRecords(body)
	}
}

// materialize derives the member path from the record's uid key and hands
// both to the factory.
func (c *Collection[T]) materialize(record Attrs) (T, error) {
	var zero T

	uid, ok := uidString(record[c.uidKey])
	if !ok {
		return zero, fmt.Errorf("collection %s, uid key %q: %w", c.path, c.uidKey, ErrUIDKeyMissing)
	}

	return c.factory(joinPath(c.path, uid), record)
}

// MemberPath derives a collection member's endpoint path from the record's
// uid attribute. Resource clients use it to wrap records they fetched
// outside a Collection.
func MemberPath(base string, record Attrs, uidKey string) (string, error) {
	uid, ok := uidString(record[uidKey])
	if !ok {
		return "", fmt.Errorf("collection %s, uid key %q: %w", base, uidKey, ErrUIDKeyMissing)
	}

	return joinPath(base, uid), nil
}

// DecodeRecords decodes a response body that must be a JSON array of
// objects.
func DecodeRecords(data []byte) ([]Attrs, error) {
	var decoded any

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	items, ok := decoded.([]any)
	if !ok {
		return nil, ErrNotJSONArray
	}

	records := make([]Attrs, len(items))

	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d: %w", i, ErrNotJSONObject)
		}

		records[i] = Attrs(obj)
	}

	return records, nil
}

// uidString renders a uid attribute as a path segment. Servers report uids
// as strings or numbers depending on the resource.
func uidString(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, typed != ""
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case int:
		return strconv.Itoa(typed), true
	default:
		return "", false
	}
}

// matchesConditions reports whether the record carries every condition
// key with an equal value.
func matchesConditions(record Attrs, conditions Attrs) bool {
	for key, want := range conditions {
		got, ok := record[key]
		if !ok {
			return false
		}

		if !attrEqual(got, want) {
			return false
		}
	}

	return true
}

// attrEqual compares attribute values, tolerating the int/float64 split
// between caller-built conditions and decoded JSON numbers.
func attrEqual(got, want any) bool {
	gotNum, gotOK := toFloat(got)
	wantNum, wantOK := toFloat(want)

	if gotOK && wantOK {
		return gotNum == wantNum
	}

	return reflect.DeepEqual(got, want)
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return 0, false
	}
}

// joinPath joins a collection path and a member segment with exactly one
// slash.
func joinPath(base, segment string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(segment, "/")
}
