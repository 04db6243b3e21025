package papi

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams represents query parameters for API requests. Offset-paginated
// endpoints read Page and PageSize; cursor-paginated endpoints read Limit.
type QueryParams struct {
	Page     int                 `json:"page,omitempty"      yaml:"page,omitempty"`
	PageSize int                 `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Limit    int                 `json:"limit,omitempty"     yaml:"limit,omitempty"`
	Cursor   string              `json:"cursor,omitempty"    yaml:"cursor,omitempty"`
	OrderBy  string              `json:"order_by,omitempty"  yaml:"order_by,omitempty"`
	Prefix   string              `json:"prefix,omitempty"    yaml:"prefix,omitempty"`
	Include  []string            `json:"include,omitempty"   yaml:"include,omitempty"`
	Filters  map[string][]string `json:"filters,omitempty"   yaml:"filters,omitempty"`
}

// NewQueryParams creates an empty QueryParams ready for use.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// Clone returns an independent copy of the params. Paginators clone before
// stamping page fields so the caller's params stay untouched.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q
	clone.Include = append([]string(nil), q.Include...)
	clone.Filters = make(map[string][]string, len(q.Filters))

	for key, values := range q.Filters {
		clone.Filters[key] = append([]string(nil), values...)
	}

	return &clone
}

// ToValues converts the params to url.Values. Pagination fields use the
// wire names the Pressroom API expects: page_number, page_size, and limit.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Page > 0 {
		values.Set("page_number", strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}

	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	if q.Cursor != "" {
		values.Set("next", q.Cursor)
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if q.Prefix != "" {
		values.Set("prefix", q.Prefix)
	}

	if len(q.Include) > 0 {
		values.Set("include", strings.Join(q.Include, ","))
	}

	for key, filterValues := range q.Filters {
		if len(filterValues) > 0 {
			values.Set(key, strings.Join(filterValues, ","))
		}
	}

	return values
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPageSize sets the page size.
func (q *QueryParams) WithPageSize(size int) *QueryParams {
	q.PageSize = size

	return q
}

// WithLimit sets the per-request record limit for cursor-paginated
// endpoints.
func (q *QueryParams) WithLimit(limit int) *QueryParams {
	q.Limit = limit

	return q
}

// WithCursor sets the opaque continuation token, sent as "next".
func (q *QueryParams) WithCursor(cursor string) *QueryParams {
	q.Cursor = cursor

	return q
}

// WithOrderBy sets the ordering expression.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithPrefix sets the prefix search term.
func (q *QueryParams) WithPrefix(prefix string) *QueryParams {
	q.Prefix = prefix

	return q
}

// WithInclude appends related objects to embed in the response.
func (q *QueryParams) WithInclude(includes ...string) *QueryParams {
	q.Include = append(q.Include, includes...)

	return q
}

// WithFilter appends values to a named filter.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}
