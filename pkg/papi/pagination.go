package papi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/pressroom-io/papi/internal/constants"
)

// PageLister fetches one offset-paginated page of T records.
type PageLister[T any] interface {
	ListPage(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error)
}

// SessionLister adapts a Session into a PageLister by decoding the offset
// envelope.
type SessionLister[T any] struct {
	Session Session
}

// ListPage implements PageLister.
func (l SessionLister[T]) ListPage(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	body, err := l.Session.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	var response ListResponse[T]

	err = json.Unmarshal(body, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &response, nil
}

// OffsetPaginator walks an offset-paginated endpoint page by page. The
// server-reported total is recorded from the first page only; the walk is
// exhausted once the records seen reach that total. The sequence is
// restartable via Reset.
type OffsetPaginator[T any] struct {
	client PageLister[T]
	path   string
	params *QueryParams

	page       int
	seen       int
	total      int
	totalKnown bool
}

// NewOffsetPaginator creates a paginator over path. Page size comes from
// params; zero means the server maximum.
func NewOffsetPaginator[T any](client PageLister[T], path string, params *QueryParams) *OffsetPaginator[T] {
	return &OffsetPaginator[T]{
		client: client,
		path:   path,
		params: params.Clone(),
		page:   1,
	}
}

// HasNext reports whether another page should be fetched: true while the
// total is unknown or fewer records than the total have been seen.
func (p *OffsetPaginator[T]) HasNext() bool {
	return !p.totalKnown || p.seen < p.total
}

// Total returns the server-reported total and whether the first page has
// established it yet.
func (p *OffsetPaginator[T]) Total() (int, bool) {
	return p.total, p.totalKnown
}

// NextPage fetches the next page. The total is stored from the first
// response only. A page with no results does not terminate the walk; only
// the seen-versus-total comparison does.
func (p *OffsetPaginator[T]) NextPage(ctx context.Context) (*ListResponse[T], error) {
	if !p.HasNext() {
		return nil, ErrNoMorePages
	}

	params := p.params.Clone().
		WithPage(p.page).
		WithPageSize(effectivePageSize(p.params.PageSize))

	response, err := p.client.ListPage(ctx, p.path, params)
	if err != nil {
		return nil, fmt.Errorf("fetching page %d of %s: %w", p.page, p.path, err)
	}

	if !p.totalKnown {
		p.total = response.Total
		p.totalKnown = true
	}

	p.seen += len(response.Results)
	p.page++

	return response, nil
}

// FetchAll restarts the walk and returns the concatenation of every page's
// results, in order.
func (p *OffsetPaginator[T]) FetchAll(ctx context.Context) ([]T, error) {
	p.Reset()

	var all []T

	for p.HasNext() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Results...)
	}

	return all, nil
}

// Reset rewinds the paginator to the first page and forgets the total.
func (p *OffsetPaginator[T]) Reset() {
	p.page = 1
	p.seen = 0
	p.total = 0
	p.totalKnown = false
}

// effectivePageSize applies the default and the server cap. Requests above
// constants.MaxPageSize are silently clamped.
func effectivePageSize(requested int) int {
	if requested <= 0 {
		return constants.DefaultPageSize
	}

	if requested > constants.MaxPageSize {
		return constants.MaxPageSize
	}

	return requested
}

// PaginationOptions configures the package-level pagination helpers.
type PaginationOptions struct {
	// PageSize is the per-page record count, capped at the server maximum.
	PageSize int
	// MaxPages bounds how many pages are fetched; 0 means unbounded.
	MaxPages int
}

// DefaultPaginationOptions returns the options the helpers use when the
// caller passes nil.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.DefaultPageSize,
		MaxPages: 0,
	}
}

// PaginationIterator yields records one at a time across page boundaries,
// fetching lazily.
type PaginationIterator[T any] struct {
	ctx       context.Context
	paginator *OffsetPaginator[T]
	buffer    []T
}

// NewPaginationIterator creates an item-level iterator over an offset
// endpoint.
func NewPaginationIterator[T any](ctx context.Context, client PageLister[T], path string, params *QueryParams) *PaginationIterator[T] {
	return &PaginationIterator[T]{
		ctx:       ctx,
		paginator: NewOffsetPaginator(client, path, params),
	}
}

// HasNext reports whether another record may be available. Before the first
// fetch it is always true; a subsequent Next can still report
// ErrNoMoreItems when the collection turns out to be empty.
func (it *PaginationIterator[T]) HasNext() bool {
	return len(it.buffer) > 0 || it.paginator.HasNext()
}

// Next returns the next record, fetching the next page when the buffer
// runs out.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	for len(it.buffer) == 0 && it.paginator.HasNext() {
		page, err := it.paginator.NextPage(it.ctx)
		if err != nil {
			return zero, err
		}

		it.buffer = append(it.buffer, page.Results...)
	}

	if len(it.buffer) == 0 {
		return zero, ErrNoMoreItems
	}

	item := it.buffer[0]
	it.buffer = it.buffer[1:]

	return item, nil
}

// All drains the iterator and returns the remaining records.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				break
			}

			return nil, err
		}

		all = append(all, item)
	}

	return all, nil
}

// ForEach applies fn to each remaining record, stopping at the first error.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				return nil
			}

			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// FetchAllPages collects every record of an offset endpoint, honoring the
// page size and page cap in options.
func FetchAllPages[T any](ctx context.Context, client PageLister[T], path string, params *QueryParams, options *PaginationOptions) ([]T, error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	paginator := newOptionsPaginator(client, path, params, options)

	var all []T

	fetched := 0

	for paginator.HasNext() {
		if options.MaxPages > 0 && fetched >= options.MaxPages {
			break
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Results...)
		fetched++
	}

	return all, nil
}

// PageResult is one streamed page: its records, or the error that ended
// the stream.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// StreamPages walks an offset endpoint in a goroutine, delivering one
// PageResult per page. The channel closes after the last page, the first
// error, the page cap, or context cancellation, whichever comes first.
func StreamPages[T any](ctx context.Context, client PageLister[T], path string, params *QueryParams, options *PaginationOptions) <-chan PageResult[T] {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	results := make(chan PageResult[T], constants.BufferSize)

	go func() {
		defer close(results)

		paginator := newOptionsPaginator(client, path, params, options)
		fetched := 0

		for paginator.HasNext() {
			if options.MaxPages > 0 && fetched >= options.MaxPages {
				return
			}

			page, err := paginator.NextPage(ctx)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			fetched++

			select {
			case results <- PageResult[T]{Items: page.Results}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}

func newOptionsPaginator[T any](client PageLister[T], path string, params *QueryParams, options *PaginationOptions) *OffsetPaginator[T] {
	merged := params.Clone()
	if options.PageSize > 0 {
		merged.WithPageSize(options.PageSize)
	}

	return NewOffsetPaginator(client, path, merged)
}
