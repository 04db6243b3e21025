package papi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// CursorLister fetches one cursor-paginated page of T records.
type CursorLister[T any] interface {
	ListCursorPage(ctx context.Context, path string, params *QueryParams) (*CursorPage[T], error)
}

// SessionCursorLister adapts a Session into a CursorLister by decoding the
// cursor envelope.
type SessionCursorLister[T any] struct {
	Session Session
}

// ListCursorPage implements CursorLister.
func (l SessionCursorLister[T]) ListCursorPage(ctx context.Context, path string, params *QueryParams) (*CursorPage[T], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	body, err := l.Session.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	var page CursorPage[T]

	err = json.Unmarshal(body, &page)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &page, nil
}

// CursorPaginator walks a cursor-paginated endpoint. The walk is
// forward-only and non-restartable: each page's continuation token feeds
// the next request, and the walk ends exactly when the server omits the
// token. There is no total to cross-check, so a page cap can be set as a
// runaway guard.
type CursorPaginator[T any] struct {
	client CursorLister[T]
	path   string
	params *QueryParams

	next     string
	done     bool
	fetched  int
	maxPages int
}

// NewCursorPaginator creates a paginator over path. The record limit comes
// from params; zero means the server maximum.
func NewCursorPaginator[T any](client CursorLister[T], path string, params *QueryParams) *CursorPaginator[T] {
	return &CursorPaginator[T]{
		client: client,
		path:   path,
		params: params.Clone(),
	}
}

// WithMaxPages caps how many pages the walk may fetch. Exceeding the cap
// fails the walk with ErrTooManyPages. Zero (the default) means unbounded.
func (p *CursorPaginator[T]) WithMaxPages(maxPages int) *CursorPaginator[T] {
	p.maxPages = maxPages

	return p
}

// HasNext reports whether another page should be fetched. It is true
// before the first fetch and turns false once a response omits the
// continuation token.
func (p *CursorPaginator[T]) HasNext() bool {
	return !p.done
}

// NextPage fetches the next page. The first request carries no token;
// every later request carries the token from the previous response.
func (p *CursorPaginator[T]) NextPage(ctx context.Context) (*CursorPage[T], error) {
	if p.done {
		return nil, ErrNoMorePages
	}

	if p.maxPages > 0 && p.fetched >= p.maxPages {
		p.done = true

		return nil, fmt.Errorf("cursor walk of %s after %d pages: %w", p.path, p.fetched, ErrTooManyPages)
	}

	params := p.params.Clone().
		WithLimit(effectivePageSize(p.params.Limit)).
		WithCursor(p.next)

	page, err := p.client.ListCursorPage(ctx, p.path, params)
	if err != nil {
		return nil, fmt.Errorf("fetching cursor page of %s: %w", p.path, err)
	}

	p.fetched++
	p.next = page.Paging.Cursors.Next

	if p.next == "" {
		p.done = true
	}

	return page, nil
}

// All drains the remaining pages and returns their records flattened, page
// order first, within-page order second.
func (p *CursorPaginator[T]) All(ctx context.Context) ([]T, error) {
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

// ForEach applies fn to each remaining record, stopping at the first
// error. Records already delivered stay delivered.
func (p *CursorPaginator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for p.HasNext() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}

		for _, item := range page.Results {
			err = fn(item)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// CursorIterator yields records one at a time across cursor pages,
// fetching lazily.
type CursorIterator[T any] struct {
	ctx       context.Context
	paginator *CursorPaginator[T]
	buffer    []T
}

// NewCursorIterator creates an item-level iterator over a cursor endpoint.
func NewCursorIterator[T any](ctx context.Context, client CursorLister[T], path string, params *QueryParams) *CursorIterator[T] {
	return &CursorIterator[T]{
		ctx:       ctx,
		paginator: NewCursorPaginator(client, path, params),
	}
}

// WithMaxPages caps how many pages the iterator may fetch.
func (it *CursorIterator[T]) WithMaxPages(maxPages int) *CursorIterator[T] {
	it.paginator.WithMaxPages(maxPages)

	return it
}

// HasNext reports whether another record may be available.
func (it *CursorIterator[T]) HasNext() bool {
	return len(it.buffer) > 0 || it.paginator.HasNext()
}

// Next returns the next record, fetching the next page when the buffer
// runs out.
func (it *CursorIterator[T]) Next() (T, error) {
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
func (it *CursorIterator[T]) All() ([]T, error) {
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
func (it *CursorIterator[T]) ForEach(fn func(T) error) error {
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
