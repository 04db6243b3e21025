package papi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPageFetch = errors.New("page fetch failed")

// MockPageLister implements PageLister for testing.
type MockPageLister struct {
	pages     map[int]*papi.ListResponse[TestRecord]
	errOnPage int
	requests  []*papi.QueryParams
}

type TestRecord struct {
	ID   string
	Name string
}

func (m *MockPageLister) ListPage(_ context.Context, _ string, params *papi.QueryParams) (*papi.ListResponse[TestRecord], error) {
	m.requests = append(m.requests, params)

	page := 1
	if params != nil && params.Page > 0 {
		page = params.Page
	}

	if m.errOnPage != 0 && page == m.errOnPage {
		return nil, errPageFetch
	}

	response, ok := m.pages[page]
	if !ok {
		return &papi.ListResponse[TestRecord]{Results: []TestRecord{}}, nil
	}

	return response, nil
}

func threePageLister() *MockPageLister {
	return &MockPageLister{
		pages: map[int]*papi.ListResponse[TestRecord]{
			1: {
				Results:     []TestRecord{{ID: "1"}, {ID: "2"}},
				Total:       5,
				CurrentPage: 1,
			},
			2: {
				Results:     []TestRecord{{ID: "3"}, {ID: "4"}},
				Total:       5,
				CurrentPage: 2,
			},
			3: {
				Results:     []TestRecord{{ID: "5"}},
				Total:       5,
				CurrentPage: 3,
			},
		},
	}
}

func TestOffsetPaginator_FetchAll(t *testing.T) {
	t.Parallel()

	t.Run("returns total records in ceil(total/size) requests", func(t *testing.T) {
		t.Parallel()

		client := threePageLister()
		paginator := papi.NewOffsetPaginator[TestRecord](client, "v1/users", papi.NewQueryParams().WithPageSize(2))

		records, err := paginator.FetchAll(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 5)
		assert.Equal(t, "1", records[0].ID)
		assert.Equal(t, "5", records[4].ID)

		// 5 records at page size 2 means exactly 3 requests.
		assert.Len(t, client.requests, 3)
	})

	t.Run("restartable", func(t *testing.T) {
		t.Parallel()

		client := threePageLister()
		paginator := papi.NewOffsetPaginator[TestRecord](client, "v1/users", papi.NewQueryParams().WithPageSize(2))

		first, err := paginator.FetchAll(context.Background())
		require.NoError(t, err)

		second, err := paginator.FetchAll(context.Background())
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, client.requests, 6)
	})

	t.Run("error propagates mid-walk", func(t *testing.T) {
		t.Parallel()

		client := threePageLister()
		client.errOnPage = 2
		paginator := papi.NewOffsetPaginator[TestRecord](client, "v1/users", papi.NewQueryParams().WithPageSize(2))

		_, err := paginator.FetchAll(context.Background())
		assert.ErrorIs(t, err, errPageFetch)
	})
}

func TestOffsetPaginator_NextPage(t *testing.T) {
	t.Parallel()

	t.Run("total is stored from the first page only", func(t *testing.T) {
		t.Parallel()

		client := &MockPageLister{
			pages: map[int]*papi.ListResponse[TestRecord]{
				1: {Results: []TestRecord{{ID: "1"}}, Total: 2},
				// A drifting total on later pages must not change the walk.
				2: {Results: []TestRecord{{ID: "2"}}, Total: 99},
			},
		}
		paginator := papi.NewOffsetPaginator[TestRecord](client, "v1/users", papi.NewQueryParams().WithPageSize(1))

		_, err := paginator.NextPage(context.Background())
		require.NoError(t, err)

		total, known := paginator.Total()
		assert.True(t, known)
		assert.Equal(t, 2, total)

		_, err = paginator.NextPage(context.Background())
		require.NoError(t, err)

		total, _ = paginator.Total()
		assert.Equal(t, 2, total)
		assert.False(t, paginator.HasNext())
	})

	t.Run("empty page below total is not termination", func(t *testing.T) {
		t.Parallel()

		client := &MockPageLister{
			pages: map[int]*papi.ListResponse[TestRecord]{
				1: {Results: []TestRecord{{ID: "1"}}, Total: 2},
				2: {Results: []TestRecord{}, Total: 2},
				3: {Results: []TestRecord{{ID: "2"}}, Total: 2},
			},
		}
		paginator := papi.NewOffsetPaginator[TestRecord](client, "v1/users", papi.NewQueryParams().WithPageSize(1))

		records, err := paginator.FetchAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Len(t, client.requests, 3)
	})

	t.Run("exhausted paginator refuses further pages", func(t *testing.T) {
		t.Parallel()

		client := &MockPageLister{
			pages: map[int]*papi.ListResponse[TestRecord]{
				1: {Results: []TestRecord{{ID: "1"}}, Total: 1},
			},
		}
		paginator := papi.NewOffsetPaginator[TestRecord](client, "v1/users", nil)

		_, err := paginator.NextPage(context.Background())
		require.NoError(t, err)
		require.False(t, paginator.HasNext())

		_, err = paginator.NextPage(context.Background())
		assert.ErrorIs(t, err, papi.ErrNoMorePages)
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()

		client := &MockPageLister{pages: map[int]*papi.ListResponse[TestRecord]{}}
		paginator := papi.NewOffsetPaginator[TestRecord](client, "v1/users", nil)

		records, err := paginator.FetchAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Len(t, client.requests, 1)
	})
}

func TestOffsetPaginator_PageSizeClamp(t *testing.T) {
	t.Parallel()

	client := &MockPageLister{
		pages: map[int]*papi.ListResponse[TestRecord]{
			1: {Results: []TestRecord{{ID: "1"}}, Total: 1},
		},
	}
	paginator := papi.NewOffsetPaginator[TestRecord](client, "v1/users", papi.NewQueryParams().WithPageSize(9000))

	_, err := paginator.NextPage(context.Background())
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	assert.Equal(t, 500, client.requests[0].PageSize)
	assert.Equal(t, 1, client.requests[0].Page)
}

func TestPaginationIterator_HasNext(t *testing.T) {
	t.Parallel()

	client := &MockPageLister{
		pages: map[int]*papi.ListResponse[TestRecord]{
			1: {Results: []TestRecord{{ID: "1"}, {ID: "2"}}, Total: 3},
			2: {Results: []TestRecord{{ID: "3"}}, Total: 3},
		},
	}

	ctx := context.Background()
	iterator := papi.NewPaginationIterator[TestRecord](ctx, client, "v1/users", papi.NewQueryParams().WithPageSize(2))

	// Should have next before any fetch
	assert.True(t, iterator.HasNext())

	item1, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", item1.ID)

	assert.True(t, iterator.HasNext())

	item2, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "2", item2.ID)

	assert.True(t, iterator.HasNext())

	item3, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "3", item3.ID)

	assert.False(t, iterator.HasNext())

	_, err = iterator.Next()
	assert.ErrorIs(t, err, papi.ErrNoMoreItems)
}

func TestPaginationIterator_All(t *testing.T) {
	t.Parallel()

	client := threePageLister()

	ctx := context.Background()
	iterator := papi.NewPaginationIterator[TestRecord](ctx, client, "v1/users", papi.NewQueryParams().WithPageSize(2))

	allRecords, err := iterator.All()
	require.NoError(t, err)
	assert.Len(t, allRecords, 5)
	assert.Equal(t, "1", allRecords[0].ID)
	assert.Equal(t, "5", allRecords[4].ID)
}

func TestPaginationIterator_All_EmptyCollection(t *testing.T) {
	t.Parallel()

	client := &MockPageLister{pages: map[int]*papi.ListResponse[TestRecord]{}}

	iterator := papi.NewPaginationIterator[TestRecord](context.Background(), client, "v1/users", nil)

	allRecords, err := iterator.All()
	require.NoError(t, err)
	assert.Empty(t, allRecords)
}

func TestPaginationIterator_ForEach(t *testing.T) {
	t.Parallel()

	client := &MockPageLister{
		pages: map[int]*papi.ListResponse[TestRecord]{
			1: {Results: []TestRecord{{ID: "1"}, {ID: "2"}}, Total: 2},
		},
	}

	ctx := context.Background()
	iterator := papi.NewPaginationIterator[TestRecord](ctx, client, "v1/users", nil)

	var collected []string

	err := iterator.ForEach(func(record TestRecord) error {
		collected = append(collected, record.ID)

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, collected)
}

func TestPaginationIterator_ForEach_CallbackError(t *testing.T) {
	t.Parallel()

	client := threePageLister()

	iterator := papi.NewPaginationIterator[TestRecord](context.Background(), client, "v1/users", papi.NewQueryParams().WithPageSize(2))

	errStop := errors.New("stop")
	count := 0

	err := iterator.ForEach(func(TestRecord) error {
		count++
		if count == 3 {
			return errStop
		}

		return nil
	})

	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 3, count)
}

func TestFetchAllPages(t *testing.T) {
	t.Parallel()

	client := threePageLister()

	ctx := context.Background()

	records, err := papi.FetchAllPages(ctx, client, "v1/users", nil, &papi.PaginationOptions{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestFetchAllPages_WithMaxPages(t *testing.T) {
	t.Parallel()

	client := threePageLister()

	options := &papi.PaginationOptions{
		PageSize: 2,
		MaxPages: 2,
	}
	ctx := context.Background()

	records, err := papi.FetchAllPages(ctx, client, "v1/users", nil, options)
	require.NoError(t, err)
	assert.Len(t, records, 4) // Only first 2 pages
	assert.Len(t, client.requests, 2)
}

func TestStreamPages(t *testing.T) {
	t.Parallel()

	client := threePageLister()

	ctx := context.Background()

	resultChan := papi.StreamPages(ctx, client, "v1/users", nil, &papi.PaginationOptions{PageSize: 2})

	var allRecords []TestRecord

	pageCount := 0

	for result := range resultChan {
		require.NoError(t, result.Err)

		allRecords = append(allRecords, result.Items...)
		pageCount++
	}

	assert.Equal(t, 3, pageCount)
	assert.Len(t, allRecords, 5)
}

func TestStreamPages_ErrorEndsStream(t *testing.T) {
	t.Parallel()

	client := threePageLister()
	client.errOnPage = 2

	resultChan := papi.StreamPages(context.Background(), client, "v1/users", nil, &papi.PaginationOptions{PageSize: 2})

	var results []papi.PageResult[TestRecord]
	for result := range resultChan {
		results = append(results, result)
	}

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Items, 2)
	assert.ErrorIs(t, results[1].Err, errPageFetch)
}

func TestSessionLister_ListPage(t *testing.T) {
	t.Parallel()

	session := &stubSession{
		getFunc: staticBody(`{"results": [{"ID": "1", "Name": "one"}], "total": 1, "current_page": 1}`),
	}
	lister := papi.SessionLister[TestRecord]{Session: session}

	page, err := lister.ListPage(context.Background(), "v1/users", papi.NewQueryParams().WithPage(1).WithPageSize(10))
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "one", page.Results[0].Name)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "1", session.getQueries[0].Get("page_number"))
	assert.Equal(t, "10", session.getQueries[0].Get("page_size"))
}
