// Package papi provides types, interfaces, and helpers for working with the
// Pressroom publishing API.
//
// # Overview
//
// The papi package defines the domain types (e.g., User, ContentItem, Bundle,
// Task) and the building blocks the resource-oriented clients are made of:
// attribute-backed resources, keyed collections, offset and cursor paginators,
// and a task poller. A concrete implementation of the clients is provided by
// the prclient package, which wires configuration, transport, authentication,
// and resource discovery. Most consumers should import prclient to construct
// a client and then interact with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/pressroom-io/papi/pkg/papi"
//	  "github.com/pressroom-io/papi/pkg/prclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := prclient.New(&papi.Config{Endpoint: "https://pressroom.example.com", APIKey: "..."})
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of users
//	  users, err := cli.Users().List(ctx, papi.NewQueryParams().WithPageSize(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = users
//	}
//
// # Resources and collections
//
// Resource wraps a single API record as a locked attribute set: attributes
// are read through accessors, replaced wholesale with ReplaceAttrs, and the
// record is removed with Destroy. Collection and its Find helpers fetch
// records fresh from the server on every call, so results never go stale
// between lookups.
//
// # Queries and pagination
//
// Use QueryParams to express common list options (page number, page size,
// ordering, filters). Offset-paginated endpoints report a result total and
// are walked with OffsetPaginator or the iterator helpers:
//
//	it := papi.NewPaginationIterator(ctx, cli.Users(), "/v1/users", papi.NewQueryParams())
//	for it.HasNext() {
//	  user, err := it.Next()
//	  if err != nil { break }
//	  _ = user
//	}
//
// or fetch all results at once:
//
//	all, err := papi.FetchAllPages(ctx, cli.Users(), "/v1/users", nil, papi.DefaultPaginationOptions())
//	if err != nil { /* handle error */ }
//	_ = all
//
// Cursor-paginated endpoints (such as the audit log) are walked forward-only
// with CursorPaginator; they stop when the server omits the next cursor.
//
// # Tasks
//
// Long-running server work is represented by Task. WaitFor polls the task
// with exponential backoff until the server marks it finished; a finished
// task that failed is reported through its ErrorMessage, not through an
// error return.
//
// # Errors
//
// API errors are represented by APIError and HTTPError. Helpers such as
// IsNotFound, IsUnauthorized, and IsForbidden make it easy to branch on
// common cases.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, auth headers, metrics, circuit breaking) and a
// simple pluggable Cache abstraction. The prclient package composes these
// pieces for a sensible default client; applications with advanced needs can
// also use these primitives directly.
package papi
