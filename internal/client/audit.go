package client

import (
	"context"
	"fmt"

	"github.com/pressroom-io/papi/pkg/papi"
)

const auditBase = "v1/audit_logs"

// AuditLogsClient implements the papi.AuditLogsClient interface. The
// audit trail is cursor-paginated and append-only.
type AuditLogsClient struct {
	session papi.Session
}

// NewAuditLogsClient creates a new audit logs client.
func NewAuditLogsClient(session papi.Session) *AuditLogsClient {
	return &AuditLogsClient{session: session}
}

func (c *AuditLogsClient) paginator(params *papi.QueryParams, maxPages int) *papi.CursorPaginator[papi.AuditEntry] {
	paginator := papi.NewCursorPaginator[papi.AuditEntry](
		papi.SessionCursorLister[papi.AuditEntry]{Session: c.session}, auditBase, params)

	if maxPages > 0 {
		paginator = paginator.WithMaxPages(maxPages)
	}

	return paginator
}

// List fetches one page of audit entries. The returned page carries the
// cursor for the next call.
func (c *AuditLogsClient) List(ctx context.Context, params *papi.QueryParams) (*papi.CursorPage[papi.AuditEntry], error) {
	page, err := c.paginator(params, 0).NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}

	return page, nil
}

// All walks the audit trail from the cursor in params to the end.
// maxPages caps the walk; zero is unbounded.
func (c *AuditLogsClient) All(ctx context.Context, params *papi.QueryParams, maxPages int) ([]papi.AuditEntry, error) {
	entries, err := c.paginator(params, maxPages).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}

	return entries, nil
}

// ForEach streams audit entries to fn one at a time, fetching pages as
// needed. A non-nil return from fn stops the walk.
func (c *AuditLogsClient) ForEach(ctx context.Context, params *papi.QueryParams, maxPages int, fn func(papi.AuditEntry) error) error {
	err := c.paginator(params, maxPages).ForEach(ctx, fn)
	if err != nil {
		return fmt.Errorf("walking audit logs: %w", err)
	}

	return nil
}
