package client

import (
	"context"
	"fmt"

	"github.com/pressroom-io/papi/pkg/papi"
)

const contentBase = "v1/content"

// ContentClient implements the papi.ContentClient interface.
type ContentClient struct {
	session papi.Session
}

// NewContentClient creates a new content client.
func NewContentClient(session papi.Session) *ContentClient {
	return &ContentClient{session: session}
}

// List lists content items. The endpoint returns the full set as a JSON
// array; filters narrow it server-side.
func (c *ContentClient) List(ctx context.Context, params *papi.QueryParams) ([]*papi.ContentItem, error) {
	body, err := c.session.Get(ctx, contentBase, queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}

	records, err := papi.DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content list response: %w", err)
	}

	return materializeAll(contentBase, papi.DefaultUIDKey, records, papi.ContentItemFactory(c.session))
}

// Get retrieves a content item by GUID.
func (c *ContentClient) Get(ctx context.Context, guid string) (*papi.ContentItem, error) {
	path := contentBase + "/" + guid

	body, err := c.session.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting content %s: %w", guid, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewContentItem(c.session, path, attrs), nil
}

// Create creates a new content item.
func (c *ContentClient) Create(ctx context.Context, request *papi.ContentCreateRequest) (*papi.ContentItem, error) {
	body, err := c.session.Post(ctx, contentBase, request)
	if err != nil {
		return nil, fmt.Errorf("creating content: %w", err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	path, err := papi.MemberPath(contentBase, attrs, papi.DefaultUIDKey)
	if err != nil {
		return nil, err
	}

	return papi.NewContentItem(c.session, path, attrs), nil
}

// Update applies a partial update to a content item. Nil request fields
// are left unchanged.
func (c *ContentClient) Update(ctx context.Context, guid string, request *papi.ContentUpdateRequest) (*papi.ContentItem, error) {
	path := contentBase + "/" + guid

	body, err := c.session.Patch(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating content %s: %w", guid, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewContentItem(c.session, path, attrs), nil
}

// Delete deletes a content item along with its bundles, permissions, and
// vanity path.
func (c *ContentClient) Delete(ctx context.Context, guid string) error {
	_, err := c.session.Delete(ctx, contentBase+"/"+guid)
	if err != nil {
		return fmt.Errorf("deleting content %s: %w", guid, err)
	}

	return nil
}

// Deploy activates a bundle for a content item. An empty bundleID
// redeploys whatever bundle is currently active. The returned task tracks
// the server-side activation.
func (c *ContentClient) Deploy(ctx context.Context, guid, bundleID string) (*papi.Task, error) {
	request := map[string]string{}
	if bundleID != "" {
		request["bundle_id"] = bundleID
	}

	body, err := c.session.Post(ctx, contentBase+"/"+guid+"/deploy", request)
	if err != nil {
		return nil, fmt.Errorf("deploying content %s: %w", guid, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	taskID, ok := attrs["task_id"].(string)
	if !ok || taskID == "" {
		return nil, fmt.Errorf("deploying content %s: %w", guid, papi.ErrTaskIDMissing)
	}

	return papi.NewTask(c.session, tasksBase+"/"+taskID, papi.Attrs{"id": taskID}), nil
}

// FindBy returns the first content item whose attributes match every
// condition. The boolean reports whether a match existed.
func (c *ContentClient) FindBy(ctx context.Context, conditions map[string]any) (*papi.ContentItem, bool, error) {
	collection := papi.NewCollection[*papi.ContentItem](c.session, contentBase, papi.ContentItemFactory(c.session))

	return collection.FindBy(ctx, papi.Attrs(conditions))
}
