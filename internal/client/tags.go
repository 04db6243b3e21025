package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pressroom-io/papi/pkg/papi"
)

const tagsBase = "v1/tags"

// TagsClient implements the papi.TagsClient interface. Tags form a tree;
// top-level tags act as categories.
type TagsClient struct {
	session papi.Session
}

// NewTagsClient creates a new tags client.
func NewTagsClient(session papi.Session) *TagsClient {
	return &TagsClient{session: session}
}

// List lists every tag on the server.
func (c *TagsClient) List(ctx context.Context) ([]*papi.Tag, error) {
	return c.list(ctx, nil)
}

// Children lists the direct children of a tag.
func (c *TagsClient) Children(ctx context.Context, tagID string) ([]*papi.Tag, error) {
	return c.list(ctx, url.Values{"parent_id": []string{tagID}})
}

func (c *TagsClient) list(ctx context.Context, query url.Values) ([]*papi.Tag, error) {
	body, err := c.session.Get(ctx, tagsBase, query)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	records, err := papi.DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tag list response: %w", err)
	}

	return materializeAll(tagsBase, "id", records, papi.TagFactory(c.session))
}

// Get retrieves a tag by id.
func (c *TagsClient) Get(ctx context.Context, tagID string) (*papi.Tag, error) {
	path := tagsBase + "/" + tagID

	body, err := c.session.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting tag %s: %w", tagID, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewTag(c.session, path, attrs), nil
}

// Create creates a tag, top-level when the request names no parent.
func (c *TagsClient) Create(ctx context.Context, request *papi.TagCreateRequest) (*papi.Tag, error) {
	body, err := c.session.Post(ctx, tagsBase, request)
	if err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	path, err := papi.MemberPath(tagsBase, attrs, "id")
	if err != nil {
		return nil, err
	}

	return papi.NewTag(c.session, path, attrs), nil
}

// Delete deletes a tag and its whole subtree. Content assignments to the
// deleted tags are removed.
func (c *TagsClient) Delete(ctx context.Context, tagID string) error {
	_, err := c.session.Delete(ctx, tagsBase+"/"+tagID)
	if err != nil {
		return fmt.Errorf("deleting tag %s: %w", tagID, err)
	}

	return nil
}

// ListContentTags lists the tags assigned to a content item.
func (c *TagsClient) ListContentTags(ctx context.Context, contentGUID string) ([]*papi.Tag, error) {
	body, err := c.session.Get(ctx, contentBase+"/"+contentGUID+"/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("listing tags of content %s: %w", contentGUID, err)
	}

	records, err := papi.DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content tag response: %w", err)
	}

	// Assignments carry full tag records; handles point at the tag
	// endpoint.
	return materializeAll(tagsBase, "id", records, papi.TagFactory(c.session))
}

// AddContentTag assigns a tag to a content item.
func (c *TagsClient) AddContentTag(ctx context.Context, contentGUID, tagID string) error {
	_, err := c.session.Post(ctx, contentBase+"/"+contentGUID+"/tags", map[string]string{"tag_id": tagID})
	if err != nil {
		return fmt.Errorf("tagging content %s with tag %s: %w", contentGUID, tagID, err)
	}

	return nil
}

// RemoveContentTag removes a tag assignment from a content item. The tag
// itself survives.
func (c *TagsClient) RemoveContentTag(ctx context.Context, contentGUID, tagID string) error {
	_, err := c.session.Delete(ctx, contentBase+"/"+contentGUID+"/tags/"+tagID)
	if err != nil {
		return fmt.Errorf("untagging content %s from tag %s: %w", contentGUID, tagID, err)
	}

	return nil
}
