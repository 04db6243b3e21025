package client

import (
	"context"
	"fmt"

	"github.com/pressroom-io/papi/pkg/papi"
)

// VanitiesClient implements the papi.VanitiesClient interface. A content
// item has at most one vanity path, so the per-content endpoint is a
// singleton.
type VanitiesClient struct {
	session papi.Session
}

// NewVanitiesClient creates a new vanities client.
func NewVanitiesClient(session papi.Session) *VanitiesClient {
	return &VanitiesClient{session: session}
}

func vanityPath(contentGUID string) string {
	return contentBase + "/" + contentGUID + "/vanity"
}

// Get retrieves the vanity path of a content item.
func (c *VanitiesClient) Get(ctx context.Context, contentGUID string) (*papi.Vanity, error) {
	path := vanityPath(contentGUID)

	body, err := c.session.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting vanity of content %s: %w", contentGUID, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewVanity(c.session, path, attrs), nil
}

// Set assigns a vanity path to a content item, replacing any previous
// one. With Force the path is stolen from whichever item holds it.
func (c *VanitiesClient) Set(ctx context.Context, contentGUID string, request *papi.VanitySetRequest) (*papi.Vanity, error) {
	path := vanityPath(contentGUID)

	body, err := c.session.Put(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("setting vanity of content %s: %w", contentGUID, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewVanity(c.session, path, attrs), nil
}

// Delete removes the vanity path from a content item. The item stays
// reachable at its canonical URL.
func (c *VanitiesClient) Delete(ctx context.Context, contentGUID string) error {
	_, err := c.session.Delete(ctx, vanityPath(contentGUID))
	if err != nil {
		return fmt.Errorf("deleting vanity of content %s: %w", contentGUID, err)
	}

	return nil
}

// List returns every vanity path on the server. Requires administrator
// privileges.
func (c *VanitiesClient) List(ctx context.Context) ([]*papi.Vanity, error) {
	body, err := c.session.Get(ctx, "v1/vanities", nil)
	if err != nil {
		return nil, fmt.Errorf("listing vanities: %w", err)
	}

	records, err := papi.DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vanity list response: %w", err)
	}

	vanities := make([]*papi.Vanity, 0, len(records))

	for _, record := range records {
		contentGUID, ok := record["content_guid"].(string)
		if !ok || contentGUID == "" {
			return nil, fmt.Errorf("vanity list: %w", papi.ErrUIDKeyMissing)
		}

		vanities = append(vanities, papi.NewVanity(c.session, vanityPath(contentGUID), record))
	}

	return vanities, nil
}
