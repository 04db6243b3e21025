package client

import (
	"context"
	"fmt"

	"github.com/pressroom-io/papi/pkg/papi"
)

// BundlesClient implements the papi.BundlesClient interface. Bundles are
// scoped under their content item and identified by numeric id.
type BundlesClient struct {
	session papi.Session
}

// NewBundlesClient creates a new bundles client.
func NewBundlesClient(session papi.Session) *BundlesClient {
	return &BundlesClient{session: session}
}

func bundlesPath(contentGUID string) string {
	return contentBase + "/" + contentGUID + "/bundles"
}

// List lists the bundles uploaded for a content item, newest first.
func (c *BundlesClient) List(ctx context.Context, contentGUID string) ([]*papi.Bundle, error) {
	base := bundlesPath(contentGUID)

	body, err := c.session.Get(ctx, base, nil)
	if err != nil {
		return nil, fmt.Errorf("listing bundles for content %s: %w", contentGUID, err)
	}

	records, err := papi.DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundle list response: %w", err)
	}

	return materializeAll(base, "id", records, papi.BundleFactory(c.session))
}

// Get retrieves a bundle by id.
func (c *BundlesClient) Get(ctx context.Context, contentGUID, bundleID string) (*papi.Bundle, error) {
	path := bundlesPath(contentGUID) + "/" + bundleID

	body, err := c.session.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting bundle %s of content %s: %w", bundleID, contentGUID, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewBundle(c.session, path, attrs), nil
}

// Delete deletes a bundle. The active bundle cannot be deleted.
func (c *BundlesClient) Delete(ctx context.Context, contentGUID, bundleID string) error {
	_, err := c.session.Delete(ctx, bundlesPath(contentGUID)+"/"+bundleID)
	if err != nil {
		return fmt.Errorf("deleting bundle %s of content %s: %w", bundleID, contentGUID, err)
	}

	return nil
}

// Active returns the content item's currently deployed bundle. The
// boolean reports whether one is active; a never-deployed item has none.
func (c *BundlesClient) Active(ctx context.Context, contentGUID string) (*papi.Bundle, bool, error) {
	collection := papi.NewKeyedCollection[*papi.Bundle](c.session, bundlesPath(contentGUID), "id", papi.BundleFactory(c.session))

	return collection.FindBy(ctx, papi.Attrs{"active": true})
}
