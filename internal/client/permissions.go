package client

import (
	"context"
	"fmt"

	"github.com/pressroom-io/papi/pkg/papi"
)

// PermissionsClient implements the papi.PermissionsClient interface.
// Permissions are scoped under their content item and identified by
// numeric id.
type PermissionsClient struct {
	session papi.Session
}

// NewPermissionsClient creates a new permissions client.
func NewPermissionsClient(session papi.Session) *PermissionsClient {
	return &PermissionsClient{session: session}
}

func permissionsPath(contentGUID string) string {
	return contentBase + "/" + contentGUID + "/permissions"
}

// List lists the access rules of a content item.
func (c *PermissionsClient) List(ctx context.Context, contentGUID string) ([]*papi.Permission, error) {
	base := permissionsPath(contentGUID)

	body, err := c.session.Get(ctx, base, nil)
	if err != nil {
		return nil, fmt.Errorf("listing permissions for content %s: %w", contentGUID, err)
	}

	records, err := papi.DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse permission list response: %w", err)
	}

	return materializeAll(base, "id", records, papi.PermissionFactory(c.session))
}

// Get retrieves a single access rule by id.
func (c *PermissionsClient) Get(ctx context.Context, contentGUID, permissionID string) (*papi.Permission, error) {
	path := permissionsPath(contentGUID) + "/" + permissionID

	body, err := c.session.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting permission %s of content %s: %w", permissionID, contentGUID, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewPermission(c.session, path, attrs), nil
}

// Create grants a user or group access to a content item.
func (c *PermissionsClient) Create(ctx context.Context, contentGUID string, request *papi.PermissionCreateRequest) (*papi.Permission, error) {
	base := permissionsPath(contentGUID)

	body, err := c.session.Post(ctx, base, request)
	if err != nil {
		return nil, fmt.Errorf("creating permission on content %s: %w", contentGUID, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	path, err := papi.MemberPath(base, attrs, "id")
	if err != nil {
		return nil, err
	}

	return papi.NewPermission(c.session, path, attrs), nil
}

// Update changes the role of an existing access rule.
func (c *PermissionsClient) Update(ctx context.Context, contentGUID, permissionID string, request *papi.PermissionUpdateRequest) (*papi.Permission, error) {
	path := permissionsPath(contentGUID) + "/" + permissionID

	body, err := c.session.Put(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating permission %s of content %s: %w", permissionID, contentGUID, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewPermission(c.session, path, attrs), nil
}

// Delete revokes an access rule.
func (c *PermissionsClient) Delete(ctx context.Context, contentGUID, permissionID string) error {
	_, err := c.session.Delete(ctx, permissionsPath(contentGUID)+"/"+permissionID)
	if err != nil {
		return fmt.Errorf("deleting permission %s of content %s: %w", permissionID, contentGUID, err)
	}

	return nil
}

// FindByUser returns the access rule naming the given principal, user or
// group. The boolean reports whether one existed.
func (c *PermissionsClient) FindByUser(ctx context.Context, contentGUID, principalGUID string) (*papi.Permission, bool, error) {
	collection := papi.NewKeyedCollection[*papi.Permission](c.session, permissionsPath(contentGUID), "id", papi.PermissionFactory(c.session))

	return collection.FindBy(ctx, papi.Attrs{"principal_guid": principalGUID})
}
