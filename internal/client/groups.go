package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pressroom-io/papi/pkg/papi"
)

const groupsBase = "v1/groups"

// GroupsClient implements the papi.GroupsClient interface.
type GroupsClient struct {
	session papi.Session
}

// NewGroupsClient creates a new groups client.
func NewGroupsClient(session papi.Session) *GroupsClient {
	return &GroupsClient{session: session}
}

// List lists one page of groups.
func (c *GroupsClient) List(ctx context.Context, params *papi.QueryParams) ([]*papi.Group, error) {
	body, err := c.session.Get(ctx, groupsBase, queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	var page papi.ListResponse[papi.Attrs]

	err = json.Unmarshal(body, &page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse group list response: %w", err)
	}

	return materializeAll(groupsBase, papi.DefaultUIDKey, page.Results, papi.GroupFactory(c.session))
}

// Get retrieves a group by GUID.
func (c *GroupsClient) Get(ctx context.Context, guid string) (*papi.Group, error) {
	path := groupsBase + "/" + guid

	body, err := c.session.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting group %s: %w", guid, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewGroup(c.session, path, attrs), nil
}

// Create creates a new group.
func (c *GroupsClient) Create(ctx context.Context, request *papi.GroupCreateRequest) (*papi.Group, error) {
	body, err := c.session.Post(ctx, groupsBase, request)
	if err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	path, err := papi.MemberPath(groupsBase, attrs, papi.DefaultUIDKey)
	if err != nil {
		return nil, err
	}

	return papi.NewGroup(c.session, path, attrs), nil
}

// Delete deletes a group. Memberships are removed; member accounts are
// untouched.
func (c *GroupsClient) Delete(ctx context.Context, guid string) error {
	_, err := c.session.Delete(ctx, groupsBase+"/"+guid)
	if err != nil {
		return fmt.Errorf("deleting group %s: %w", guid, err)
	}

	return nil
}

// Members lists the user accounts belonging to a group.
func (c *GroupsClient) Members(ctx context.Context, guid string, params *papi.QueryParams) ([]*papi.User, error) {
	membersPath := groupsBase + "/" + guid + "/members"

	body, err := c.session.Get(ctx, membersPath, queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("listing members of group %s: %w", guid, err)
	}

	var page papi.ListResponse[papi.Attrs]

	err = json.Unmarshal(body, &page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse group member response: %w", err)
	}

	// Member records are user records; handles point at the user endpoint
	// so Refresh and Update land in the right place.
	return materializeAll(usersBase, papi.DefaultUIDKey, page.Results, papi.UserFactory(c.session))
}

// AddMember adds a user to a group.
func (c *GroupsClient) AddMember(ctx context.Context, guid, userGUID string) error {
	_, err := c.session.Post(ctx, groupsBase+"/"+guid+"/members", map[string]string{"user_guid": userGUID})
	if err != nil {
		return fmt.Errorf("adding user %s to group %s: %w", userGUID, guid, err)
	}

	return nil
}

// RemoveMember removes a user from a group.
func (c *GroupsClient) RemoveMember(ctx context.Context, guid, userGUID string) error {
	_, err := c.session.Delete(ctx, groupsBase+"/"+guid+"/members/"+userGUID)
	if err != nil {
		return fmt.Errorf("removing user %s from group %s: %w", userGUID, guid, err)
	}

	return nil
}
