package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pressroom-io/papi/pkg/papi"
)

const usersBase = "v1/users"

// UsersClient implements the papi.UsersClient interface.
type UsersClient struct {
	session papi.Session
}

// NewUsersClient creates a new users client.
func NewUsersClient(session papi.Session) *UsersClient {
	return &UsersClient{session: session}
}

// List lists one page of user accounts.
func (c *UsersClient) List(ctx context.Context, params *papi.QueryParams) ([]*papi.User, error) {
	body, err := c.session.Get(ctx, usersBase, queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var page papi.ListResponse[papi.Attrs]

	err = json.Unmarshal(body, &page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user list response: %w", err)
	}

	return materializeAll(usersBase, papi.DefaultUIDKey, page.Results, papi.UserFactory(c.session))
}

// ListAll lists every user account, walking all pages.
func (c *UsersClient) ListAll(ctx context.Context, params *papi.QueryParams) ([]*papi.User, error) {
	records, err := papi.FetchAllPages[papi.Attrs](ctx, papi.SessionLister[papi.Attrs]{Session: c.session}, usersBase, params, &papi.PaginationOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return materializeAll(usersBase, papi.DefaultUIDKey, records, papi.UserFactory(c.session))
}

// Get retrieves a user account by GUID.
func (c *UsersClient) Get(ctx context.Context, guid string) (*papi.User, error) {
	path := usersBase + "/" + guid

	body, err := c.session.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", guid, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewUser(c.session, path, attrs), nil
}

// GetCurrent retrieves the account the credentials authenticate as.
func (c *UsersClient) GetCurrent(ctx context.Context) (*papi.User, error) {
	body, err := c.session.Get(ctx, "v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	guid, _ := attrs["guid"].(string)

	return papi.NewUser(c.session, usersBase+"/"+guid, attrs), nil
}

// Update updates a user's profile fields. Nil request fields are left
// unchanged.
func (c *UsersClient) Update(ctx context.Context, guid string, request *papi.UserUpdateRequest) (*papi.User, error) {
	path := usersBase + "/" + guid

	body, err := c.session.Put(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("updating user %s: %w", guid, err)
	}

	attrs, err := decodeAttrs(body)
	if err != nil {
		return nil, err
	}

	return papi.NewUser(c.session, path, attrs), nil
}

// Lock disables a user account.
func (c *UsersClient) Lock(ctx context.Context, guid string) error {
	return c.setLocked(ctx, guid, true)
}

// Unlock re-enables a locked user account.
func (c *UsersClient) Unlock(ctx context.Context, guid string) error {
	return c.setLocked(ctx, guid, false)
}

func (c *UsersClient) setLocked(ctx context.Context, guid string, locked bool) error {
	_, err := c.session.Post(ctx, usersBase+"/"+guid+"/lock", map[string]bool{"locked": locked})
	if err != nil {
		return fmt.Errorf("setting lock state for user %s: %w", guid, err)
	}

	return nil
}

// FindBy returns the first user whose attributes match every condition.
// The boolean reports whether a match existed.
func (c *UsersClient) FindBy(ctx context.Context, conditions map[string]any) (*papi.User, bool, error) {
	collection := papi.NewCollection[*papi.User](c.session, usersBase, papi.UserFactory(c.session)).
		WithOffsetPagination(0)

	return collection.FindBy(ctx, papi.Attrs(conditions))
}
