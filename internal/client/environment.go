package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pressroom-io/papi/pkg/papi"
)

// EnvironmentClient implements the papi.EnvironmentClient interface.
// Environment variable values are write-only; the server only ever
// reports the variable names.
type EnvironmentClient struct {
	session papi.Session
}

// NewEnvironmentClient creates a new environment client.
func NewEnvironmentClient(session papi.Session) *EnvironmentClient {
	return &EnvironmentClient{session: session}
}

func environmentPath(contentGUID string) string {
	return contentBase + "/" + contentGUID + "/environment"
}

// List returns the names of the environment variables set on a content
// item.
func (c *EnvironmentClient) List(ctx context.Context, contentGUID string) ([]string, error) {
	body, err := c.session.Get(ctx, environmentPath(contentGUID), nil)
	if err != nil {
		return nil, fmt.Errorf("listing environment of content %s: %w", contentGUID, err)
	}

	return decodeNames(body)
}

// Set applies a partial update: each entry with a value is set, each
// entry with a nil value is deleted, and variables not named are left
// alone. The returned names are the full set after the update.
func (c *EnvironmentClient) Set(ctx context.Context, contentGUID string, vars map[string]*string) ([]string, error) {
	body, err := c.session.Patch(ctx, environmentPath(contentGUID), vars)
	if err != nil {
		return nil, fmt.Errorf("updating environment of content %s: %w", contentGUID, err)
	}

	return decodeNames(body)
}

// Replace swaps the entire variable set for the given one.
func (c *EnvironmentClient) Replace(ctx context.Context, contentGUID string, vars map[string]string) ([]string, error) {
	body, err := c.session.Put(ctx, environmentPath(contentGUID), vars)
	if err != nil {
		return nil, fmt.Errorf("replacing environment of content %s: %w", contentGUID, err)
	}

	return decodeNames(body)
}

// Clear removes every environment variable from a content item.
func (c *EnvironmentClient) Clear(ctx context.Context, contentGUID string) error {
	_, err := c.session.Put(ctx, environmentPath(contentGUID), map[string]string{})
	if err != nil {
		return fmt.Errorf("clearing environment of content %s: %w", contentGUID, err)
	}

	return nil
}

// decodeNames decodes the JSON array of variable names the environment
// endpoints respond with.
func decodeNames(body []byte) ([]string, error) {
	var names []string

	err := json.Unmarshal(body, &names)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment response: %w", err)
	}

	return names, nil
}
