package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pressroom-io/papi/pkg/papi"
)

const tasksBase = "v1/tasks"

// TasksClient implements the papi.TasksClient interface.
type TasksClient struct {
	session papi.Session
}

// NewTasksClient creates a new tasks client.
func NewTasksClient(session papi.Session) *TasksClient {
	return &TasksClient{session: session}
}

// Get retrieves a task snapshot. first skips output lines already seen;
// wait long-polls up to that many seconds for new activity. Zero means
// the parameter is omitted.
func (c *TasksClient) Get(ctx context.Context, taskID string, first, wait int) (*papi.Task, error) {
	query := url.Values{}

	if first > 0 {
		query.Set("first", strconv.Itoa(first))
	}

	if wait > 0 {
		query.Set("wait", strconv.Itoa(wait))
	}

	if len(query) == 0 {
		query = nil
	}

	task := papi.NewTask(c.session, tasksBase+"/"+taskID, papi.Attrs{"id": taskID})

	err := task.Update(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", taskID, err)
	}

	return task, nil
}

// WaitFor polls a task until it finishes or the context is done. The
// returned task carries the final snapshot.
func (c *TasksClient) WaitFor(ctx context.Context, taskID string, opts papi.PollOptions) (*papi.Task, error) {
	task, err := papi.OpenTask(ctx, c.session, tasksBase+"/"+taskID)
	if err != nil {
		return nil, err
	}

	err = task.WaitFor(ctx, opts)
	if err != nil {
		return task, fmt.Errorf("waiting for task %s: %w", taskID, err)
	}

	return task, nil
}
