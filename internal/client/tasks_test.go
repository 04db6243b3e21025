package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasksClient_Get(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks/t-1", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("first"))
		assert.Equal(t, "5", r.URL.Query().Get("wait"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":       "t-1",
			"finished": false,
			"output":   []string{"building", "uploading"},
			"last":     5,
		})
	}))

	task, err := client.Tasks().Get(context.Background(), "t-1", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, "t-1", task.ID())
	assert.False(t, task.Finished())
	assert.Equal(t, []string{"building", "uploading"}, task.Output())
	assert.Equal(t, 5, task.Last())
}

func TestTasksClient_GetOmitsZeroParams(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)

		json.NewEncoder(w).Encode(map[string]any{"id": "t-1", "finished": true})
	}))

	task, err := client.Tasks().Get(context.Background(), "t-1", 0, 0)
	require.NoError(t, err)
	assert.True(t, task.Finished())
}

func TestTasksClient_WaitFor(t *testing.T) {
	var polls int64

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt64(&polls, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"id":       "t-1",
			"finished": count >= 3,
			"code":     0,
		})
	}))

	task, err := client.Tasks().WaitFor(context.Background(), "t-1", papi.PollOptions{
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Backoff:     1.5,
	})
	require.NoError(t, err)
	assert.True(t, task.Finished())
	assert.GreaterOrEqual(t, atomic.LoadInt64(&polls), int64(3))
}

func TestTasksClient_WaitForContextCancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "t-1", "finished": false})
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Tasks().WaitFor(ctx, "t-1", papi.PollOptions{
		InitialWait: time.Millisecond,
		MaxWait:     time.Millisecond,
		Backoff:     1.0,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
