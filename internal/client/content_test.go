package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentClient_List(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/content", r.URL.Path)
		assert.Equal(t, "u-owner", r.URL.Query().Get("owner_guid"))

		json.NewEncoder(w).Encode([]map[string]any{
			{"guid": "c-1", "name": "quarterly-report", "app_mode": "report"},
			{"guid": "c-2", "name": "dashboard", "app_mode": "app"},
		})
	}))

	params := papi.NewQueryParams().WithFilter("owner_guid", "u-owner")

	items, err := client.Content().List(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "quarterly-report", items[0].Name())
	assert.Equal(t, "v1/content/c-2", items[1].Path())
}

func TestContentClient_Create(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/content", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var req papi.ContentCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "quarterly-report", req.Name)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"guid":  "c-new",
			"name":  req.Name,
			"title": req.Title,
		})
	}))

	item, err := client.Content().Create(context.Background(), &papi.ContentCreateRequest{
		Name:  "quarterly-report",
		Title: "Quarterly Report",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-new", item.GUID())
	assert.Equal(t, "Quarterly Report", item.Title())
}

func TestContentClient_Update(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/content/c-1", r.URL.Path)
		assert.Equal(t, "PATCH", r.Method)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "acl", req["access_type"])
		assert.NotContains(t, req, "title")

		json.NewEncoder(w).Encode(map[string]any{"guid": "c-1", "access_type": "acl"})
	}))

	accessType := "acl"

	item, err := client.Content().Update(context.Background(), "c-1", &papi.ContentUpdateRequest{
		AccessType: &accessType,
	})
	require.NoError(t, err)
	assert.Equal(t, "acl", item.AccessType())
}

func TestContentClient_Delete(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/content/c-1", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)

		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.Content().Delete(context.Background(), "c-1"))
}

func TestContentClient_Deploy(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/content/c-1/deploy", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "12", req["bundle_id"])

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{"task_id": "t-77"})
	}))

	task, err := client.Content().Deploy(context.Background(), "c-1", "12")
	require.NoError(t, err)
	assert.Equal(t, "t-77", task.ID())
	assert.Equal(t, "v1/tasks/t-77", task.Path())
}

func TestContentClient_DeployRedeployOmitsBundle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotContains(t, req, "bundle_id")

		json.NewEncoder(w).Encode(map[string]any{"task_id": "t-78"})
	}))

	task, err := client.Content().Deploy(context.Background(), "c-1", "")
	require.NoError(t, err)
	assert.Equal(t, "t-78", task.ID())
}

func TestContentClient_DeployMissingTaskID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))

	_, err := client.Content().Deploy(context.Background(), "c-1", "12")
	require.Error(t, err)
	assert.ErrorIs(t, err, papi.ErrTaskIDMissing)
}

func TestContentClient_FindBy(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"guid": "c-1", "name": "quarterly-report"},
			{"guid": "c-2", "name": "dashboard"},
		})
	}))

	item, found, err := client.Content().FindBy(context.Background(), map[string]any{"name": "dashboard"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "c-2", item.GUID())
}
