package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundlesClient_List(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/content/c-1/bundles", r.URL.Path)

		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 2, "content_guid": "c-1", "active": true, "size": 2048},
			{"id": 1, "content_guid": "c-1", "active": false, "size": 1024},
		})
	}))

	bundles, err := client.Bundles().List(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, "2", bundles[0].ID())
	assert.True(t, bundles[0].Active())
	assert.Equal(t, "v1/content/c-1/bundles/1", bundles[1].Path())
}

func TestBundlesClient_Get(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/content/c-1/bundles/7", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{"id": 7, "content_guid": "c-1", "size": 4096})
	}))

	bundle, err := client.Bundles().Get(context.Background(), "c-1", "7")
	require.NoError(t, err)
	assert.Equal(t, "7", bundle.ID())
	assert.Equal(t, 4096, bundle.Size())
}

func TestBundlesClient_Delete(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/content/c-1/bundles/7", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)

		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.Bundles().Delete(context.Background(), "c-1", "7"))
}

func TestBundlesClient_Active(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "active": false},
			{"id": 2, "active": true},
		})
	}))

	bundle, found, err := client.Bundles().Active(context.Background(), "c-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2", bundle.ID())
}

func TestBundlesClient_ActiveNone(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "active": false},
		})
	}))

	_, found, err := client.Bundles().Active(context.Background(), "c-1")
	require.NoError(t, err)
	assert.False(t, found)
}
