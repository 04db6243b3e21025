package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(context.Background(), &papi.Config{
		APIEndpoint: server.URL,
		APIKey:      "test-key",
	})
	require.NoError(t, err)

	return client
}

func TestUsersClient_List(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "2", r.URL.Query().Get("page_number"))

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"guid": "u-1", "username": "alice", "user_role": "publisher"},
				{"guid": "u-2", "username": "bob", "user_role": "viewer"},
			},
			"total":        2,
			"current_page": 2,
		})
	}))

	users, err := client.Users().List(context.Background(), papi.NewQueryParams().WithPage(2))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username())
	assert.Equal(t, "publisher", users[0].Role())
	assert.Equal(t, "v1/users/u-2", users[1].Path())
}

func TestUsersClient_ListAll(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page_number")

		switch page {
		case "", "1":
			json.NewEncoder(w).Encode(map[string]any{
				"results":      []map[string]any{{"guid": "u-1", "username": "alice"}},
				"total":        2,
				"current_page": 1,
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"results":      []map[string]any{{"guid": "u-2", "username": "bob"}},
				"total":        2,
				"current_page": 2,
			})
		}
	}))

	users, err := client.Users().ListAll(context.Background(), papi.NewQueryParams().WithPageSize(1))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username())
	assert.Equal(t, "bob", users[1].Username())
}

func TestUsersClient_Get(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/u-1", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"guid":       "u-1",
			"username":   "alice",
			"first_name": "Alice",
			"last_name":  "Moreau",
			"locked":     false,
		})
	}))

	user, err := client.Users().Get(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.GUID())
	assert.Equal(t, "Alice Moreau", user.FullName())
	assert.False(t, user.Locked())
}

func TestUsersClient_GetCurrent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{"guid": "u-me", "username": "me"})
	}))

	user, err := client.Users().GetCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-me", user.GUID())
	assert.Equal(t, "v1/users/u-me", user.Path())
}

func TestUsersClient_Update(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/u-1", r.URL.Path)
		assert.Equal(t, "PUT", r.Method)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Alicia", req["first_name"])
		assert.NotContains(t, req, "last_name")

		json.NewEncoder(w).Encode(map[string]any{
			"guid":       "u-1",
			"username":   "alice",
			"first_name": "Alicia",
		})
	}))

	firstName := "Alicia"

	user, err := client.Users().Update(context.Background(), "u-1", &papi.UserUpdateRequest{
		FirstName: &firstName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.FirstName())
}

func TestUsersClient_LockUnlock(t *testing.T) {
	var bodies []map[string]any

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/u-1/lock", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		bodies = append(bodies, req)

		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.Users().Lock(context.Background(), "u-1"))
	require.NoError(t, client.Users().Unlock(context.Background(), "u-1"))

	require.Len(t, bodies, 2)
	assert.Equal(t, true, bodies[0]["locked"])
	assert.Equal(t, false, bodies[1]["locked"])
}

func TestUsersClient_FindBy(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"guid": "u-1", "username": "alice"},
				{"guid": "u-2", "username": "bob"},
			},
			"total":        2,
			"current_page": 1,
		})
	}))

	user, found, err := client.Users().FindBy(context.Background(), map[string]any{"username": "bob"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u-2", user.GUID())

	_, found, err = client.Users().FindBy(context.Background(), map[string]any{"username": "carol"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUsersClient_GetNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"code": 4, "error": "user not found"})
	}))

	_, err := client.Users().Get(context.Background(), "u-missing")
	require.Error(t, err)
	assert.True(t, papi.IsNotFound(err))
}
