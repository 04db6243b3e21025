package papi_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Accessors(t *testing.T) {
	t.Parallel()

	user := papi.NewUser(nil, "v1/users/u-1", papi.Attrs{
		"guid":       "u-1",
		"username":   "carlos",
		"first_name": "Carlos",
		"last_name":  "Rey",
		"email":      "carlos@example.com",
		"user_role":  "publisher",
		"locked":     true,
	})

	assert.Equal(t, "u-1", user.GUID())
	assert.Equal(t, "carlos", user.Username())
	assert.Equal(t, "Carlos Rey", user.FullName())
	assert.Equal(t, "carlos@example.com", user.Email())
	assert.Equal(t, "publisher", user.Role())
	assert.True(t, user.Locked())
}

func TestUser_FullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		attrs    papi.Attrs
		expected string
	}{
		{
			name:     "both names",
			attrs:    papi.Attrs{"first_name": "Ada", "last_name": "Diaz"},
			expected: "Ada Diaz",
		},
		{
			name:     "first only",
			attrs:    papi.Attrs{"first_name": "Ada"},
			expected: "Ada",
		},
		{
			name:     "last only",
			attrs:    papi.Attrs{"last_name": "Diaz"},
			expected: "Diaz",
		},
		{
			name:     "neither falls back to username",
			attrs:    papi.Attrs{"username": "adiaz"},
			expected: "adiaz",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user := papi.NewUser(nil, "v1/users/u-1", tt.attrs)
			assert.Equal(t, tt.expected, user.FullName())
		})
	}
}

func TestContentItem_Accessors(t *testing.T) {
	t.Parallel()

	item := papi.NewContentItem(nil, "v1/content/c-1", papi.Attrs{
		"guid":          "c-1",
		"name":          "quarterly-report",
		"title":         "Quarterly Report",
		"mode":          "static",
		"access_type":   "acl",
		"owner_guid":    "u-1",
		"bundle_id":     "42",
		"content_url":   "https://press.example.com/content/c-1/",
		"dashboard_url": "https://press.example.com/connect/#/apps/c-1",
	})

	assert.Equal(t, "c-1", item.GUID())
	assert.Equal(t, "quarterly-report", item.Name())
	assert.Equal(t, "Quarterly Report", item.Title())
	assert.Equal(t, "static", item.Mode())
	assert.Equal(t, "acl", item.AccessType())
	assert.Equal(t, "u-1", item.OwnerGUID())
	assert.Equal(t, "42", item.BundleID())
	assert.Equal(t, "https://press.example.com/content/c-1/", item.ContentURL())
}

func TestNumericIdentifiers(t *testing.T) {
	t.Parallel()

	// Servers report some ids as JSON numbers, which decode as float64.
	tag := papi.NewTag(nil, "v1/tags/7", papi.Attrs{
		"id":        float64(7),
		"name":      "finance",
		"parent_id": float64(2),
	})

	assert.Equal(t, "7", tag.ID())
	assert.Equal(t, "2", tag.ParentID())
	assert.Equal(t, "finance", tag.Name())

	bundle := papi.NewBundle(nil, "v1/content/c-1/bundles/42", papi.Attrs{
		"id":           float64(42),
		"content_guid": "c-1",
		"size":         float64(1024),
		"active":       true,
	})

	assert.Equal(t, "42", bundle.ID())
	assert.Equal(t, 1024, bundle.Size())
	assert.True(t, bundle.Active())
}

func TestPermission_Accessors(t *testing.T) {
	t.Parallel()

	perm := papi.NewPermission(nil, "v1/content/c-1/permissions/p-1", papi.Attrs{
		"id":             "p-1",
		"content_guid":   "c-1",
		"principal_guid": "u-2",
		"principal_type": "user",
		"role":           "editor",
	})

	assert.Equal(t, "p-1", perm.ID())
	assert.Equal(t, "c-1", perm.ContentGUID())
	assert.Equal(t, "u-2", perm.PrincipalGUID())
	assert.Equal(t, "user", perm.PrincipalType())
	assert.Equal(t, "editor", perm.Role())
}

func TestVanity_Accessors(t *testing.T) {
	t.Parallel()

	vanity := papi.NewVanity(nil, "v1/content/c-1/vanity", papi.Attrs{
		"content_guid": "c-1",
		"path":         "/reports/quarterly/",
	})

	assert.Equal(t, "c-1", vanity.ContentGUID())
	assert.Equal(t, "/reports/quarterly/", vanity.PathPrefix())
}

func TestFactories_MaterializeThroughCollection(t *testing.T) {
	t.Parallel()

	session := &stubSession{
		getFunc: func(path string, _ url.Values) ([]byte, error) {
			if path != "v1/tags" {
				return nil, errStubCall
			}

			return []byte(`[{"id": 1, "name": "finance"}, {"id": 2, "name": "marketing"}]`), nil
		},
	}

	collection := papi.NewKeyedCollection(session, "v1/tags", "id", papi.TagFactory(session))

	tags, err := collection.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "1", tags[0].ID())
	assert.Equal(t, "finance", tags[0].Name())
	assert.Equal(t, "v1/tags/1", tags[0].Path())
}
