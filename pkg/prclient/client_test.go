package prclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/pressroom-io/papi/pkg/prclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		config := &papi.Config{
			APIEndpoint: "https://press.example.com",
		}

		client, err := prclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := prclient.New(context.Background(), nil)
		assert.ErrorIs(t, err, papi.ErrConfigRequired)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := prclient.New(context.Background(), &papi.Config{})
		assert.ErrorIs(t, err, papi.ErrEndpointRequired)
	})
}

func TestNew_NormalizesEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		want     string
		wantErr  error
	}{
		{
			name:     "adds https scheme",
			endpoint: "press.example.com",
			want:     "https://press.example.com",
		},
		{
			name:     "trims trailing slash",
			endpoint: "https://press.example.com/",
			want:     "https://press.example.com",
		},
		{
			name:     "keeps explicit http",
			endpoint: "http://localhost:3939",
			want:     "http://localhost:3939",
		},
		{
			name:     "rejects missing host",
			endpoint: "https://",
			wantErr:  papi.ErrNoHostInURL,
		},
		{
			name:     "rejects bare http scheme",
			endpoint: "http://",
			wantErr:  papi.ErrNoHostInURL,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config := &papi.Config{APIEndpoint: tt.endpoint}

			_, err := prclient.New(context.Background(), config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, config.APIEndpoint)
		})
	}
}

func TestNew_SkipTLSRequiresDevMode(t *testing.T) {
	_, err := prclient.New(context.Background(), &papi.Config{
		APIEndpoint:   "https://press.example.com",
		SkipTLSVerify: true,
	})
	assert.ErrorIs(t, err, papi.ErrSkipTLSOnlyInDev)
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := prclient.NewWithEndpoint(context.Background(), "https://press.example.com")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithAPIKey(t *testing.T) {
	t.Parallel()

	client, err := prclient.NewWithAPIKey(context.Background(), "https://press.example.com", "test-key")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := prclient.NewWithToken(context.Background(), "https://press.example.com", "test-token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/v1/server_settings":
			_ = json.NewEncoder(writer).Encode(papi.ServerSettings{
				Version:  "2024.09.0",
				Hostname: "press.example.com",
			})
		case "/v1/user":
			_ = json.NewEncoder(writer).Encode(map[string]any{
				"guid":     "u-1",
				"username": "alice",
			})
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := prclient.NewWithAPIKey(context.Background(), server.URL, "test-key")
	require.NoError(t, err)

	settings, err := client.Settings().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024.09.0", settings.Version)

	user, err := client.Users().GetCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username())
}
