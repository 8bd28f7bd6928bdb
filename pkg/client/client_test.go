package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oramasearch/oramacore-client-go/pkg/auth"
)

func newTestClient(serverURL string) *Client {
	a := auth.New(auth.APIKeyConfig{
		APIKey:    "test-key",
		ReaderURL: serverURL,
		WriterURL: serverURL,
	}, nil)
	return New(a, nil)
}

func TestJSONQueryKeyPlacement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/collections/c1/search", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{"count": 2})
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	var out struct {
		Count int `json:"count"`
	}
	req := Post("/v1/collections/c1/search", auth.TargetReader, KeyInQuery, map[string]string{"term": "x"})
	require.NoError(t, c.JSON(context.Background(), req, &out))
	assert.Equal(t, 2, out.Count)
}

func TestJSONHeaderKeyPlacement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api-key"))

		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	req := Get("/v1/collections", auth.TargetWriter, KeyInHeader)
	require.NoError(t, c.JSON(context.Background(), req, nil))
}

func TestJSONStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 yields AuthError",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				require.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:   "400 yields APIError with body",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusBadRequest, apiErr.Status)
				assert.Contains(t, apiErr.Message, "Bad Request")
			},
		},
		{
			name:   "500 yields APIError",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", tt.status)
			}))
			defer server.Close()

			c := newTestClient(server.URL)
			err := c.JSON(context.Background(), Get("/x", auth.TargetReader, KeyInQuery), nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestJSONRepairsBrokenResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Truncated payload, as a model-backed endpoint may emit.
		w.Write([]byte(`{"answer": "hel`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	var out map[string]any
	require.NoError(t, c.JSON(context.Background(), Get("/x", auth.TargetReader, KeyInQuery), &out))
	assert.Equal(t, "hel", out["answer"])
}

func TestWithParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sp-1", r.URL.Query().Get("system_prompt_id"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	req := Get("/x", auth.TargetReader, KeyInQuery).WithParam("system_prompt_id", "sp-1")
	require.NoError(t, c.JSON(context.Background(), req, nil))
}
