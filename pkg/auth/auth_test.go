package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyConfig(t *testing.T) {
	a := New(APIKeyConfig{
		APIKey:    "key-123",
		ReaderURL: "https://reader.example.com",
	}, nil)

	ref, err := a.GetRef(context.Background(), TargetReader)
	require.NoError(t, err)
	assert.Equal(t, "key-123", ref.Bearer)
	assert.Equal(t, "https://reader.example.com", ref.BaseURL)

	_, err = a.GetRef(context.Background(), TargetWriter)
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestJWTConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "coll-1", body["collectionId"])
		assert.Equal(t, "p_secret", body["privateApiKey"])
		assert.Equal(t, "write", body["scope"])

		json.NewEncoder(w).Encode(map[string]any{
			"jwt":          "jwt-token",
			"writerURL":    "https://writer.example.com",
			"readerApiKey": "reader-key",
			"readerURL":    "https://reader.example.com",
			"expiresIn":    3600,
		})
	}))
	defer server.Close()

	a := New(JWTConfig{
		AuthJWTURL:    server.URL,
		CollectionID:  "coll-1",
		PrivateAPIKey: "p_secret",
	}, server.Client())

	reader, err := a.GetRef(context.Background(), TargetReader)
	require.NoError(t, err)
	assert.Equal(t, "reader-key", reader.Bearer)
	assert.Equal(t, "https://reader.example.com", reader.BaseURL)

	writer, err := a.GetRef(context.Background(), TargetWriter)
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", writer.Bearer)
	assert.Equal(t, "https://writer.example.com", writer.BaseURL)
}

func TestJWTConfigURLOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jwt":          "jwt-token",
			"writerURL":    "https://writer.example.com",
			"readerApiKey": "reader-key",
			"readerURL":    "https://reader.example.com",
			"expiresIn":    3600,
		})
	}))
	defer server.Close()

	a := New(JWTConfig{
		AuthJWTURL:    server.URL,
		CollectionID:  "coll-1",
		PrivateAPIKey: "p_secret",
		ReaderURL:     "https://custom-reader.example.com",
	}, server.Client())

	ref, err := a.GetRef(context.Background(), TargetReader)
	require.NoError(t, err)
	assert.Equal(t, "https://custom-reader.example.com", ref.BaseURL)
}

func TestJWTConfigEndpointFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	a := New(JWTConfig{
		AuthJWTURL:    server.URL,
		CollectionID:  "coll-1",
		PrivateAPIKey: "p_secret",
	}, server.Client())

	_, err := a.GetRef(context.Background(), TargetReader)
	assert.ErrorContains(t, err, "status 403")
}
