package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oramasearch/oramacore-client-go/pkg/collection"
	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

func TestSearchMapsDatasourcesToIndexes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/collections/proj-1/search", r.URL.Path)

		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "sneakers", params["term"])
		assert.Equal(t, []any{"ds-1", "ds-2"}, params["indexes"])
		assert.NotContains(t, params, "datasources")

		json.NewEncoder(w).Encode(map[string]any{"count": 0, "hits": []any{}})
	}))
	defer srv.Close()

	c, err := New(Config{
		ProjectID: "proj-1",
		APIKey:    "key",
		Cluster:   &collection.ClusterConfig{ReaderURL: srv.URL},
	})
	require.NoError(t, err)

	result, err := c.Search(context.Background(), SearchParams{
		Term:        "sneakers",
		Datasources: []string{"ds-1", "ds-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Elapsed)
}

func TestDataSourceDelegatesToIndex(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	c, err := New(Config{
		ProjectID: "proj-1",
		APIKey:    "key",
		Cluster:   &collection.ClusterConfig{ReaderURL: srv.URL, WriterURL: srv.URL},
	})
	require.NoError(t, err)

	ctx := context.Background()
	ds := c.DataSource("ds-1")
	require.NoError(t, ds.InsertDocuments(ctx, []types.AnyObject{{"id": "a"}}))
	require.NoError(t, ds.DeleteDocuments(ctx, []string{"a"}))
	require.NoError(t, ds.Reindex(ctx))

	assert.Equal(t, []string{
		"/v1/collections/proj-1/indexes/ds-1/documents/insert",
		"/v1/collections/proj-1/indexes/ds-1/documents/delete",
		"/v1/collections/proj-1/indexes/ds-1/reindex",
	}, paths)
}

func TestNamespaceAccessors(t *testing.T) {
	c, err := New(Config{ProjectID: "proj-1", APIKey: "key"})
	require.NoError(t, err)

	assert.NotNil(t, c.AI())
	assert.NotNil(t, c.Collections())
	assert.NotNil(t, c.Index())
	assert.NotNil(t, c.Hooks())
	assert.NotNil(t, c.SystemPrompts())
	assert.NotNil(t, c.Tools())
}
