// Package cloud provides the Orama Cloud project client, a thin wrapper over
// the collection client that speaks in data sources instead of indexes.
package cloud

import (
	"context"

	"go.uber.org/zap"

	"github.com/oramasearch/oramacore-client-go/pkg/collection"
	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

// Config configures an OramaCloud client. The project id takes the place of
// the collection id.
type Config struct {
	ProjectID string
	APIKey    string
	// Cluster overrides the default endpoints.
	Cluster *collection.ClusterConfig
	// AuthJWTURL overrides the default JWT exchange endpoint for private
	// API keys.
	AuthJWTURL string
	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}

// SearchParams are cloud search parameters; data sources select the backing
// indexes.
type SearchParams struct {
	Term        string           `json:"term"`
	Mode        types.SearchMode `json:"mode,omitempty"`
	Limit       *int             `json:"limit,omitempty"`
	Offset      *int             `json:"offset,omitempty"`
	Properties  []string         `json:"properties,omitempty"`
	Where       types.AnyObject  `json:"where,omitempty"`
	Facets      types.AnyObject  `json:"facets,omitempty"`
	Datasources []string         `json:"datasources"`
	Exact       *bool            `json:"exact,omitempty"`
	Threshold   *float64         `json:"threshold,omitempty"`
	Tolerance   *int             `json:"tolerance,omitempty"`
	UserID      string           `json:"userID,omitempty"`
}

// OramaCloud is a project-scoped client for the hosted platform.
type OramaCloud struct {
	manager *collection.CollectionManager
}

// New creates an OramaCloud client.
func New(cfg Config) (*OramaCloud, error) {
	m, err := collection.New(collection.Config{
		CollectionID: cfg.ProjectID,
		APIKey:       cfg.APIKey,
		Cluster:      cfg.Cluster,
		AuthJWTURL:   cfg.AuthJWTURL,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &OramaCloud{manager: m}, nil
}

// Search runs a search across the selected data sources.
func (o *OramaCloud) Search(ctx context.Context, params SearchParams) (*types.SearchResult, error) {
	return o.manager.Search(ctx, types.SearchParams{
		Term:       params.Term,
		Mode:       params.Mode,
		Limit:      params.Limit,
		Offset:     params.Offset,
		Properties: params.Properties,
		Where:      params.Where,
		Facets:     params.Facets,
		Indexes:    params.Datasources,
		Exact:      params.Exact,
		Threshold:  params.Threshold,
		Tolerance:  params.Tolerance,
		UserID:     params.UserID,
	})
}

// DataSource selects a data source for document operations.
func (o *OramaCloud) DataSource(id string) *DataSourceNamespace {
	return &DataSourceNamespace{index: o.manager.Index.Set(id)}
}

// AI exposes the AI operations of the project.
func (o *OramaCloud) AI() *collection.AINamespace {
	return o.manager.AI
}

// Collections exposes collection-level reads.
func (o *OramaCloud) Collections() *collection.CollectionsNamespace {
	return o.manager.Collections
}

// Index exposes raw index operations.
func (o *OramaCloud) Index() *collection.IndexNamespace {
	return o.manager.Index
}

// Hooks exposes hook management.
func (o *OramaCloud) Hooks() *collection.HooksNamespace {
	return o.manager.Hooks
}

// SystemPrompts exposes system-prompt management.
func (o *OramaCloud) SystemPrompts() *collection.SystemPromptsNamespace {
	return o.manager.SystemPrompts
}

// Tools exposes tool management.
func (o *OramaCloud) Tools() *collection.ToolsNamespace {
	return o.manager.Tools
}

// DataSourceNamespace performs document operations against one data source.
type DataSourceNamespace struct {
	index *collection.Index
}

// Reindex rebuilds the data source.
func (d *DataSourceNamespace) Reindex(ctx context.Context) error {
	return d.index.Reindex(ctx)
}

// InsertDocuments adds documents to the data source.
func (d *DataSourceNamespace) InsertDocuments(ctx context.Context, documents []types.AnyObject) error {
	return d.index.InsertDocuments(ctx, documents)
}

// UpsertDocuments adds or replaces documents in the data source.
func (d *DataSourceNamespace) UpsertDocuments(ctx context.Context, documents []types.AnyObject) error {
	return d.index.UpsertDocuments(ctx, documents)
}

// DeleteDocuments removes documents from the data source by id.
func (d *DataSourceNamespace) DeleteDocuments(ctx context.Context, documentIDs []string) error {
	return d.index.DeleteDocuments(ctx, documentIDs)
}
