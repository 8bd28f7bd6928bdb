// Package manager provides the master-key admin client for collection
// lifecycle operations.
package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oramasearch/oramacore-client-go/internal/util"
	"github.com/oramasearch/oramacore-client-go/pkg/auth"
	"github.com/oramasearch/oramacore-client-go/pkg/client"
	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config configures an OramaCoreManager.
type Config struct {
	URL          string `validate:"required,url"`
	MasterAPIKey string `validate:"required"`
	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}

// CreateCollectionParams configures a new collection. Write and read keys
// are generated when omitted.
type CreateCollectionParams struct {
	ID              string                `json:"id" validate:"required"`
	Description     string                `json:"description,omitempty"`
	WriteAPIKey     string                `json:"write_api_key,omitempty"`
	ReadAPIKey      string                `json:"read_api_key,omitempty"`
	Language        types.Language        `json:"language,omitempty"`
	EmbeddingsModel types.EmbeddingsModel `json:"embeddings_model,omitempty"`
}

// NewCollectionResponse confirms a created collection, including the keys in
// effect.
type NewCollectionResponse struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	WriteAPIKey string `json:"write_api_key"`
	ReadAPIKey  string `json:"read_api_key"`
}

// CollectionIndexField describes one indexed field.
type CollectionIndexField struct {
	FieldID   string          `json:"field_id"`
	FieldPath string          `json:"field_path"`
	IsArray   bool            `json:"is_array"`
	FieldType json.RawMessage `json:"field_type"`
}

// CollectionIndex describes one index of a collection.
type CollectionIndex struct {
	ID                            string                 `json:"id"`
	DocumentCount                 int                    `json:"document_count"`
	Fields                        []CollectionIndexField `json:"fields"`
	AutomaticallyChosenProperties json.RawMessage        `json:"automatically_chosen_properties"`
}

// GetCollectionsResponse describes a collection.
type GetCollectionsResponse struct {
	ID            string            `json:"id"`
	Description   string            `json:"description,omitempty"`
	DocumentCount int               `json:"document_count"`
	Indexes       []CollectionIndex `json:"indexes"`
}

// OramaCoreManager administers collections on a self-hosted instance using
// the master API key.
type OramaCoreManager struct {
	Collection *CollectionNamespace
}

// New creates an OramaCoreManager.
func New(cfg Config) (*OramaCoreManager, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid manager config: %w", err)
	}

	a := auth.New(auth.APIKeyConfig{
		APIKey:    cfg.MasterAPIKey,
		WriterURL: cfg.URL,
	}, nil)
	c := client.New(a, cfg.Logger)

	return &OramaCoreManager{
		Collection: &CollectionNamespace{client: c},
	}, nil
}

// CollectionNamespace groups collection lifecycle operations.
type CollectionNamespace struct {
	client *client.Client
}

// Create creates a collection. Omitted API keys are replaced with random
// 32-character keys, returned in the response.
func (n *CollectionNamespace) Create(ctx context.Context, params CreateCollectionParams) (*NewCollectionResponse, error) {
	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid create collection params: %w", err)
	}

	if params.WriteAPIKey == "" {
		params.WriteAPIKey = util.RandomString(32)
	}
	if params.ReadAPIKey == "" {
		params.ReadAPIKey = util.RandomString(32)
	}

	var resp NewCollectionResponse
	req := client.Post("/v1/collections/create", auth.TargetWriter, client.KeyInHeader, params)
	if err := n.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	// Older servers omit the keys in the response; fall back to the ones
	// that were sent.
	if resp.ID == "" {
		resp.ID = params.ID
	}
	if resp.WriteAPIKey == "" {
		resp.WriteAPIKey = params.WriteAPIKey
	}
	if resp.ReadAPIKey == "" {
		resp.ReadAPIKey = params.ReadAPIKey
	}
	return &resp, nil
}

// List returns every collection of the instance.
func (n *CollectionNamespace) List(ctx context.Context) ([]GetCollectionsResponse, error) {
	var collections []GetCollectionsResponse
	req := client.Get("/v1/collections", auth.TargetWriter, client.KeyInHeader)
	if err := n.client.JSON(ctx, req, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

// Get returns one collection by id.
func (n *CollectionNamespace) Get(ctx context.Context, collectionID string) (*GetCollectionsResponse, error) {
	var collection GetCollectionsResponse
	req := client.Get("/v1/collections/"+collectionID, auth.TargetWriter, client.KeyInHeader)
	if err := n.client.JSON(ctx, req, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// Delete removes a collection.
func (n *CollectionNamespace) Delete(ctx context.Context, collectionID string) error {
	var resp types.AnyObject
	req := client.Post("/v1/collections/delete", auth.TargetWriter, client.KeyInHeader,
		map[string]string{"collection_id_to_delete": collectionID})
	return n.client.JSON(ctx, req, &resp)
}
