// Package collection provides the per-collection client: search plus the
// AI, index, hook, system-prompt and tool namespaces.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oramasearch/oramacore-client-go/internal/util"
	"github.com/oramasearch/oramacore-client-go/pkg/auth"
	"github.com/oramasearch/oramacore-client-go/pkg/client"
	"github.com/oramasearch/oramacore-client-go/pkg/session"
	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

const (
	// DefaultReaderURL is the hosted reader endpoint.
	DefaultReaderURL = "https://collections.orama.com"
	// DefaultJWTURL is the hosted JWT exchange endpoint.
	DefaultJWTURL = "https://app.orama.com/api/user/jwt"

	// privateKeyPrefix marks API keys that must go through the JWT flow.
	privateKeyPrefix = "p_"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ClusterConfig overrides the reader and writer endpoints of a dedicated
// cluster.
type ClusterConfig struct {
	WriterURL string
	ReaderURL string
}

// Config configures a CollectionManager.
type Config struct {
	CollectionID string `validate:"required"`
	APIKey       string `validate:"required"`
	// Cluster overrides the default endpoints.
	Cluster *ClusterConfig
	// AuthJWTURL overrides DefaultJWTURL for private API keys.
	AuthJWTURL string
	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}

// CollectionManager is the entry point for working with one collection. The
// exported namespace fields group the operations by concern.
type CollectionManager struct {
	client       *client.Client
	collectionID string
	logger       *zap.Logger

	AI            *AINamespace
	Collections   *CollectionsNamespace
	Index         *IndexNamespace
	Hooks         *HooksNamespace
	SystemPrompts *SystemPromptsNamespace
	Tools         *ToolsNamespace
}

// New creates a CollectionManager. API keys with the "p_" prefix are private
// keys and are exchanged for a JWT on every writer request; any other key is
// used directly.
func New(cfg Config) (*CollectionManager, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid collection manager config: %w", err)
	}

	readerURL := DefaultReaderURL
	writerURL := ""
	if cfg.Cluster != nil {
		if cfg.Cluster.ReaderURL != "" {
			readerURL = cfg.Cluster.ReaderURL
		}
		writerURL = cfg.Cluster.WriterURL
	}

	var authConfig auth.Config
	if strings.HasPrefix(cfg.APIKey, privateKeyPrefix) {
		jwtURL := cfg.AuthJWTURL
		if jwtURL == "" {
			jwtURL = DefaultJWTURL
		}
		authConfig = auth.JWTConfig{
			AuthJWTURL:    jwtURL,
			CollectionID:  cfg.CollectionID,
			PrivateAPIKey: cfg.APIKey,
			ReaderURL:     readerURL,
			WriterURL:     writerURL,
		}
	} else {
		authConfig = auth.APIKeyConfig{
			APIKey:    cfg.APIKey,
			ReaderURL: readerURL,
			WriterURL: writerURL,
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := client.New(auth.New(authConfig, nil), logger)
	m := &CollectionManager{
		client:       c,
		collectionID: cfg.CollectionID,
		logger:       logger,
	}
	m.AI = &AINamespace{m: m}
	m.Collections = &CollectionsNamespace{m: m}
	m.Index = &IndexNamespace{m: m}
	m.Hooks = &HooksNamespace{m: m}
	m.SystemPrompts = &SystemPromptsNamespace{m: m}
	m.Tools = &ToolsNamespace{m: m}
	return m, nil
}

// Search runs a search against the collection and decorates the result with
// the observed round-trip time.
func (m *CollectionManager) Search(ctx context.Context, params types.SearchParams) (*types.SearchResult, error) {
	start := util.NowMillis()

	var result types.SearchResult
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/search", m.collectionID),
		auth.TargetReader, client.KeyInQuery, params,
	)
	if err := m.client.JSON(ctx, req, &result); err != nil {
		return nil, err
	}

	elapsed := util.NowMillis() - start
	result.Elapsed = &types.Elapsed{
		Raw:       elapsed,
		Formatted: util.FormatDuration(elapsed),
	}
	return &result, nil
}

// AINamespace groups AI-driven operations.
type AINamespace struct {
	m *CollectionManager
}

// NLPSearchParams are the parameters of an NLP-driven search.
type NLPSearchParams struct {
	Query     string           `json:"query" validate:"required"`
	LLMConfig *types.LLMConfig `json:"LLMConfig,omitempty"`
	UserID    string           `json:"userID,omitempty"`
}

// NLPSearch lets the model translate a natural-language query into
// structured search parameters and run them.
func (n *AINamespace) NLPSearch(ctx context.Context, params NLPSearchParams) ([]types.NLPSearchResult, error) {
	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid nlp search params: %w", err)
	}

	var results []types.NLPSearchResult
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/nlp_search", n.m.collectionID),
		auth.TargetReader, client.KeyInQuery, params,
	)
	if err := n.m.client.JSON(ctx, req, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CreateAISession starts a new conversational session on the collection.
func (n *AINamespace) CreateAISession() *session.Session {
	return n.CreateAISessionWithConfig(session.Config{})
}

// CreateAISessionWithConfig starts a new conversational session with
// explicit settings. The session inherits the manager's logger unless the
// config carries its own.
func (n *AINamespace) CreateAISessionWithConfig(cfg session.Config) *session.Session {
	if cfg.Logger == nil {
		cfg.Logger = n.m.logger
	}
	return session.NewWithConfig(n.m.client, n.m.collectionID, cfg)
}

// CollectionsNamespace groups collection-level reads.
type CollectionsNamespace struct {
	m *CollectionManager
}

// GetStats returns the raw statistics document of a collection.
func (c *CollectionsNamespace) GetStats(ctx context.Context, collectionID string) (types.AnyObject, error) {
	var stats types.AnyObject
	req := client.Get(
		fmt.Sprintf("/v1/collections/%s/stats", collectionID),
		auth.TargetReader, client.KeyInQuery,
	)
	if err := c.m.client.JSON(ctx, req, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetAllDocs returns every document of a collection.
func (c *CollectionsNamespace) GetAllDocs(ctx context.Context, id string) ([]types.AnyObject, error) {
	var docs []types.AnyObject
	req := client.Post("/v1/collections/list", auth.TargetWriter, client.KeyInHeader,
		map[string]string{"id": id})
	if err := c.m.client.JSON(ctx, req, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// IndexNamespace groups index lifecycle operations.
type IndexNamespace struct {
	m *CollectionManager
}

// CreateIndexParams configures a new index. Embeddings accepts "automatic",
// "all_properties" or a list of property names.
type CreateIndexParams struct {
	ID         string `json:"id,omitempty"`
	Embeddings any    `json:"embeddings,omitempty"`
}

// Create creates an index on the collection.
func (i *IndexNamespace) Create(ctx context.Context, params CreateIndexParams) error {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/indexes/create", i.m.collectionID),
		auth.TargetWriter, client.KeyInHeader, params,
	)
	return i.m.client.JSON(ctx, req, &resp)
}

// Delete removes an index from the collection.
func (i *IndexNamespace) Delete(ctx context.Context, indexID string) error {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/indexes/delete", i.m.collectionID),
		auth.TargetWriter, client.KeyInHeader,
		map[string]string{"index_id_to_delete": indexID},
	)
	return i.m.client.JSON(ctx, req, &resp)
}

// Set selects an index for document operations.
func (i *IndexNamespace) Set(indexID string) *Index {
	return &Index{m: i.m, indexID: indexID}
}

// Index performs document operations against one index of the collection.
type Index struct {
	m       *CollectionManager
	indexID string
}

// Reindex rebuilds the index from its stored documents.
func (i *Index) Reindex(ctx context.Context) error {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/indexes/%s/reindex", i.m.collectionID, i.indexID),
		auth.TargetWriter, client.KeyInHeader, struct{}{},
	)
	return i.m.client.JSON(ctx, req, &resp)
}

// InsertDocuments adds documents to the index.
func (i *Index) InsertDocuments(ctx context.Context, documents []types.AnyObject) error {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/indexes/%s/documents/insert", i.m.collectionID, i.indexID),
		auth.TargetWriter, client.KeyInHeader,
		map[string]any{"documents": documents},
	)
	return i.m.client.JSON(ctx, req, &resp)
}

// UpsertDocuments adds or replaces documents in the index.
func (i *Index) UpsertDocuments(ctx context.Context, documents []types.AnyObject) error {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/indexes/%s/documents/upsert", i.m.collectionID, i.indexID),
		auth.TargetWriter, client.KeyInHeader,
		map[string]any{"documents": documents},
	)
	return i.m.client.JSON(ctx, req, &resp)
}

// DeleteDocuments removes documents from the index by id.
func (i *Index) DeleteDocuments(ctx context.Context, documentIDs []string) error {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/indexes/%s/documents/delete", i.m.collectionID, i.indexID),
		auth.TargetWriter, client.KeyInHeader,
		map[string]any{"document_ids": documentIDs},
	)
	return i.m.client.JSON(ctx, req, &resp)
}

// HooksNamespace manages server-side hooks.
type HooksNamespace struct {
	m *CollectionManager
}

// AddHookConfig is a hook to install.
type AddHookConfig struct {
	Name types.Hook `json:"name"`
	Code string     `json:"code"`
}

// NewHookResponse confirms an installed hook.
type NewHookResponse struct {
	HookID string `json:"hookID"`
	Code   string `json:"code"`
}

// Insert installs a hook on the collection.
func (h *HooksNamespace) Insert(ctx context.Context, config AddHookConfig) (*NewHookResponse, error) {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/hooks/set", h.m.collectionID),
		auth.TargetWriter, client.KeyInHeader, config,
	)
	if err := h.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &NewHookResponse{HookID: string(config.Name), Code: config.Code}, nil
}

// List returns the installed hooks keyed by hook point; absent hooks map to
// nil.
func (h *HooksNamespace) List(ctx context.Context) (map[string]*string, error) {
	var resp struct {
		Hooks map[string]*string `json:"hooks"`
	}
	req := client.Get(
		fmt.Sprintf("/v1/collections/%s/hooks/list", h.m.collectionID),
		auth.TargetWriter, client.KeyInHeader,
	)
	if err := h.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Hooks == nil {
		resp.Hooks = map[string]*string{}
	}
	return resp.Hooks, nil
}

// Delete removes a hook from the collection.
func (h *HooksNamespace) Delete(ctx context.Context, hook types.Hook) error {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/hooks/delete", h.m.collectionID),
		auth.TargetWriter, client.KeyInHeader,
		map[string]types.Hook{"name_to_delete": hook},
	)
	return h.m.client.JSON(ctx, req, &resp)
}

// SystemPromptsNamespace manages stored system prompts.
type SystemPromptsNamespace struct {
	m *CollectionManager
}

// Insert stores a new system prompt.
func (s *SystemPromptsNamespace) Insert(ctx context.Context, prompt types.InsertSystemPromptBody) (types.AnyObject, error) {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/system_prompts/insert", s.m.collectionID),
		auth.TargetWriter, client.KeyInHeader, prompt,
	)
	if err := s.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Get fetches one system prompt by id.
func (s *SystemPromptsNamespace) Get(ctx context.Context, id string) (*types.SystemPrompt, error) {
	var resp struct {
		SystemPrompt json.RawMessage `json:"system_prompt"`
	}
	req := client.Get(
		fmt.Sprintf("/v1/collections/%s/system_prompts/get", s.m.collectionID),
		auth.TargetReader, client.KeyInQuery,
	).WithParam("system_prompt_id", id)
	if err := s.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	var prompt types.SystemPrompt
	if err := json.Unmarshal(resp.SystemPrompt, &prompt); err != nil {
		return nil, fmt.Errorf("decode system prompt: %w", err)
	}
	return &prompt, nil
}

// GetAll fetches every system prompt of the collection.
func (s *SystemPromptsNamespace) GetAll(ctx context.Context) ([]types.SystemPrompt, error) {
	var resp struct {
		SystemPrompts []types.SystemPrompt `json:"system_prompts"`
	}
	req := client.Get(
		fmt.Sprintf("/v1/collections/%s/system_prompts/all", s.m.collectionID),
		auth.TargetReader, client.KeyInQuery,
	)
	if err := s.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.SystemPrompts, nil
}

// Update replaces a stored system prompt.
func (s *SystemPromptsNamespace) Update(ctx context.Context, prompt types.SystemPrompt) (types.AnyObject, error) {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/system_prompts/update", s.m.collectionID),
		auth.TargetWriter, client.KeyInHeader, prompt,
	)
	if err := s.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete removes a system prompt by id.
func (s *SystemPromptsNamespace) Delete(ctx context.Context, id string) (types.AnyObject, error) {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/system_prompts/delete", s.m.collectionID),
		auth.TargetWriter, client.KeyInHeader,
		map[string]string{"id": id},
	)
	if err := s.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Validate runs the server-side safety and quality checks on a prompt
// without storing it.
func (s *SystemPromptsNamespace) Validate(ctx context.Context, prompt types.SystemPrompt) (*types.SystemPromptValidationResponse, error) {
	var resp types.SystemPromptValidationResponse
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/system_prompts/validate", s.m.collectionID),
		auth.TargetWriter, client.KeyInHeader, prompt,
	)
	if err := s.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ToolsNamespace manages stored tools.
type ToolsNamespace struct {
	m *CollectionManager
}

// ExecuteToolsBody is the request body of a tools run.
type ExecuteToolsBody struct {
	ToolIDs   []string         `json:"tool_ids,omitempty"`
	Messages  []types.Message  `json:"messages"`
	LLMConfig *types.LLMConfig `json:"llm_config,omitempty"`
}

// Insert stores a new tool.
func (t *ToolsNamespace) Insert(ctx context.Context, tool types.InsertToolBody) error {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/tools/insert", t.m.collectionID),
		auth.TargetWriter, client.KeyInHeader, tool,
	)
	return t.m.client.JSON(ctx, req, &resp)
}

// Get fetches one tool by id.
func (t *ToolsNamespace) Get(ctx context.Context, id string) (*types.Tool, error) {
	var resp struct {
		Tool json.RawMessage `json:"tool"`
	}
	req := client.Get(
		fmt.Sprintf("/v1/collections/%s/tools/get", t.m.collectionID),
		auth.TargetReader, client.KeyInQuery,
	).WithParam("tool_id", id)
	if err := t.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}

	var tool types.Tool
	if err := json.Unmarshal(resp.Tool, &tool); err != nil {
		return nil, fmt.Errorf("decode tool: %w", err)
	}
	return &tool, nil
}

// GetAll fetches every tool of the collection.
func (t *ToolsNamespace) GetAll(ctx context.Context) ([]types.Tool, error) {
	var resp struct {
		Tools []types.Tool `json:"tools"`
	}
	req := client.Get(
		fmt.Sprintf("/v1/collections/%s/tools/all", t.m.collectionID),
		auth.TargetReader, client.KeyInQuery,
	)
	if err := t.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// Update changes a stored tool.
func (t *ToolsNamespace) Update(ctx context.Context, tool types.UpdateToolBody) (types.AnyObject, error) {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/tools/update", t.m.collectionID),
		auth.TargetWriter, client.KeyInHeader, tool,
	)
	if err := t.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete removes a tool by id.
func (t *ToolsNamespace) Delete(ctx context.Context, id string) (types.AnyObject, error) {
	var resp types.AnyObject
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/tools/delete", t.m.collectionID),
		auth.TargetWriter, client.KeyInHeader,
		map[string]string{"id": id},
	)
	if err := t.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Execute lets the model pick and run tools against a message history.
func (t *ToolsNamespace) Execute(ctx context.Context, body ExecuteToolsBody) (*types.ExecuteToolsParsedResponse, error) {
	var resp types.ExecuteToolsParsedResponse
	req := client.Post(
		fmt.Sprintf("/v1/collections/%s/tools/run", t.m.collectionID),
		auth.TargetReader, client.KeyInQuery, body,
	)
	if err := t.m.client.JSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
