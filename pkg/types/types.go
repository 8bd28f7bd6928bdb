// Package types holds the wire types shared by the Orama client packages.
package types

import "encoding/json"

// AnyObject is an arbitrary JSON object used where the API accepts or
// returns free-form structured data (filters, facets, metadata).
type AnyObject = map[string]any

// DefaultServerUserID is the visitor id used for server-side operations
// when the caller does not provide one.
const DefaultServerUserID = "server-user-default"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is a single conversation message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// LLMProvider identifies an inference provider.
type LLMProvider string

const (
	LLMProviderOpenAI    LLMProvider = "openai"
	LLMProviderFireworks LLMProvider = "fireworks"
	LLMProviderTogether  LLMProvider = "together"
	LLMProviderGoogle    LLMProvider = "google"
	LLMProviderClaude    LLMProvider = "claude"
)

// LLMConfig selects a provider and model for answer generation.
type LLMConfig struct {
	Provider LLMProvider `json:"provider"`
	Model    string      `json:"model"`
}

// RelatedQuestionsFormat controls the shape of related questions.
type RelatedQuestionsFormat string

const (
	RelatedFormatQuestion RelatedQuestionsFormat = "question"
	RelatedFormatQuery    RelatedQuestionsFormat = "query"
)

// RelatedQuestionsConfig enables related-question generation on answers.
type RelatedQuestionsConfig struct {
	Enabled *bool                   `json:"enabled,omitempty"`
	Size    *int                    `json:"size,omitempty"`
	Format  *RelatedQuestionsFormat `json:"format,omitempty"`
}

// SearchMode selects the retrieval strategy.
type SearchMode string

const (
	SearchModeFulltext SearchMode = "fulltext"
	SearchModeVector   SearchMode = "vector"
	SearchModeHybrid   SearchMode = "hybrid"
	SearchModeAuto     SearchMode = "auto"
)

// SearchParams are the parameters for a collection search.
type SearchParams struct {
	Term          string     `json:"term"`
	Mode          SearchMode `json:"mode,omitempty"`
	Limit         *int       `json:"limit,omitempty"`
	Offset        *int       `json:"offset,omitempty"`
	Properties    []string   `json:"properties,omitempty"`
	Where         AnyObject  `json:"where,omitempty"`
	Facets        AnyObject  `json:"facets,omitempty"`
	Indexes       []string   `json:"indexes,omitempty"`
	DatasourceIDs []string   `json:"datasourceIDs,omitempty"`
	Exact         *bool      `json:"exact,omitempty"`
	Threshold     *float64   `json:"threshold,omitempty"`
	Tolerance     *int       `json:"tolerance,omitempty"`
	UserID        string     `json:"userID,omitempty"`
}

// Hit is a single search result. Document is left raw so callers can
// unmarshal it into their own type.
type Hit struct {
	ID           string          `json:"id"`
	Score        float64         `json:"score"`
	Document     json.RawMessage `json:"document"`
	DatasourceID string          `json:"datasource_id,omitempty"`
}

// Elapsed reports how long a search took.
type Elapsed struct {
	Raw       int64  `json:"raw"`
	Formatted string `json:"formatted"`
}

// SearchResult is the response of a search request.
type SearchResult struct {
	Count   int       `json:"count"`
	Hits    []Hit     `json:"hits"`
	Facets  AnyObject `json:"facets,omitempty"`
	Elapsed *Elapsed  `json:"elapsed,omitempty"`
}

// Language is a supported content language.
type Language string

const (
	LanguageArabic     Language = "arabic"
	LanguageBulgarian  Language = "bulgarian"
	LanguageChinese    Language = "chinese"
	LanguageDanish     Language = "danish"
	LanguageDutch      Language = "dutch"
	LanguageGerman     Language = "german"
	LanguageGreek      Language = "greek"
	LanguageEnglish    Language = "english"
	LanguageEstonian   Language = "estonian"
	LanguageSpanish    Language = "spanish"
	LanguageFinnish    Language = "finnish"
	LanguageFrench     Language = "french"
	LanguageIrish      Language = "irish"
	LanguageHindi      Language = "hindi"
	LanguageHungarian  Language = "hungarian"
	LanguageArmenian   Language = "armenian"
	LanguageIndonesian Language = "indonesian"
	LanguageItalian    Language = "italian"
	LanguageJapanese   Language = "japanese"
	LanguageKorean     Language = "korean"
	LanguageLithuanian Language = "lithuanian"
	LanguageNepali     Language = "nepali"
	LanguageNorwegian  Language = "norwegian"
	LanguagePortuguese Language = "portuguese"
	LanguageRomanian   Language = "romanian"
	LanguageRussian    Language = "russian"
	LanguageSanskrit   Language = "sanskrit"
	LanguageSlovenian  Language = "slovenian"
	LanguageSerbian    Language = "serbian"
	LanguageSwedish    Language = "swedish"
	LanguageTamil      Language = "tamil"
	LanguageTurkish    Language = "turkish"
	LanguageUkrainian  Language = "ukrainian"
)

// EmbeddingsModel is a supported embeddings model.
type EmbeddingsModel string

const (
	EmbeddingsE5MultilangualSmall EmbeddingsModel = "E5MultilangualSmall"
	EmbeddingsE5MultilangualBase  EmbeddingsModel = "E5MultilangualBase"
	EmbeddingsE5MultilangualLarge EmbeddingsModel = "E5MultilangualLarge"
	EmbeddingsBGESmall            EmbeddingsModel = "BGESmall"
	EmbeddingsBGEBase             EmbeddingsModel = "BGEBase"
	EmbeddingsBGELarge            EmbeddingsModel = "BGELarge"
)

// Hook names a server-side hook point.
type Hook string

const (
	HookBeforeAnswer    Hook = "BeforeAnswer"
	HookBeforeRetrieval Hook = "BeforeRetrieval"
)

// SystemPromptUsageMode controls when a system prompt applies.
type SystemPromptUsageMode string

const (
	SystemPromptAutomatic SystemPromptUsageMode = "automatic"
	SystemPromptManual    SystemPromptUsageMode = "manual"
)

// SystemPrompt is a stored system prompt.
type SystemPrompt struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Prompt    string                `json:"prompt"`
	UsageMode SystemPromptUsageMode `json:"usage_mode"`
}

// InsertSystemPromptBody is the request body for inserting a system prompt.
type InsertSystemPromptBody struct {
	ID        string                `json:"id,omitempty"`
	Name      string                `json:"name"`
	Prompt    string                `json:"prompt"`
	UsageMode SystemPromptUsageMode `json:"usage_mode"`
}

// SecurityValidation is the security portion of a prompt validation result.
type SecurityValidation struct {
	Valid      bool     `json:"valid"`
	Reason     string   `json:"reason"`
	Violations []string `json:"violations"`
}

// TechnicalValidation is the technical portion of a prompt validation result.
type TechnicalValidation struct {
	Valid            bool   `json:"valid"`
	Reason           string `json:"reason"`
	InstructionCount int    `json:"instruction_count"`
}

// OverallAssessment summarizes a prompt validation result.
type OverallAssessment struct {
	Valid   bool   `json:"valid"`
	Summary string `json:"summary"`
}

// SystemPromptValidationResponse is returned by prompt validation.
type SystemPromptValidationResponse struct {
	Security          SecurityValidation  `json:"security"`
	Technical         TechnicalValidation `json:"technical"`
	OverallAssessment OverallAssessment   `json:"overall_assessment"`
}

// Tool is a stored tool definition.
type Tool struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Parameters   string `json:"parameters"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// InsertToolBody is the request body for inserting a tool. Parameters may be
// a JSON schema object or its string form.
type InsertToolBody struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	Parameters   any    `json:"parameters"`
	Code         string `json:"code,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// UpdateToolBody is the request body for updating a tool.
type UpdateToolBody struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
	Code        string `json:"code,omitempty"`
}

// FunctionCall is a raw tool invocation produced by the model.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ExecuteToolsResponse is the raw response of a tools run.
type ExecuteToolsResponse struct {
	Results []FunctionCall `json:"results,omitempty"`
}

// ExecuteToolsResult is one entry of a parsed tools run. Exactly one of the
// two fields is set, mirroring the server's untagged union.
type ExecuteToolsResult struct {
	FunctionResult     *FunctionResultData `json:"functionResult,omitempty"`
	FunctionParameters *FunctionResultData `json:"functionParameters,omitempty"`
}

// FunctionResultData carries the outcome of one tool execution.
type FunctionResultData struct {
	ToolID string          `json:"tool_id"`
	Result json.RawMessage `json:"result"`
}

// ExecuteToolsParsedResponse is the parsed response of a tools run.
type ExecuteToolsParsedResponse struct {
	Results []ExecuteToolsResult `json:"results,omitempty"`
}

// NLPSearchResult is one result of an NLP-driven search.
type NLPSearchResult struct {
	OriginalQuery  string       `json:"original_query"`
	GeneratedQuery SearchParams `json:"generated_query"`
	Results        []AnyObject  `json:"results"`
}
