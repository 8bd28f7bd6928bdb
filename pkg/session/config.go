package session

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AnswerRequest carries the per-call parameters of an answer. Fields left
// empty are filled from session defaults before transmission.
type AnswerRequest struct {
	Query         string                        `json:"query" validate:"required"`
	InteractionID string                        `json:"interaction_id,omitempty"`
	VisitorID     string                        `json:"visitor_id,omitempty"`
	SessionID     string                        `json:"session_id,omitempty"`
	Messages      []types.Message               `json:"messages,omitempty"`
	Related       *types.RelatedQuestionsConfig `json:"related,omitempty"`
	DatasourceIDs []string                      `json:"datasourceIDs,omitempty"`
	MinSimilarity *float64                      `json:"min_similarity,omitempty" validate:"omitempty,gte=0,lte=1"`
	MaxDocuments  *int                          `json:"max_documents,omitempty" validate:"omitempty,gte=1"`
	RagatNotation string                        `json:"ragat_notation,omitempty"`
	LLMConfig     *types.LLMConfig              `json:"LLMConfig,omitempty"`
}

// StreamConfig tunes the resilience of the SSE channel.
type StreamConfig struct {
	// MaxRetries bounds reconnection attempts while establishing the
	// connection. Once the stream is delivering events no reconnection is
	// attempted, since replaying a partly consumed stream would duplicate
	// state.
	MaxRetries int
	// InitialRetryDelay is the first backoff delay between attempts.
	InitialRetryDelay time.Duration
	// MaxRetryDelay caps the exponential backoff delay.
	MaxRetryDelay time.Duration
	// ConnectionTimeout bounds connection establishment, up to response
	// headers.
	ConnectionTimeout time.Duration
	// StreamTimeout bounds the total lifetime of the stream.
	StreamTimeout time.Duration
}

// DefaultStreamConfig returns the stock resilience settings.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		MaxRetries:        3,
		InitialRetryDelay: time.Second,
		MaxRetryDelay:     30 * time.Second,
		ConnectionTimeout: 30 * time.Second,
		StreamTimeout:     5 * time.Minute,
	}
}

// Config carries the optional settings of a new session.
type Config struct {
	// LLMConfig is the session default model selection, applied to requests
	// that do not carry their own.
	LLMConfig *types.LLMConfig
	// InitialMessages seeds the conversation history.
	InitialMessages []types.Message
	// StreamConfig overrides DefaultStreamConfig.
	StreamConfig *StreamConfig
	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}
