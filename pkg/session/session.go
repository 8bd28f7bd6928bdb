// Package session implements the AI session stream manager: conversational
// state, the resilient SSE answer stream, and regenerate/clear semantics.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/oramasearch/oramacore-client-go/internal/util"
	"github.com/oramasearch/oramacore-client-go/pkg/auth"
	"github.com/oramasearch/oramacore-client-go/pkg/client"
	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

// Session owns one AI conversation against a collection. It is safe for
// concurrent use: the message history and the interaction ledger are paired
// sequences guarded together, and snapshots returned to callers never alias
// live state.
type Session struct {
	client       *client.Client
	collectionID string
	sessionID    string
	llmConfig    *types.LLMConfig
	streamConfig StreamConfig
	streamHTTP   *http.Client
	logger       *zap.Logger
	state        conversationState
}

// New creates a session with default configuration.
func New(c *client.Client, collectionID string) *Session {
	return NewWithConfig(c, collectionID, Config{})
}

// NewWithConfig creates a session, optionally seeding the message history
// and the default LLM selection.
func NewWithConfig(c *client.Client, collectionID string, cfg Config) *Session {
	streamConfig := DefaultStreamConfig()
	if cfg.StreamConfig != nil {
		streamConfig = *cfg.StreamConfig
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		client:       c,
		collectionID: collectionID,
		sessionID:    util.NewID(),
		llmConfig:    cfg.LLMConfig,
		streamConfig: streamConfig,
		streamHTTP:   newStreamHTTPClient(streamConfig),
		logger:       logger,
	}
	s.state.messages = append(s.state.messages, cfg.InitialMessages...)
	return s
}

// SessionID returns the stable identifier generated at creation. It survives
// ClearSession.
func (s *Session) SessionID() string {
	return s.sessionID
}

// StreamConfig returns the session's streaming resilience settings.
func (s *Session) StreamConfig() StreamConfig {
	return s.streamConfig
}

// Answer performs a blocking, non-streaming answer request and returns the
// full response text. On failure the current interaction is marked errored
// and no text is returned, even if the server had produced partial content.
func (s *Session) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", fmt.Errorf("invalid answer request: %w", err)
	}

	s.logger.Info("starting AI answer request", zap.String("session_id", s.sessionID))
	enriched := s.enrich(req)
	gen := s.state.beginTurn(enriched)

	var resp struct {
		Answer  string          `json:"answer"`
		Sources json.RawMessage `json:"sources"`
		Related json.RawMessage `json:"related"`
	}
	apiReq := client.Post(
		fmt.Sprintf("/v1/collections/%s/ai/answer", s.collectionID),
		auth.TargetReader, client.KeyInQuery, enriched,
	)
	if err := s.client.JSON(ctx, apiReq, &resp); err != nil {
		s.logger.Error("API request failed", zap.Error(err))
		s.state.markError(gen, err.Error())
		return "", err
	}

	var related string
	if len(resp.Related) > 0 {
		// Related arrives either as a plain string or as structured data;
		// only the string form is kept on the interaction.
		_ = json.Unmarshal(resp.Related, &related)
	}
	s.state.completeTurn(gen, resp.Answer, resp.Sources, related)

	s.logger.Info("AI answer completed", zap.Int("length", len(resp.Answer)))
	return resp.Answer, nil
}

// AnswerStream performs a streaming answer request. The returned channel is
// a lazy, single-pass sequence: each item is either a chunk or the terminal
// error, and the channel closes when the sequence ends. State mutations are
// applied before a chunk is delivered, so GetState and GetMessages reflect
// every chunk the consumer has observed. Cancel ctx to abandon the stream;
// state already written is retained and the interaction is marked aborted.
func (s *Session) AnswerStream(ctx context.Context, req AnswerRequest) (<-chan StreamResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid answer request: %w", err)
	}

	s.logger.Info("starting streaming AI answer request", zap.String("session_id", s.sessionID))
	enriched := s.enrich(req)
	gen := s.state.beginTurn(enriched)

	ref, err := s.client.AuthRef(ctx, auth.TargetReader)
	if err != nil {
		s.logger.Error("failed to resolve auth reference", zap.Error(err))
		s.state.markError(gen, err.Error())
		return nil, err
	}

	payload, err := json.Marshal(enriched)
	if err != nil {
		s.state.markError(gen, err.Error())
		return nil, fmt.Errorf("marshal answer request: %w", err)
	}

	streamURL := fmt.Sprintf("%s/v1/collections/%s/ai/answer/stream",
		strings.TrimSuffix(ref.BaseURL, "/"), s.collectionID)
	s.logger.Debug("creating streaming request", zap.String("url", streamURL))

	out := make(chan StreamResult, 16)
	go s.runStream(ctx, gen, streamURL, ref.Bearer, payload, out)
	return out, nil
}

// RegenerateLast discards the most recent turn and replays its stored
// request parameters, returning the new response text. With stream set, the
// replay goes through AnswerStream and the content chunks are collected.
func (s *Session) RegenerateLast(ctx context.Context, stream bool) (string, error) {
	s.logger.Info("regenerating last answer", zap.Bool("stream", stream))

	params, err := s.state.takeLastTurn()
	if err != nil {
		s.logger.Warn("cannot regenerate", zap.Error(err))
		return "", err
	}

	if !stream {
		return s.Answer(ctx, params)
	}

	results, err := s.AnswerStream(ctx, params)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for res := range results {
		if res.Err != nil {
			return "", res.Err
		}
		switch res.Chunk.Kind {
		case ChunkContent:
			b.WriteString(res.Chunk.Content)
		case ChunkDone:
			return b.String(), nil
		case ChunkStatusUpdate:
			s.logger.Debug("status update during regeneration", zap.String("step", res.Chunk.Content))
		}
	}
	return b.String(), nil
}

// ClearSession empties the message history and the interaction ledger. The
// session identifier and the default LLM configuration are kept. An
// in-flight stream is not cancelled, but its writes become stale and are
// dropped instead of recreating entries.
func (s *Session) ClearSession() {
	s.state.clear()
}

// GetMessages returns a point-in-time copy of the message history.
func (s *Session) GetMessages() []types.Message {
	return s.state.snapshotMessages()
}

// GetState returns a point-in-time copy of the interaction ledger.
func (s *Session) GetState() []Interaction {
	return s.state.snapshotInteractions()
}

// enrich fills caller-omitted fields with session defaults. The enriched
// request, not the caller's original, is what beginTurn stores for
// regeneration.
func (s *Session) enrich(req AnswerRequest) AnswerRequest {
	if req.VisitorID == "" {
		req.VisitorID = types.DefaultServerUserID
	}
	if req.InteractionID == "" {
		req.InteractionID = util.NewID()
	}
	if req.SessionID == "" {
		req.SessionID = s.sessionID
	}
	if req.LLMConfig == nil {
		req.LLMConfig = s.llmConfig
	}
	return req
}
