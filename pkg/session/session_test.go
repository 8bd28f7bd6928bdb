package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oramasearch/oramacore-client-go/pkg/auth"
	"github.com/oramasearch/oramacore-client-go/pkg/client"
	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

func newTestClient(baseURL string) *client.Client {
	a := auth.New(auth.APIKeyConfig{
		APIKey:    "test-key",
		ReaderURL: baseURL,
		WriterURL: baseURL,
	}, nil)
	return client.New(a, nil)
}

func TestAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/collections/c1/ai/answer", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))

		var req AnswerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is a quokka?", req.Query)
		assert.Equal(t, types.DefaultServerUserID, req.VisitorID)
		assert.NotEmpty(t, req.InteractionID)
		assert.NotEmpty(t, req.SessionID)

		json.NewEncoder(w).Encode(map[string]any{
			"answer":  "a small marsupial",
			"sources": []map[string]any{{"id": "doc-1"}},
			"related": `["where do quokkas live?"]`,
		})
	}))
	defer srv.Close()

	s := New(newTestClient(srv.URL), "c1")
	answer, err := s.Answer(context.Background(), AnswerRequest{Query: "what is a quokka?"})
	require.NoError(t, err)
	assert.Equal(t, "a small marsupial", answer)

	messages := s.GetMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, types.RoleUser, messages[0].Role)
	assert.Equal(t, "what is a quokka?", messages[0].Content)
	assert.Equal(t, types.RoleAssistant, messages[1].Role)
	assert.Equal(t, "a small marsupial", messages[1].Content)

	state := s.GetState()
	require.Len(t, state, 1)
	assert.False(t, state[0].Loading)
	assert.False(t, state[0].Error)
	assert.Equal(t, "completed", state[0].CurrentStep)
	assert.Equal(t, "a small marsupial", state[0].Response)
	assert.NotEmpty(t, state[0].Sources)
}

func TestAnswerValidatesRequest(t *testing.T) {
	s := New(newTestClient("http://localhost:1"), "c1")
	_, err := s.Answer(context.Background(), AnswerRequest{})
	require.Error(t, err)
	assert.Empty(t, s.GetMessages(), "invalid requests must not touch history")
}

func TestAnswerUnauthorizedMarksInteraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := New(newTestClient(srv.URL), "c1")
	_, err := s.Answer(context.Background(), AnswerRequest{Query: "hello"})
	require.Error(t, err)
	var authErr *client.AuthError
	assert.ErrorAs(t, err, &authErr)

	state := s.GetState()
	require.Len(t, state, 1)
	assert.True(t, state[0].Error)
	assert.False(t, state[0].Loading, "a failed interaction must not stay loading")
	assert.NotEmpty(t, state[0].ErrorMessage)
}

func TestRegenerateLastPreconditions(t *testing.T) {
	t.Run("no history", func(t *testing.T) {
		s := New(newTestClient("http://localhost:1"), "c1")
		_, err := s.RegenerateLast(context.Background(), false)
		assert.ErrorIs(t, err, ErrNoHistory)
	})

	t.Run("last message not assistant", func(t *testing.T) {
		s := New(newTestClient("http://localhost:1"), "c1")
		s.state.messages = []types.Message{{Role: types.RoleUser, Content: "hi"}}
		s.state.interactions = []Interaction{newInteraction("i1", "hi")}
		_, err := s.RegenerateLast(context.Background(), false)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("no stored parameters", func(t *testing.T) {
		s := NewWithConfig(newTestClient("http://localhost:1"), "c1", Config{
			InitialMessages: []types.Message{
				{Role: types.RoleUser, Content: "hi"},
				{Role: types.RoleAssistant, Content: "hello"},
			},
		})
		s.state.interactions = []Interaction{newInteraction("i1", "hi")}
		_, err := s.RegenerateLast(context.Background(), false)
		assert.ErrorIs(t, err, ErrMissingParameters)
	})
}

func TestRegenerateLastReplaysStoredRequest(t *testing.T) {
	answers := []string{"first answer", "second answer"}
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		queries = append(queries, req.Query)

		answer := answers[0]
		answers = answers[1:]
		json.NewEncoder(w).Encode(map[string]string{"answer": answer})
	}))
	defer srv.Close()

	s := New(newTestClient(srv.URL), "c1")
	_, err := s.Answer(context.Background(), AnswerRequest{Query: "original question"})
	require.NoError(t, err)

	regenerated, err := s.RegenerateLast(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "second answer", regenerated)
	assert.Equal(t, []string{"original question", "original question"}, queries)

	// The turn is replaced, not appended.
	assert.Len(t, s.GetMessages(), 2)
	require.Len(t, s.GetState(), 1)
	assert.Equal(t, "second answer", s.GetState()[0].Response)
}

func TestClearSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
	}))
	defer srv.Close()

	s := New(newTestClient(srv.URL), "c1")
	id := s.SessionID()
	_, err := s.Answer(context.Background(), AnswerRequest{Query: "hi"})
	require.NoError(t, err)

	s.ClearSession()
	assert.Empty(t, s.GetMessages())
	assert.Empty(t, s.GetState())
	assert.Equal(t, id, s.SessionID(), "clearing must not rotate the session id")

	_, err = s.RegenerateLast(context.Background(), false)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestStaleGenerationWritesAreDropped(t *testing.T) {
	var state conversationState
	gen := state.beginTurn(AnswerRequest{Query: "hi", InteractionID: "i1"})
	state.clear()

	state.appendContent(gen, "late delta", "", "")
	state.markDone(gen)
	state.markError(gen, "late error")

	assert.Empty(t, state.snapshotMessages(), "stale writers must not recreate cleared entries")
	assert.Empty(t, state.snapshotInteractions())
}

func TestPairingInvariant(t *testing.T) {
	var state conversationState
	for i := 0; i < 3; i++ {
		gen := state.beginTurn(AnswerRequest{Query: "q", InteractionID: "i"})
		state.completeTurn(gen, "a", nil, "")
		assert.Equal(t, 2*len(state.snapshotInteractions()), len(state.snapshotMessages()))
	}

	_, err := state.takeLastTurn()
	require.NoError(t, err)
	assert.Equal(t, 2*len(state.snapshotInteractions()), len(state.snapshotMessages()))
}

func TestDecodeEventScenario(t *testing.T) {
	s := New(newTestClient("http://localhost:1"), "c1")
	gen := s.state.beginTurn(AnswerRequest{Query: "ping", InteractionID: "i1"})

	chunk, err := s.decodeEvent(gen, `{"step":"starting"}`)
	require.NoError(t, err)
	assert.Equal(t, ChunkStatusUpdate, chunk.Kind)
	assert.Equal(t, "starting", chunk.Content)

	chunk, err = s.decodeEvent(gen, `{"content":"pon"}`)
	require.NoError(t, err)
	assert.Equal(t, ChunkContent, chunk.Kind)
	assert.Equal(t, "pon", chunk.Content)

	chunk, err = s.decodeEvent(gen, `{"content":"g"}`)
	require.NoError(t, err)
	assert.Equal(t, "g", chunk.Content)

	chunk, err = s.decodeEvent(gen, "[DONE]")
	require.NoError(t, err)
	assert.Equal(t, ChunkDone, chunk.Kind)

	messages := s.GetMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, "pong", messages[1].Content)

	state := s.GetState()
	require.Len(t, state, 1)
	assert.Equal(t, "pong", state[0].Response)
	assert.False(t, state[0].Loading)
	assert.Equal(t, "completed", state[0].CurrentStep)
}

func TestDecodeEventMalformedPayloads(t *testing.T) {
	s := New(newTestClient("http://localhost:1"), "c1")
	gen := s.state.beginTurn(AnswerRequest{Query: "q", InteractionID: "i1"})

	// Truncated JSON is repaired, not dropped.
	chunk, err := s.decodeEvent(gen, `{"content":"hel`)
	require.NoError(t, err)
	assert.Equal(t, ChunkContent, chunk.Kind)
	assert.Equal(t, "hel", chunk.Content)

	// Unrepairable payloads surface as raw data.
	chunk, err = s.decodeEvent(gen, "::::")
	require.NoError(t, err)
	assert.Equal(t, ChunkRawData, chunk.Kind)
	assert.Equal(t, "::::", chunk.Content)

	// A structured object with no recognized key also falls back to raw.
	chunk, err = s.decodeEvent(gen, `{"mystery":1}`)
	require.NoError(t, err)
	assert.Equal(t, ChunkRawData, chunk.Kind)
}

func TestDecodeEventUpstreamError(t *testing.T) {
	s := New(newTestClient("http://localhost:1"), "c1")
	gen := s.state.beginTurn(AnswerRequest{Query: "q", InteractionID: "i1"})

	_, err := s.decodeEvent(gen, `{"error":"model unavailable"}`)
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "model unavailable", upstream.Message)

	state := s.GetState()
	require.Len(t, state, 1)
	assert.True(t, state[0].Error)
	assert.Equal(t, "model unavailable", state[0].ErrorMessage)
	assert.False(t, state[0].Loading)
}

func TestDecodeEventContentBeatsError(t *testing.T) {
	s := New(newTestClient("http://localhost:1"), "c1")
	gen := s.state.beginTurn(AnswerRequest{Query: "q", InteractionID: "i1"})

	chunk, err := s.decodeEvent(gen, `{"content":"ok","error":"ignored"}`)
	require.NoError(t, err)
	assert.Equal(t, ChunkContent, chunk.Kind)
	assert.Equal(t, "ok", chunk.Content)
}
