package session

import (
	"encoding/json"
	"sync"

	"github.com/oramasearch/oramacore-client-go/pkg/types"
)

const (
	stepStarting  = "starting"
	stepCompleted = "completed"
)

// Interaction is one question/answer exchange record, richer than a plain
// message: it accumulates the response and tracks status, errors and
// pipeline step labels.
type Interaction struct {
	ID                 string              `json:"id"`
	Query              string              `json:"query"`
	Response           string              `json:"response"`
	Sources            json.RawMessage     `json:"sources,omitempty"`
	Loading            bool                `json:"loading"`
	Error              bool                `json:"error"`
	ErrorMessage       string              `json:"error_message,omitempty"`
	Aborted            bool                `json:"aborted"`
	Related            string              `json:"related,omitempty"`
	CurrentStep        string              `json:"current_step,omitempty"`
	CurrentStepVerbose string              `json:"current_step_verbose,omitempty"`
	SelectedLLM        *types.LLMConfig    `json:"selected_llm,omitempty"`
	OptimizedQuery     *types.SearchParams `json:"optimized_query,omitempty"`
	AdvancedAutoquery  json.RawMessage     `json:"advanced_autoquery,omitempty"`
}

func newInteraction(id, query string) Interaction {
	return Interaction{
		ID:          id,
		Query:       query,
		Loading:     true,
		CurrentStep: stepStarting,
	}
}

// conversationState is the session's message history and interaction ledger.
// The two sequences are paired, one interaction per user+assistant message
// pair, and are guarded together by a single mutex so the pairing invariant
// holds under concurrent access.
//
// generation tags in-flight streams: ClearSession and turn removal bump it,
// and mutators carrying a stale generation drop their write instead of
// resurrecting entries in a cleared or rewound session.
type conversationState struct {
	mu           sync.Mutex
	messages     []types.Message
	interactions []Interaction
	lastRequest  *AnswerRequest
	generation   uint64
}

// beginTurn appends the user message, the empty assistant placeholder and
// the new interaction, stores the request for later regeneration, and
// returns the generation the turn belongs to.
func (s *conversationState) beginTurn(req AnswerRequest) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := req
	s.lastRequest = &stored
	s.messages = append(s.messages,
		types.Message{Role: types.RoleUser, Content: req.Query},
		types.Message{Role: types.RoleAssistant},
	)
	s.interactions = append(s.interactions, newInteraction(req.InteractionID, req.Query))
	return s.generation
}

// appendContent adds a content delta to the current assistant message and
// interaction, updating step labels when present.
func (s *conversationState) appendContent(gen uint64, delta, step, verboseStep string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}

	if n := len(s.messages); n > 0 && s.messages[n-1].Role == types.RoleAssistant {
		s.messages[n-1].Content += delta
	}
	if n := len(s.interactions); n > 0 {
		cur := &s.interactions[n-1]
		cur.Response += delta
		if step != "" {
			cur.CurrentStep = step
		}
		if verboseStep != "" {
			cur.CurrentStepVerbose = verboseStep
		}
	}
}

func (s *conversationState) setStep(gen uint64, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	if n := len(s.interactions); n > 0 {
		s.interactions[n-1].CurrentStep = step
	}
}

// completeTurn finalizes the current interaction after a successful
// non-streaming answer, writing the full response into both sequences.
func (s *conversationState) completeTurn(gen uint64, answer string, sources json.RawMessage, related string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}

	if n := len(s.interactions); n > 0 {
		cur := &s.interactions[n-1]
		cur.Response = answer
		cur.Loading = false
		cur.CurrentStep = stepCompleted
		if sources != nil {
			cur.Sources = sources
		}
		if related != "" {
			cur.Related = related
		}
	}
	if n := len(s.messages); n > 0 {
		s.messages[n-1].Content = answer
	}
}

// markDone finalizes the current interaction on the terminal stream marker.
func (s *conversationState) markDone(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	if n := len(s.interactions); n > 0 {
		s.interactions[n-1].Loading = false
		s.interactions[n-1].CurrentStep = stepCompleted
	}
}

func (s *conversationState) markError(gen uint64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	if n := len(s.interactions); n > 0 {
		s.interactions[n-1].Error = true
		s.interactions[n-1].ErrorMessage = message
		s.interactions[n-1].Loading = false
	}
}

func (s *conversationState) markAborted(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	if n := len(s.interactions); n > 0 {
		s.interactions[n-1].Aborted = true
		s.interactions[n-1].Loading = false
	}
}

// takeLastTurn validates the regeneration preconditions and, when they hold,
// removes the last user+assistant message pair plus the last interaction and
// returns the stored request parameters to replay. The checks and the pop
// happen under one lock acquisition. Removal bumps the generation so a stale
// stream of the removed turn cannot write into its replacement.
func (s *conversationState) takeLastTurn() (AnswerRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.interactions) == 0 || len(s.messages) == 0 {
		return AnswerRequest{}, ErrNoHistory
	}
	if s.messages[len(s.messages)-1].Role != types.RoleAssistant {
		return AnswerRequest{}, ErrInvalidState
	}
	if s.lastRequest == nil {
		return AnswerRequest{}, ErrMissingParameters
	}

	params := *s.lastRequest
	if len(s.messages) >= 2 {
		s.messages = s.messages[:len(s.messages)-2]
	} else {
		s.messages = s.messages[:0]
	}
	s.interactions = s.interactions[:len(s.interactions)-1]
	s.generation++
	return params, nil
}

// clear empties both sequences and bumps the generation. The session
// identifier and stored defaults live on the Session, not here, and survive.
func (s *conversationState) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.interactions = nil
	s.lastRequest = nil
	s.generation++
}

func (s *conversationState) snapshotMessages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *conversationState) snapshotInteractions() []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out
}
