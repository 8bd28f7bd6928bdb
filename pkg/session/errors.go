package session

import (
	"errors"
	"fmt"
	"time"
)

// Precondition failures of RegenerateLast. No network call is made when one
// of these is returned.
var (
	// ErrNoHistory is returned when there is no prior turn to regenerate.
	ErrNoHistory = errors.New("no messages to regenerate")
	// ErrInvalidState is returned when the most recent message is not an
	// assistant message, which would mean regenerating mid-turn.
	ErrInvalidState = errors.New("last message is not an assistant message")
	// ErrMissingParameters is returned when no stored request parameters are
	// available to replay, e.g. after the session was cleared.
	ErrMissingParameters = errors.New("no last interaction parameters available")
)

// StreamTimeoutError terminates a stream whose total lifetime exceeded the
// configured StreamTimeout.
type StreamTimeoutError struct {
	Timeout time.Duration
}

func (e *StreamTimeoutError) Error() string {
	return fmt.Sprintf("stream timeout after %s", e.Timeout)
}

// StreamEventError is a transport-level failure observed mid-stream.
type StreamEventError struct {
	Err error
}

func (e *StreamEventError) Error() string {
	return fmt.Sprintf("stream event error: %v", e.Err)
}

func (e *StreamEventError) Unwrap() error { return e.Err }

// UpstreamError is an error reported by the server inside a decoded stream
// event payload.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "upstream error: " + e.Message
}
