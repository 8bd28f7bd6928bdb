package session

import "time"

// ChunkKind classifies a StreamChunk.
type ChunkKind int

const (
	// ChunkConnectionOpened signals that the streaming connection is up.
	ChunkConnectionOpened ChunkKind = iota
	// ChunkContent carries a content delta of the answer.
	ChunkContent
	// ChunkStatusUpdate carries a processing-pipeline step label.
	ChunkStatusUpdate
	// ChunkRawData carries a payload that did not match any known shape.
	ChunkRawData
	// ChunkDone signals that the stream completed.
	ChunkDone
	// ChunkRetry signals an imminent reconnection attempt.
	ChunkRetry
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkConnectionOpened:
		return "connection_opened"
	case ChunkContent:
		return "content"
	case ChunkStatusUpdate:
		return "status_update"
	case ChunkRawData:
		return "raw_data"
	case ChunkDone:
		return "done"
	case ChunkRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// StreamChunk is one semantically classified unit of a streamed answer.
type StreamChunk struct {
	Kind ChunkKind
	// Content holds the content delta, the step label, or the raw payload
	// depending on Kind.
	Content string
	// Attempt and Delay are set on ChunkRetry only.
	Attempt int
	Delay   time.Duration
}

// StreamResult is one item of the streaming sequence. When Err is set it is
// the terminal item; the channel closes afterwards.
type StreamResult struct {
	Chunk StreamChunk
	Err   error
}
