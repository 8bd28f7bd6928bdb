package session

import (
	"go.uber.org/zap"

	"github.com/oramasearch/oramacore-client-go/pkg/jsonrepair"
)

// doneSentinel is the verbatim transport-level terminal marker.
const doneSentinel = "[DONE]"

// streamEvent is the wire shape of a structured stream payload. All fields
// are optional; events that match none of them fall back to raw data.
// Pointers distinguish an absent field from an empty one, since an empty
// content delta is still a valid content event.
type streamEvent struct {
	Content     *string `json:"content"`
	Step        *string `json:"step"`
	VerboseStep *string `json:"verbose_step"`
	Error       *string `json:"error"`
}

// decodeEvent classifies one SSE payload and applies the corresponding state
// mutation before returning the chunk, so that by the time a consumer
// observes the chunk the session state already reflects it. Keys are
// inspected in priority order: content, then step, then error. A non-nil
// error terminates the stream for the caller; session state stays
// inspectable.
func (s *Session) decodeEvent(gen uint64, data string) (StreamChunk, error) {
	if data == doneSentinel {
		s.state.markDone(gen)
		s.logger.Info("streaming completed successfully")
		return StreamChunk{Kind: ChunkDone}, nil
	}

	var ev streamEvent
	if err := jsonrepair.Parse(data, &ev); err != nil {
		// Broken beyond repair, or not an object at all. Hand the raw
		// payload to the caller rather than dropping the event.
		s.logger.Debug("unparseable stream payload", zap.String("data", data))
		return StreamChunk{Kind: ChunkRawData, Content: data}, nil
	}

	switch {
	case ev.Content != nil:
		var step, verboseStep string
		if ev.Step != nil {
			step = *ev.Step
		}
		if ev.VerboseStep != nil {
			verboseStep = *ev.VerboseStep
		}
		s.state.appendContent(gen, *ev.Content, step, verboseStep)
		return StreamChunk{Kind: ChunkContent, Content: *ev.Content}, nil

	case ev.Step != nil:
		s.state.setStep(gen, *ev.Step)
		return StreamChunk{Kind: ChunkStatusUpdate, Content: *ev.Step}, nil

	case ev.Error != nil:
		s.logger.Warn("stream error received", zap.String("error", *ev.Error))
		s.state.markError(gen, *ev.Error)
		return StreamChunk{}, &UpstreamError{Message: *ev.Error}

	default:
		s.logger.Debug("unknown structured stream payload", zap.String("data", data))
		return StreamChunk{Kind: ChunkRawData, Content: data}, nil
	}
}
