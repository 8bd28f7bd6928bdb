package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/oramasearch/oramacore-client-go/pkg/client"
)

// newStreamHTTPClient builds the HTTP client used for long-lived streaming
// requests. No overall client timeout is set, since it would also cut body
// reads; the connection phase is bounded by ResponseHeaderTimeout and the
// stream lifetime by the request context.
func newStreamHTTPClient(cfg StreamConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.ConnectionTimeout
	return &http.Client{Transport: transport}
}

// runStream drives one streaming answer: it connects (with backoff-based
// reconnection while establishing), reads SSE events, decodes each one and
// delivers the resulting chunks on out. It owns out and closes it when the
// sequence ends.
func (s *Session) runStream(ctx context.Context, gen uint64, streamURL, bearer string, payload []byte, out chan<- StreamResult) {
	defer close(out)

	ctx, cancel := context.WithTimeout(ctx, s.streamConfig.StreamTimeout)
	defer cancel()

	resp, ok := s.connectWithRetry(ctx, gen, streamURL, bearer, payload, out)
	if !ok {
		return
	}
	defer resp.Body.Close()

	if !s.emit(ctx, gen, out, StreamResult{Chunk: StreamChunk{Kind: ChunkConnectionOpened}}) {
		return
	}
	s.logger.Debug("stream connection opened")

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var dataLines []string
	fieldSeen := false

	dispatch := func(data string) (done bool) {
		chunk, err := s.decodeEvent(gen, data)
		if err != nil {
			s.emit(ctx, gen, out, StreamResult{Err: err})
			return true
		}
		if !s.emit(ctx, gen, out, StreamResult{Chunk: chunk}) {
			return true
		}
		return chunk.Kind == ChunkDone
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			// Blank line terminates an event. Empty events (heartbeats) are
			// dispatched too, never silently dropped.
			if fieldSeen {
				data := strings.Join(dataLines, "\n")
				dataLines = dataLines[:0]
				fieldSeen = false
				if dispatch(data) {
					return
				}
			}
			continue
		}

		fieldSeen = true
		if value, isData := strings.CutPrefix(line, "data:"); isData {
			dataLines = append(dataLines, strings.TrimPrefix(value, " "))
		}
		// event:, id:, retry: and comment lines carry no payload here.
	}

	if fieldSeen {
		// Event cut off without its terminating blank line.
		if dispatch(strings.Join(dataLines, "\n")) {
			return
		}
	}

	s.finishWithoutDone(ctx, gen, out, scanner.Err())
}

// connectWithRetry opens the streaming request, retrying connection-phase
// failures with exponential backoff up to MaxRetries. Non-success HTTP
// statuses are permanent. Returns false when the stream is over (the
// terminal error, if any, has been emitted).
func (s *Session) connectWithRetry(ctx context.Context, gen uint64, streamURL, bearer string, payload []byte, out chan<- StreamResult) (*http.Response, bool) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.streamConfig.InitialRetryDelay
	bo.MaxInterval = s.streamConfig.MaxRetryDelay

	for attempt := 0; ; attempt++ {
		resp, err := s.connect(ctx, streamURL, bearer, payload)
		if err == nil {
			return resp, true
		}

		if ctx.Err() != nil {
			s.finishWithoutDone(ctx, gen, out, err)
			return nil, false
		}

		var apiErr *client.APIError
		var authErr *client.AuthError
		permanent := errors.As(err, &apiErr) || errors.As(err, &authErr)
		if permanent || attempt >= s.streamConfig.MaxRetries {
			s.logger.Error("stream connection failed", zap.Error(err), zap.Int("attempts", attempt+1))
			s.state.markError(gen, err.Error())
			s.emit(ctx, gen, out, StreamResult{Err: &StreamEventError{Err: err}})
			return nil, false
		}

		delay := bo.NextBackOff()
		s.logger.Warn("stream connection attempt failed, retrying",
			zap.Error(err), zap.Int("attempt", attempt+1), zap.Duration("delay", delay))
		if !s.emit(ctx, gen, out, StreamResult{Chunk: StreamChunk{Kind: ChunkRetry, Attempt: attempt + 1, Delay: delay}}) {
			return nil, false
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			s.finishWithoutDone(ctx, gen, out, ctx.Err())
			return nil, false
		}
	}
}

func (s *Session) connect(ctx context.Context, streamURL, bearer string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, streamURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := s.streamHTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		return nil, client.StatusError(resp.StatusCode, string(body))
	}
	return resp, nil
}

// finishWithoutDone closes out a stream that ended without the terminal
// sentinel: a timeout, an explicit cancellation, or a transport failure.
// Partial state already written to the session is retained.
func (s *Session) finishWithoutDone(ctx context.Context, gen uint64, out chan<- StreamResult, readErr error) {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		timeoutErr := &StreamTimeoutError{Timeout: s.streamConfig.StreamTimeout}
		s.logger.Error("stream timed out", zap.Duration("timeout", s.streamConfig.StreamTimeout))
		s.state.markError(gen, timeoutErr.Error())
		s.emitFinal(out, StreamResult{Err: timeoutErr})

	case errors.Is(ctx.Err(), context.Canceled):
		// The consumer walked away. Mark the interaction so it does not
		// stay loading forever.
		s.logger.Info("stream aborted by caller")
		s.state.markAborted(gen)

	default:
		if readErr == nil {
			readErr = errors.New("unexpected end of stream")
		}
		eventErr := &StreamEventError{Err: readErr}
		s.logger.Error("stream transport failure", zap.Error(readErr))
		s.state.markError(gen, eventErr.Error())
		s.emitFinal(out, StreamResult{Err: eventErr})
	}
}

// emit delivers one item, giving up when the context ends. On cancellation
// the interaction is marked aborted.
func (s *Session) emit(ctx context.Context, gen uint64, out chan<- StreamResult, r StreamResult) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			s.state.markAborted(gen)
		} else {
			s.state.markError(gen, (&StreamTimeoutError{Timeout: s.streamConfig.StreamTimeout}).Error())
		}
		return false
	}
}

// emitFinal delivers the terminal item without blocking indefinitely; the
// channel is buffered, so this only drops the item when the consumer has
// abandoned a full channel.
func (s *Session) emitFinal(out chan<- StreamResult, r StreamResult) {
	select {
	case out <- r:
	default:
	}
}
