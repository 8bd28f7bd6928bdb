// Package client implements the authenticated HTTP transport used by every
// other namespace of the Orama client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/oramasearch/oramacore-client-go/pkg/auth"
	"github.com/oramasearch/oramacore-client-go/pkg/jsonrepair"
)

const userAgent = "oramacore-client-go/1.2.0"

// KeyPosition controls where the bearer credential is placed on a request.
type KeyPosition int

const (
	// KeyInHeader sends the credential as an Authorization bearer header.
	KeyInHeader KeyPosition = iota
	// KeyInQuery sends the credential as the api-key query parameter.
	KeyInQuery
)

// Request describes one API call.
type Request struct {
	Target      auth.Target
	Method      string
	Path        string
	KeyPosition KeyPosition
	Body        any
	Params      url.Values
}

// Get builds a GET request.
func Get(path string, target auth.Target, keyPosition KeyPosition) Request {
	return Request{Target: target, Method: http.MethodGet, Path: path, KeyPosition: keyPosition}
}

// Post builds a POST request with a JSON body.
func Post(path string, target auth.Target, keyPosition KeyPosition, body any) Request {
	return Request{Target: target, Method: http.MethodPost, Path: path, KeyPosition: keyPosition, Body: body}
}

// WithParam adds a query parameter and returns the request.
func (r Request) WithParam(key, value string) Request {
	if r.Params == nil {
		r.Params = url.Values{}
	}
	r.Params.Set(key, value)
	return r
}

// Client is the shared HTTP transport. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	auth       *auth.Auth
	logger     *zap.Logger
}

// New creates a Client. A nil logger defaults to a no-op logger.
func New(a *auth.Auth, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{},
		auth:       a,
		logger:     logger,
	}
}

// JSON performs the request and decodes the response body into out. The
// decode tolerates structurally broken JSON via the recovery parser. A nil
// out discards the body.
func (c *Client) JSON(ctx context.Context, req Request, out any) error {
	res, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return StatusError(res.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := jsonrepair.Parse(string(body), out); err != nil {
		return fmt.Errorf("failed to parse API response: %w", err)
	}
	return nil
}

// Do performs the request and returns the raw response. Callers own the
// response body. The status code is not inspected.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	ref, err := c.auth.GetRef(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(ref.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	u = u.JoinPath(req.Path)

	params := url.Values{}
	for k, vs := range req.Params {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	if req.KeyPosition == KeyInQuery {
		params.Set("api-key", ref.Bearer)
	}
	u.RawQuery = params.Encode()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if req.KeyPosition == KeyInHeader {
		httpReq.Header.Set("Authorization", "Bearer "+ref.Bearer)
	}

	c.logger.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("target", string(req.Target)))

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return res, nil
}

// AuthRef resolves the credential and base URL for a target. The session
// stream uses this to open its own long-lived connection.
func (c *Client) AuthRef(ctx context.Context, target auth.Target) (auth.Ref, error) {
	return c.auth.GetRef(ctx, target)
}

// Logger exposes the client's logger so composing namespaces log the same way.
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// StatusError maps a non-success HTTP status to the typed error taxonomy.
func StatusError(status int, body string) error {
	switch status {
	case http.StatusUnauthorized:
		return &AuthError{Message: "Unauthorized: are you using the correct API Key?"}
	case http.StatusBadRequest:
		return &APIError{Status: status, Message: "Bad Request: " + body}
	default:
		return &APIError{Status: status, Message: body}
	}
}
