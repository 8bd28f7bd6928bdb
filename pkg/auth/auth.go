// Package auth resolves bearer credentials and base URLs for the two
// addressable roles of the Orama platform, the reader and the writer.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Target selects which side of the platform a request is addressed to.
type Target string

const (
	TargetReader Target = "reader"
	TargetWriter Target = "writer"
)

// Ref is a resolved authentication reference: the bearer token to present
// and the base URL to address.
type Ref struct {
	Bearer  string
	BaseURL string
}

// Config produces a Ref for a target. Implementations are APIKeyConfig and
// JWTConfig.
type Config interface {
	resolve(ctx context.Context, httpClient *http.Client, target Target) (Ref, error)
}

// APIKeyConfig authenticates with a static API key.
type APIKeyConfig struct {
	APIKey    string
	ReaderURL string
	WriterURL string
}

func (c APIKeyConfig) resolve(_ context.Context, _ *http.Client, target Target) (Ref, error) {
	var baseURL string
	switch target {
	case TargetWriter:
		baseURL = c.WriterURL
		if baseURL == "" {
			return Ref{}, &ConfigError{Message: "cannot perform a request to a writer without the writerURL. Use cluster.writerURL to configure it"}
		}
	case TargetReader:
		baseURL = c.ReaderURL
		if baseURL == "" {
			return Ref{}, &ConfigError{Message: "cannot perform a request to a reader without the readerURL. Use cluster.readerURL to configure it"}
		}
	default:
		return Ref{}, &ConfigError{Message: fmt.Sprintf("unknown target %q", target)}
	}

	return Ref{Bearer: c.APIKey, BaseURL: baseURL}, nil
}

// JWTConfig authenticates by exchanging a private API key for a JWT at an
// authentication endpoint.
type JWTConfig struct {
	AuthJWTURL    string
	CollectionID  string
	PrivateAPIKey string
	ReaderURL     string
	WriterURL     string
}

type jwtResponse struct {
	JWT          string `json:"jwt"`
	WriterURL    string `json:"writerURL"`
	ReaderAPIKey string `json:"readerApiKey"`
	ReaderURL    string `json:"readerURL"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (c JWTConfig) resolve(ctx context.Context, httpClient *http.Client, target Target) (Ref, error) {
	resp, err := c.requestJWT(ctx, httpClient, "write")
	if err != nil {
		return Ref{}, err
	}

	switch target {
	case TargetReader:
		baseURL := c.ReaderURL
		if baseURL == "" {
			baseURL = resp.ReaderURL
		}
		return Ref{Bearer: resp.ReaderAPIKey, BaseURL: baseURL}, nil
	case TargetWriter:
		baseURL := c.WriterURL
		if baseURL == "" {
			baseURL = resp.WriterURL
		}
		return Ref{Bearer: resp.JWT, BaseURL: baseURL}, nil
	default:
		return Ref{}, &ConfigError{Message: fmt.Sprintf("unknown target %q", target)}
	}
}

func (c JWTConfig) requestJWT(ctx context.Context, httpClient *http.Client, scope string) (*jwtResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"collectionId":  c.CollectionID,
		"privateApiKey": c.PrivateAPIKey,
		"scope":         scope,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal jwt request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthJWTURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create jwt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jwt request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read jwt response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("jwt request to %s failed: status %d, body: %s", c.AuthJWTURL, res.StatusCode, body)
	}

	var parsed jwtResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal jwt response: %w", err)
	}
	return &parsed, nil
}

// ConfigError reports a misconfigured authentication setup.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "auth configuration error: " + e.Message
}

// Auth resolves references on demand. Tokens are fetched fresh per request;
// lifetime and rotation are the auth endpoint's responsibility.
type Auth struct {
	config     Config
	httpClient *http.Client
}

// New creates an Auth from a configuration. If httpClient is nil,
// http.DefaultClient is used.
func New(config Config, httpClient *http.Client) *Auth {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Auth{config: config, httpClient: httpClient}
}

// GetRef resolves the bearer token and base URL for a target.
func (a *Auth) GetRef(ctx context.Context, target Target) (Ref, error) {
	return a.config.resolve(ctx, a.httpClient, target)
}
