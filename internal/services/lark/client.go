// Package lark implements the typed accessors the workflow needs from the
// collaboration platform: meeting lookup, recording resolution, minutes
// transcript export, AI summary tasks, document assembly, and card messaging.
//
// Bot-scoped calls authenticate with a cached tenant access token; calls that
// touch a user's minutes take the caller-supplied user access token.
package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"scribe/internal/services"
)

const defaultHTTPTimeout = 15 * time.Second

// Client wraps the platform OpenAPI surface.
type Client struct {
	appID      string
	appSecret  string
	baseURL    string
	httpClient *http.Client

	tokenMu     sync.Mutex
	tenantToken string
	tokenExpiry time.Time
}

// Option customizes the platform client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a platform API client.
func NewClient(appID, appSecret, baseURL string, opts ...Option) *Client {
	client := &Client{
		appID:      strings.TrimSpace(appID),
		appSecret:  strings.TrimSpace(appSecret),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// envelope is the standard response wrapper: a zero code means success.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, token, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, token, body, out)
}

func (c *Client) patchJSON(ctx context.Context, path, token string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, token, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return services.Wrap(services.ErrRemoteCall, "lark", path, "decode response", err)
	}
	if env.Code != 0 {
		return services.Wrap(services.ErrRemoteCall, "lark", path,
			fmt.Sprintf("api code %d: %s", env.Code, strings.TrimSpace(env.Msg)), nil)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return services.Wrap(services.ErrRemoteCall, "lark", path, "decode data", err)
	}
	return nil
}

// decodeInto parses a raw body for endpoints that do not use the standard
// envelope, such as the tenant token endpoint.
func decodeInto(raw []byte, out any) error {
	return json.Unmarshal(raw, out)
}

func (c *Client) doRaw(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, services.Wrap(services.ErrRemoteCall, "lark", path, "encode request", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "lark", path, "build request", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "lark", path, "request failed", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteCall, "lark", path, "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrRemoteCall, "lark", path,
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}
	return raw, nil
}
