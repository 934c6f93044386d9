// Package clickup is a small client for the ClickUp v2 REST API.
//
// Every request authenticates with a static token sent verbatim in the
// Authorization header. Responses with a non-2xx status are logged and their
// body is still handed to the caller, so an error envelope typically surfaces
// one layer up as a *DecodeError from the typed operations.
//
// API docs are at https://clickup.com/api. A personal token can be created in
// ClickUp under "Settings > My Apps > Apps > API Token".
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultBaseURL is the versioned REST surface of ClickUp.
const DefaultBaseURL = "https://app.clickup.com/api/v2/"

// Params are query parameters. String values are sent as is; every other
// value is JSON-encoded, so structured filters travel as inline JSON.
type Params map[string]any

// Client talks to the ClickUp API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger for request tracing and HTTP error reports.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client authenticating with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    http.DefaultClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET request and returns the JSON body.
func (c *Client) Get(ctx context.Context, path string, params Params) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, path, params, nil)
}

// Post issues a POST request with data as JSON body.
func (c *Client) Post(ctx context.Context, path string, data any, params Params) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPost, path, params, data)
}

// Put issues a PUT request with data as JSON body.
func (c *Client) Put(ctx context.Context, path string, data any, params Params) (json.RawMessage, error) {
	return c.request(ctx, http.MethodPut, path, params, data)
}

// GetRaw is like Get. When popTopLevel is true the response must be a JSON
// object with exactly one key, such as {"tasks": [...]}, and the value of that
// key is returned.
func (c *Client) GetRaw(ctx context.Context, path string, params Params, popTopLevel bool) (json.RawMessage, error) {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if !popTopLevel {
		return body, nil
	}
	return popEnvelope(path, body)
}

func popEnvelope(path string, body json.RawMessage) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, goerr.Wrap(ErrEnvelope, "response is not a JSON object",
			goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	if len(envelope) != 1 {
		keys := make([]string, 0, len(envelope))
		for k := range envelope {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, goerr.Wrap(ErrEnvelope, "unexpected response envelope",
			goerr.V("path", path), goerr.V("keys", keys))
	}
	for _, v := range envelope {
		return v, nil
	}
	return nil, nil
}

func (c *Client) request(ctx context.Context, method, path string, params Params, data any) (json.RawMessage, error) {
	query, err := encodeParams(params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode query parameters", goerr.V("path", path))
	}

	endpoint := c.url(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode request body", goerr.V("path", path))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("method", method), goerr.V("path", path))
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("clickup request", "method", method, "path", path, "params", query.Encode())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "request failed", goerr.V("method", method), goerr.V("path", path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body", goerr.V("method", method), goerr.V("path", path))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("clickup HTTP error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(raw))
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, goerr.New("response is not valid JSON",
			goerr.V("method", method),
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", previewPayload(raw)))
	}
	return json.RawMessage(raw), nil
}

func (c *Client) url(path string) string {
	return strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func encodeParams(params Params) (url.Values, error) {
	values := url.Values{}
	for key, value := range params {
		if s, ok := value.(string); ok {
			values.Set(key, s)
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode parameter", goerr.V("key", key))
		}
		values.Set(key, string(encoded))
	}
	return values, nil
}
