package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 4 << 20

// Config holds configuration for the API client
type Config struct {
	// BaseURL is the root of the HTTP/JSON API, e.g. http://host/api
	BaseURL string

	// Timeout bounds each request; zero means 10s
	Timeout time.Duration

	// Transport is the round tripper to use; wire the session transport
	// here so every request carries the bearer credential
	Transport http.RoundTripper
}

// Client is the thin HTTP binding to the Jikgwan backend. All response
// shapes are normalized through one decode step; all failures come back as
// *Error or a wrapped transport error.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new API client
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.BaseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
	}, nil
}

// do performs one JSON request and decodes the normalized response into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// doMultipart performs one multipart form request, used by signup where an
// optional profile image rides along with the fields.
func (c *Client) doMultipart(ctx context.Context, method, path string, form func(io.Writer) (string, error), out interface{}) error {
	var buf bytes.Buffer
	contentType, err := form(&buf)
	if err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	return decodeResponse(resp.StatusCode, respBody, out)
}
