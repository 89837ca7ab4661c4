package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultTimeout = 30 * time.Second
)

// Client is the Confluence Cloud API client.
//
// A Client memoizes space key to space ID lookups for its lifetime.
type Client struct {
	baseURL     string
	email       string
	apiToken    string
	bearerToken string
	httpClient  *http.Client
	retry       RetryPolicy
	logger      *slog.Logger

	mu       sync.Mutex
	spaceIDs map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithBearerToken authenticates with a personal access token instead of
// basic auth.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.bearerToken = token
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryPolicy sets the retry policy used for read requests.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new Confluence API client.
func NewClient(baseURL, email, apiToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		email:    email,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		retry:    DefaultRetryPolicy(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		spaceIDs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// authorize sets the credentials header on req.
func (c *Client) authorize(req *http.Request) {
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
		return
	}
	req.SetBasicAuth(c.email, c.apiToken)
}

// do executes an HTTP request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		return nil, newErrorResponse(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// getWithRetry performs a GET request, retrying transient failures with
// exponential backoff.
func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	attempt := 0

	operation := func() error {
		attempt++
		b, err := c.do(ctx, http.MethodGet, path, nil)
		if err == nil {
			body = b
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		var apiErr *ErrorResponse
		if errors.As(err, &apiErr) && !c.retry.Retryable(apiErr.StatusCode) {
			return backoff.Permanent(err)
		}
		c.logger.Debug("retrying read request", "path", path, "attempt", attempt, "error", err)
		return err
	}

	if err := backoff.Retry(operation, c.retry.backOff(ctx)); err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return nil, permanent.Err
		}
		return nil, err
	}
	return body, nil
}

// Get performs a GET request. Reads are retried according to the client's
// retry policy.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.getWithRetry(ctx, path)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}
