// ABOUTME: Authenticated HTTP client for the tcg-binder backend
// ABOUTME: Holds requests until the session is ready and attaches the bearer token

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/markalston/tcg-binder/internal/session"
)

// IdentitySource supplies the identity for each outgoing request
type IdentitySource interface {
	AwaitIdentity(ctx context.Context) (*session.Identity, error)
}

// ResponseError is returned for any non-2xx response. The body is kept
// verbatim for callers that want to inspect it.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: backend returned status %d", e.Method, e.Path, e.StatusCode)
}

// Client is the API client for the tcg-binder backend
type Client struct {
	baseURL        string
	identity       IdentitySource
	httpClient     *http.Client
	limiter        *rate.Limiter
	onUnauthorized func(*http.Response)
	logger         *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit paces requests to perSecond. Zero or less disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithUnauthorizedHook runs fn after a 401 has been logged
func WithUnauthorizedHook(fn func(*http.Response)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new API client with the given base URL
func New(baseURL string, identity IdentitySource, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		identity: identity,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request once the session is ready. The caller must close the
// response body. Transport errors are returned as-is.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	u, err := c.identity.AwaitIdentity(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if u != nil && u.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+u.AccessToken)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("Unauthorized access detected", "method", method, "path", path)
		if c.onUnauthorized != nil {
			c.onUnauthorized(resp)
		}
	}

	return resp, nil
}

// do sends a request and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	resp, err := c.Do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &ResponseError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: data}
	}

	return DecodeJSON(resp.Body, out)
}

// Get issues a GET and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// Patch issues a PATCH with a JSON body
func (c *Client) Patch(ctx context.Context, path string, in, out interface{}) error {
	body, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, body, "application/json", out)
}

// Delete issues a DELETE and decodes the JSON response into out
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out)
}

// PostMultipart uploads content as a single multipart form file field
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, content []byte, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), out)
}

// DecodeJSON decodes r into out. A nil out drains nothing and succeeds.
func DecodeJSON(r io.Reader, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func encodeJSON(in interface{}) (io.Reader, error) {
	if in == nil {
		return nil, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), nil
}
