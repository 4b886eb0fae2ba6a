package api

import (
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

// HealthChecker is implemented by *Client and consumed by the status poller.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (HealthCheckResult, error)
}

// TokenSource yields the bearer token for outgoing requests. A false second
// return value means no credential is stored.
type TokenSource interface {
	Token() (string, bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, bool)

// Token implements TokenSource.
func (f TokenFunc) Token() (string, bool) { return f() }

// Ensure Client implements HealthChecker at compile time.
var _ HealthChecker = (*Client)(nil)

// ErrMalformedResponse is wrapped when a response body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError reports a non-2xx response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Response is the raw outcome of a dispatched request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client talks to the OxPrint HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	userAgent string
}

const (
	DefaultBaseURL        = "http://localhost:8080"
	DefaultRequestTimeout = 10 * time.Second

	defaultUserAgent = "oxdash/0.1"
	healthPath       = "/api/health"
	systemStatusPath = "/api/system/status"
	maxBodyBytes     = 1 << 20
)

// NewClient builds a Client for baseURL. Empty baseURL uses DefaultBaseURL,
// a nil tokens source sends unauthenticated requests and a non-positive
// timeout uses DefaultRequestTimeout.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		tokens:    tokens,
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized base endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CheckHealth queries /api/health.
func (c *Client) CheckHealth(ctx context.Context) (HealthCheckResult, error) {
	if c == nil {
		return HealthCheckResult{}, fmt.Errorf("client is nil")
	}
	var payload HealthCheckResult
	if err := c.getJSON(ctx, healthPath, &payload); err != nil {
		return HealthCheckResult{}, err
	}
	return payload, nil
}

// FetchSystemStatus queries /api/system/status.
func (c *Client) FetchSystemStatus(ctx context.Context) (SystemStatus, error) {
	if c == nil {
		return SystemStatus{}, fmt.Errorf("client is nil")
	}
	var payload SystemStatus
	if err := c.getJSON(ctx, systemStatusPath, &payload); err != nil {
		return SystemStatus{}, err
	}
	return payload, nil
}

// Get issues a GET for path appended to the base URL, keeping any base path
// prefix. path may carry a query string. The stored token is looked up on
// every call. Non-2xx responses are returned as *StatusError.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse request path %q: %w", path, err)
	}
	if rel.IsAbs() || rel.Host != "" {
		return nil, fmt.Errorf("request path %q must be relative", path)
	}
	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + "/" + strings.TrimLeft(rel.Path, "/")
	reqURL.RawPath = ""
	reqURL.RawQuery = rel.RawQuery
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token, ok := c.token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: rel.String(), StatusCode: resp.StatusCode, Body: body}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return fmt.Errorf("decode response: %w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) token() (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	token, ok := c.tokens.Token()
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
