package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("base = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("printer.local:9000")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "printer.local:9000" {
		t.Fatalf("base = %q, want http://printer.local:9000", u.String())
	}

	u, err = parseBaseURL("https://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/path" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	u, err = parseBaseURL("https://example.com/oxprint///")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "https://example.com/oxprint" {
		t.Fatalf("base = %q, want trailing slashes trimmed", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL(http://) returned nil error, want missing host")
	}
}

func TestClient_GetKeepsBasePathAndQuery(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		gotPaths []string
		gotQuery []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPaths = append(gotPaths, r.URL.Path)
		gotQuery = append(gotQuery, r.URL.RawQuery)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/oxprint/", nil, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.BaseURL() != server.URL+"/oxprint" {
		t.Fatalf("BaseURL = %q, want %q", c.BaseURL(), server.URL+"/oxprint")
	}

	if _, err := c.CheckHealth(context.Background()); err != nil {
		t.Fatalf("CheckHealth returned error: %v", err)
	}
	if _, err := c.Get(context.Background(), "/api/printers?status=idle"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if _, err := c.Get(context.Background(), "http://elsewhere/api/health"); err == nil {
		t.Fatalf("Get with absolute URL returned nil error, want error")
	}

	mu.Lock()
	defer mu.Unlock()
	wantPaths := []string{"/oxprint/api/health", "/oxprint/api/printers"}
	if len(gotPaths) != 2 || gotPaths[0] != wantPaths[0] || gotPaths[1] != wantPaths[1] {
		t.Fatalf("paths = %v, want %v", gotPaths, wantPaths)
	}
	if gotQuery[1] != "status=idle" {
		t.Fatalf("query = %q, want status=idle", gotQuery[1])
	}
}

func TestClient_CheckHealthSendsHeadersAndDecodes(t *testing.T) {
	t.Parallel()

	var (
		mu        sync.Mutex
		gotPath   string
		gotAuth   []string
		gotCT     string
		gotUA     string
		gotMethod string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		gotAuth = r.Header.Values("Authorization")
		gotCT = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		gotMethod = r.Method
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(HealthCheckResult{Status: HealthHealthy, Timestamp: "2025-01-02T03:04:05Z"})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, TokenFunc(func() (string, bool) { return "secret", true }), 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	res, err := c.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth returned error: %v", err)
	}
	if !res.Healthy() || res.ParsedTimestamp().IsZero() {
		t.Fatalf("CheckHealth = %#v, want healthy with timestamp", res)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotMethod != http.MethodGet || gotPath != "/api/health" {
		t.Fatalf("request = %s %s, want GET /api/health", gotMethod, gotPath)
	}
	if len(gotAuth) != 1 || gotAuth[0] != "Bearer secret" {
		t.Fatalf("Authorization = %v, want [Bearer secret]", gotAuth)
	}
	if gotCT != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotCT)
	}
	if !strings.HasPrefix(gotUA, "oxdash/") {
		t.Fatalf("User-Agent = %q, want oxdash/*", gotUA)
	}
}

func TestClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	t.Parallel()

	sources := map[string]TokenSource{
		"nil source": nil,
		"absent":     TokenFunc(func() (string, bool) { return "", false }),
		"blank":      TokenFunc(func() (string, bool) { return "   ", true }),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			var present bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, present = r.Header["Authorization"]
				_, _ = w.Write([]byte(`{"status":"healthy"}`))
			}))
			defer server.Close()

			c, err := NewClient(server.URL, src, time.Second)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			if _, err := c.CheckHealth(context.Background()); err != nil {
				t.Fatalf("CheckHealth returned error: %v", err)
			}
			if present {
				t.Fatalf("Authorization header sent, want none")
			}
		})
	}
}

func TestClient_ReadsTokenOnEveryRequest(t *testing.T) {
	t.Parallel()

	var seen []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	t.Cleanup(server.Close)

	token := "first"
	c, err := NewClient(server.URL, TokenFunc(func() (string, bool) { return token, true }), time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.Get(context.Background(), "/api/health"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	token = "rotated"
	if _, err := c.Get(context.Background(), "/api/health"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "Bearer first" || seen[1] != "Bearer rotated" {
		t.Fatalf("Authorization headers = %v, want rotated token on second call", seen)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/system/status":
			http.Error(w, "nope", http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.CheckHealth(context.Background())
	if err == nil || !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("CheckHealth error = %v, want ErrMalformedResponse", err)
	}

	_, err = c.FetchSystemStatus(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("FetchSystemStatus error = %v, want StatusError 503", err)
	}
	if !strings.Contains(err.Error(), "returned status 503") {
		t.Fatalf("error = %q, want it to mention status 503", err.Error())
	}

	resp, err := c.Get(context.Background(), "/missing")
	if resp != nil || !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Get(/missing) = %v, %v, want StatusError 404", resp, err)
	}
}

func TestClient_TimeoutIsTransportFailure(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(server.URL, nil, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.CheckHealth(context.Background())
	if err == nil {
		t.Fatalf("CheckHealth returned nil error, want timeout")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) || errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("CheckHealth error = %v, want transport failure", err)
	}
}

func TestClient_FetchSystemStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"0.1.0","uptime":42,"database":"connected","static_files":true}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	got, err := c.FetchSystemStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchSystemStatus returned error: %v", err)
	}
	if got.Version != "0.1.0" || got.Uptime != 42 || got.Database != "connected" || !got.StaticFiles {
		t.Fatalf("FetchSystemStatus = %#v", got)
	}
}
