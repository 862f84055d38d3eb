// ABOUTME: Tests for the authenticated API client
// ABOUTME: Uses httptest servers and a scripted session provider

package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/markalston/tcg-binder/internal/session"
)

type scriptedProvider struct {
	mu sync.Mutex
	fn func(*session.Identity)
}

func (p *scriptedProvider) OnAuthStateChanged(fn func(*session.Identity)) func() {
	p.mu.Lock()
	p.fn = fn
	p.mu.Unlock()
	return func() {}
}

func (p *scriptedProvider) report(u *session.Identity) {
	p.mu.Lock()
	fn := p.fn
	p.mu.Unlock()
	fn(u)
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// readySession returns a session that has already resolved with u
func readySession(u *session.Identity) *session.Session {
	s := session.New(quietLogger(&bytes.Buffer{}))
	p := &scriptedProvider{}
	s.Listen(p)
	p.report(u)
	return s
}

func TestGet_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.RequestURI()
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"card":{"card_number":"001","set_id":"S1"}}`))
	}))
	defer server.Close()

	c := New(server.URL, readySession(&session.Identity{UID: "u", AccessToken: "tok1"}))

	var out map[string]interface{}
	if err := c.Get(context.Background(), "/api/cards?card_number=001&set_id=S1", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer tok1" {
		t.Errorf("expected Authorization 'Bearer tok1', got %q", gotAuth)
	}
	if gotPath != "/api/cards?card_number=001&set_id=S1" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotRequestID == "" {
		t.Error("expected X-Request-ID header")
	}
	if _, ok := out["card"]; !ok {
		t.Errorf("expected card in response, got %v", out)
	}
}

func TestGet_NoTokenNoHeader(t *testing.T) {
	tests := []struct {
		name string
		user *session.Identity
	}{
		{"no user", nil},
		{"user without token", &session.Identity{UID: "u"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var hasAuth bool
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, hasAuth = r.Header["Authorization"]
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			c := New(server.URL, readySession(tc.user))
			if err := c.Get(context.Background(), "/api/sets", nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hasAuth {
				t.Error("expected no Authorization header")
			}
		})
	}
}

func TestDo_HeldUntilReadyUsesTokenAtResolution(t *testing.T) {
	auth := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	s := session.New(quietLogger(&bytes.Buffer{}))
	p := &scriptedProvider{}
	s.Listen(p)

	c := New(server.URL, s)

	errc := make(chan error, 1)
	go func() {
		errc <- c.Get(context.Background(), "/api/sets?licence=pokemon", nil)
	}()

	select {
	case <-auth:
		t.Fatal("request was sent before the session was ready")
	case <-time.After(50 * time.Millisecond):
	}

	p.report(&session.Identity{UID: "u", AccessToken: "at-resolution"})

	select {
	case got := <-auth:
		if got != "Bearer at-resolution" {
			t.Errorf("expected token at resolution, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("held request was never sent")
	}
	if err := <-errc; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDo_ContextCanceledWhileWaiting(t *testing.T) {
	s := session.New(quietLogger(&bytes.Buffer{}))
	c := New("http://127.0.0.1:1", s)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "/api/sets", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestDo_UnauthorizedLogsAndCallsHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"expired"}`))
	}))
	defer server.Close()

	var logs bytes.Buffer
	hookCalls := 0
	c := New(server.URL, readySession(&session.Identity{AccessToken: "old"}),
		WithLogger(quietLogger(&logs)),
		WithUnauthorizedHook(func(resp *http.Response) { hookCalls++ }),
	)

	err := c.Get(context.Background(), "/api/collection", nil)

	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
	if respErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", respErr.StatusCode)
	}
	if string(respErr.Body) != `{"detail":"expired"}` {
		t.Errorf("expected raw body, got %s", respErr.Body)
	}
	if !strings.Contains(logs.String(), "Unauthorized access detected") {
		t.Errorf("expected unauthorized warning in logs, got %s", logs.String())
	}
	if hookCalls != 1 {
		t.Errorf("expected hook called once, got %d", hookCalls)
	}
}

func TestDo_UnauthorizedWithoutHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(server.URL, readySession(nil), WithLogger(quietLogger(&bytes.Buffer{})))

	resp, err := c.Do(context.Background(), http.MethodGet, "/api/collection", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 passed through, got %d", resp.StatusCode)
	}
}

func TestDo_ServerErrorIsUnclassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	c := New(server.URL, readySession(nil))
	err := c.Delete(context.Background(), "/api/collection?card_ref=x", nil)

	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError, got %v", err)
	}
	if respErr.StatusCode != 500 || respErr.Method != http.MethodDelete {
		t.Errorf("unexpected error: %+v", respErr)
	}
}

func TestDo_TransportErrorReturnedUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(url, readySession(nil))
	_, err := c.Do(context.Background(), http.MethodGet, "/api/sets", nil, "")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		t.Error("transport failure must not be reported as a response error")
	}
}

func TestPatch_SendsJSON(t *testing.T) {
	var gotBody, gotType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New(server.URL, readySession(nil))
	var out map[string]bool
	if err := c.Patch(context.Background(), "/api/collection", map[string]int{"n": 1}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPatch || gotType != "application/json" || gotBody != `{"n":1}` {
		t.Errorf("unexpected request: %s %s %s", gotMethod, gotType, gotBody)
	}
	if !out["ok"] {
		t.Error("expected decoded response")
	}
}

func TestPostMultipart(t *testing.T) {
	var gotName string
	var gotContent []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("image")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotName = hdr.Filename
		gotContent, _ = io.ReadAll(f)
		w.Write([]byte(`{"cards":[]}`))
	}))
	defer server.Close()

	c := New(server.URL, readySession(nil))
	if err := c.PostMultipart(context.Background(), "/api/cards/read", "image", "binder.jpg", []byte("jpeg"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "binder.jpg" || string(gotContent) != "jpeg" {
		t.Errorf("unexpected upload: %s %q", gotName, gotContent)
	}
}

func TestWithRateLimit_PacesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL, readySession(nil), WithRateLimit(20))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := c.Get(context.Background(), "/api/sets", nil); err != nil {
			t.Fatal(err)
		}
	}
	// burst of 1 at 20/s: the 2nd and 3rd requests wait ~50ms each
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected pacing, requests finished in %v", elapsed)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	var out map[string]interface{}
	if err := DecodeJSON(strings.NewReader("not json"), &out); err == nil {
		t.Error("expected decode error")
	}
}
