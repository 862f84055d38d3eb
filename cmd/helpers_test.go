// ABOUTME: Shared setup for command tests
// ABOUTME: Isolates config discovery and points commands at a fake backend

package cmd

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// isolate gives the test its own config dir and resets global flags
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{"TCGB_API_URL", "TCGB_FIREBASE_API_KEY", "TCGB_KAFKA_BROKERS", "TCGB_PASSWORD", "VITE_API_URL", "VITE_API_BASE_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	prevLog := logOutput
	logOutput = io.Discard
	t.Cleanup(func() {
		logOutput = prevLog
		apiURL = ""
		jsonOutput = false
		configFile = ""
		debug = false
	})
	return dir
}

// backend starts a fake API server and points commands at it
func backend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	apiURL = server.URL
	return server
}

// signIn stores a session for uid-1 with access token tok
func signIn(t *testing.T, configDir, tok string) {
	t.Helper()
	content := "uid: uid-1\nemail: ash@example.com\nid_token: " + tok + "\nrefresh_token: rt\nexpires_at: 2099-01-01T00:00:00Z\n"
	dir := filepath.Join(configDir, "tcg-binder")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "token.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}
