// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, env overrides, legacy names, files, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points config discovery at an empty temp dir and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func noEnvFiles() Options {
	return Options{EnvFiles: []string{}}
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(noEnvFiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default API URL %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.HTTPTimeout)
	}
	if cfg.ToastDuration != 3*time.Second {
		t.Errorf("expected default toast duration 3s, got %v", cfg.ToastDuration)
	}
	if cfg.IdentityURL != DefaultIdentityURL {
		t.Errorf("expected default identity URL, got %s", cfg.IdentityURL)
	}
	wantToken := filepath.Join(dir, appName, "token.yaml")
	if cfg.TokenFile != wantToken {
		t.Errorf("expected token file %s, got %s", wantToken, cfg.TokenFile)
	}
	if cfg.KafkaConfigured() {
		t.Error("expected kafka to be unconfigured by default")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("TCGB_API_URL", "https://api.example.com/")
	t.Setenv("TCGB_HTTP_RATE_LIMIT", "2.5")
	t.Setenv("TCGB_LOG_LEVEL", "debug")
	t.Setenv("TCGB_KAFKA_BROKERS", "localhost:9092")

	cfg, err := Load(noEnvFiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.APIURL)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("expected rate limit 2.5, got %v", cfg.RateLimit)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if !cfg.KafkaConfigured() {
		t.Error("expected kafka to be configured")
	}
}

func TestLoad_LegacyFrontendEnv(t *testing.T) {
	isolate(t)
	t.Setenv("VITE_API_URL", "https://legacy.example.com")
	t.Setenv("VITE_FIREBASE_API_KEY", "legacy-key")

	cfg, err := Load(noEnvFiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != "https://legacy.example.com" {
		t.Errorf("expected legacy API URL, got %s", cfg.APIURL)
	}
	if cfg.FirebaseAPIKey != "legacy-key" {
		t.Errorf("expected legacy API key, got %s", cfg.FirebaseAPIKey)
	}
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	isolate(t)
	t.Setenv("VITE_API_URL", "https://legacy.example.com")
	t.Setenv("TCGB_API_URL", "https://new.example.com")

	cfg, err := Load(noEnvFiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://new.example.com" {
		t.Errorf("expected TCGB_API_URL to win, got %s", cfg.APIURL)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `api:
  url: https://file.example.com
toast:
  duration: 5s
inbox:
  dir: /tmp/inbox
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{ConfigFile: path, EnvFiles: []string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != "https://file.example.com" {
		t.Errorf("expected API URL from file, got %s", cfg.APIURL)
	}
	if cfg.ToastDuration != 5*time.Second {
		t.Errorf("expected toast duration 5s, got %v", cfg.ToastDuration)
	}
	if cfg.InboxDir != "/tmp/inbox" {
		t.Errorf("expected inbox dir from file, got %s", cfg.InboxDir)
	}
}

func TestLoad_DiscoveredConfigFile(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(filepath.Join(dir, appName), 0700); err != nil {
		t.Fatal(err)
	}
	content := "log:\n  format: json\n"
	if err := os.WriteFile(filepath.Join(dir, appName, "tcgb.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(noEnvFiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected log format from discovered file, got %s", cfg.LogFormat)
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(Options{ConfigFile: filepath.Join(dir, "missing.yaml"), EnvFiles: []string{}})
	if err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("VITE_FIREBASE_API_KEY=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("VITE_FIREBASE_API_KEY") })

	cfg, err := Load(Options{EnvFiles: []string{envFile, filepath.Join(dir, "absent.env")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FirebaseAPIKey != "from-dotenv" {
		t.Errorf("expected API key from env file, got %s", cfg.FirebaseAPIKey)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{"bad url", "TCGB_API_URL", "not a url", "APIURL"},
		{"bad log format", "TCGB_LOG_FORMAT", "xml", "LogFormat"},
		{"negative rate", "TCGB_HTTP_RATE_LIMIT", "-1", "RateLimit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load(noEnvFiles())
			if err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error to mention %s, got %v", tc.field, err)
			}
		})
	}
}
