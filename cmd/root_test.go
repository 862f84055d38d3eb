// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies flag, environment, and config precedence for the API URL

package cmd

import (
	"testing"

	"github.com/markalston/tcg-binder/internal/config"
)

func TestGetAPIURL_Default(t *testing.T) {
	isolate(t)

	if url := GetAPIURL(nil); url != config.DefaultAPIURL {
		t.Errorf("expected default URL %s, got %s", config.DefaultAPIURL, url)
	}
}

func TestGetAPIURL_FromConfig(t *testing.T) {
	isolate(t)

	url := GetAPIURL(&config.Config{APIURL: "http://from-config.example.com"})
	if url != "http://from-config.example.com" {
		t.Errorf("expected config URL, got %s", url)
	}
}

func TestGetAPIURL_EnvOverridesConfig(t *testing.T) {
	isolate(t)
	t.Setenv("TCGB_API_URL", "http://backend.example.com")

	url := GetAPIURL(&config.Config{APIURL: "http://from-config.example.com"})
	if url != "http://backend.example.com" {
		t.Errorf("expected http://backend.example.com, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TCGB_API_URL", "http://backend.example.com")
	apiURL = "http://flag-override.example.com"

	if url := GetAPIURL(nil); url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	isolate(t)
	jsonOutput = true

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"login", "logout", "whoami", "card", "scan", "sets", "collection", "watch", "raw", "refresh"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("expected %s command to be registered", name)
		}
	}
}
