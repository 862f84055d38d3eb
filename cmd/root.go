// ABOUTME: Root command for the tcg-binder CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/tcg-binder/internal/config"
)

var (
	apiURL     string
	jsonOutput bool
	configFile string
	debug      bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "tcg-binder",
	Short: "CLI for the tcg-binder card collection manager",
	Long: `tcg-binder scans binder photos into cards, browses sets, and manages your
trading card collection.

Environment Variables:
  TCGB_API_URL           Backend API URL (default: http://localhost:8000)
  TCGB_FIREBASE_API_KEY  Web API key of the identity provider
  TCGB_LOG_LEVEL         debug, info, warn, error (default: info)
  TCGB_KAFKA_BROKERS     Publish collection changes to Kafka when set

VITE_API_URL, VITE_API_BASE_URL and VITE_FIREBASE_* from the web front end's
.env file are also accepted.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides TCGB_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/tcg-binder/tcgb.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")
}

// GetAPIURL returns the API URL from flag, env, config, or default (in priority order)
func GetAPIURL(cfg *config.Config) string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("TCGB_API_URL"); envURL != "" {
		return envURL
	}
	if cfg != nil && cfg.APIURL != "" {
		return cfg.APIURL
	}
	return config.DefaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
