// ABOUTME: Configuration loader for the tcg-binder client
// ABOUTME: Merges .env files, an optional YAML file, and TCGB_ environment variables

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName   = "tcg-binder"
	envPrefix = "TCGB"

	DefaultAPIURL         = "http://localhost:8000"
	DefaultIdentityURL    = "https://identitytoolkit.googleapis.com"
	DefaultSecureTokenURL = "https://securetoken.googleapis.com"
)

type Config struct {
	// Backend
	APIURL      string
	HTTPTimeout time.Duration
	RateLimit   float64 // requests per second, 0 disables pacing

	// Identity provider (Firebase-compatible REST endpoints)
	FirebaseAPIKey string
	IdentityURL    string
	SecureTokenURL string
	TokenFile      string

	// Logging
	LogLevel  string
	LogFormat string

	// Collection change events (optional)
	KafkaBrokers string
	KafkaTopic   string

	// Watch mode
	InboxDir      string
	ToastDuration time.Duration
}

// KafkaConfigured returns true if a broker list is set
func (c *Config) KafkaConfigured() bool {
	return c.KafkaBrokers != ""
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit YAML file. Missing explicit files are an error.
	ConfigFile string
	// EnvFiles are dotenv files loaded before reading the environment.
	// Missing files are skipped. Defaults to ".env".
	EnvFiles []string
}

// Load reads configuration with precedence env > config file > defaults.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("tcgb")
		v.SetConfigType("yaml")
		if dir := DefaultConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		APIURL:      strings.TrimRight(v.GetString("api.url"), "/"),
		HTTPTimeout: v.GetDuration("http.timeout"),
		RateLimit:   v.GetFloat64("http.rate_limit"),

		FirebaseAPIKey: v.GetString("firebase.api_key"),
		IdentityURL:    strings.TrimRight(v.GetString("firebase.identity_url"), "/"),
		SecureTokenURL: strings.TrimRight(v.GetString("firebase.securetoken_url"), "/"),
		TokenFile:      v.GetString("auth.token_file"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: strings.ToLower(v.GetString("log.format")),

		KafkaBrokers: v.GetString("kafka.brokers"),
		KafkaTopic:   v.GetString("kafka.topic"),

		InboxDir:      v.GetString("inbox.dir"),
		ToastDuration: v.GetDuration("toast.duration"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks field formats and ranges.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.HTTPTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.IdentityURL, validation.Required, is.URL),
		validation.Field(&c.SecureTokenURL, validation.Required, is.URL),
		validation.Field(&c.TokenFile, validation.Required),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
		validation.Field(&c.KafkaTopic, validation.Required),
		validation.Field(&c.ToastDuration, validation.Min(time.Duration(0))),
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.rate_limit", 0)

	v.SetDefault("firebase.api_key", "")
	v.SetDefault("firebase.identity_url", DefaultIdentityURL)
	v.SetDefault("firebase.securetoken_url", DefaultSecureTokenURL)
	v.SetDefault("auth.token_file", filepath.Join(DefaultConfigDir(), "token.yaml"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "tcgb.collection")

	v.SetDefault("inbox.dir", "")
	v.SetDefault("toast.duration", 3*time.Second)
}

// bindLegacyEnv accepts the variable names used by the web front ends so an
// existing .env can be reused as-is.
func bindLegacyEnv(v *viper.Viper) {
	legacy := map[string][]string{
		"api.url":          {"TCGB_API_URL", "VITE_API_URL", "VITE_API_BASE_URL"},
		"firebase.api_key": {"TCGB_FIREBASE_API_KEY", "VITE_FIREBASE_API_KEY"},
	}
	for key, names := range legacy {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

func loadEnvFiles(files []string) error {
	if files == nil {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
