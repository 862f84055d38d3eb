// ABOUTME: Wires configuration, session, client, and stores for commands
// ABOUTME: Every command builds one app and closes it on exit

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/markalston/tcg-binder/internal/client"
	"github.com/markalston/tcg-binder/internal/config"
	"github.com/markalston/tcg-binder/internal/events"
	"github.com/markalston/tcg-binder/internal/identity"
	"github.com/markalston/tcg-binder/internal/logger"
	"github.com/markalston/tcg-binder/internal/session"
	"github.com/markalston/tcg-binder/internal/stores"
)

// logOutput is where command logs go; stdout stays parseable
var logOutput io.Writer = os.Stderr

type app struct {
	cfg    *config.Config
	logger *slog.Logger

	provider   *identity.Provider
	session    *session.Session
	api        *client.Client
	cards      *stores.Cards
	uploads    *stores.Uploads
	collection *stores.Collection
	series     *stores.SeriesStore
	toasts     *stores.Toasts

	closers []func()
}

// newApp loads configuration and wires every component
func newApp() (*app, error) {
	cfg, err := config.Load(config.Options{ConfigFile: configFile})
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log := logger.Init(logOutput, level, cfg.LogFormat)

	a := &app{
		cfg:    cfg,
		logger: log,
	}

	a.provider = identity.NewProvider(identity.Config{
		APIKey:         cfg.FirebaseAPIKey,
		IdentityURL:    cfg.IdentityURL,
		SecureTokenURL: cfg.SecureTokenURL,
		TokenFile:      cfg.TokenFile,
		Logger:         log,
	})
	a.session = session.New(log)
	a.closers = append(a.closers, a.session.Listen(a.provider))

	a.api = client.New(GetAPIURL(cfg), a.session,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithRateLimit(cfg.RateLimit),
		client.WithLogger(log),
	)

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaConfigured() {
		kp, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  log,
		})
		if err != nil {
			log.Warn("Collection events disabled", "error", err)
		} else {
			publisher = kp
			a.closers = append(a.closers, func() { kp.Close(5000) })
		}
	}

	a.cards = stores.NewCards(a.api)
	a.uploads = stores.NewUploads(a.api, a.cards, log)
	a.collection = stores.NewCollection(a.api, publisher, a.uid, log)
	a.series = stores.NewSeries(a.api)
	a.toasts = stores.NewToasts(cfg.ToastDuration)
	a.closers = append(a.closers, a.toasts.Close)

	return a, nil
}

func (a *app) uid() string {
	if u := a.session.Current(); u != nil {
		return u.UID
	}
	return ""
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// describeError converts request errors to user-friendly messages
func describeError(ctx context.Context, url string, err error) string {
	if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
		return "request canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return "request timed out"
	}
	var respErr *client.ResponseError
	if errors.As(err, &respErr) {
		msg := fmt.Sprintf("backend returned status %d", respErr.StatusCode)
		if detail := errorDetail(respErr.Body); detail != "" {
			msg += ": " + detail
		}
		return msg
	}
	return fmt.Sprintf("cannot connect to backend at %s: %v", url, err)
}

// errorDetail pulls the FastAPI-style detail field out of an error body
func errorDetail(body []byte) string {
	var parsed struct {
		Detail interface{} `json:"detail"`
		Error  string      `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body))
	}
	if s, ok := parsed.Detail.(string); ok && s != "" {
		return s
	}
	return parsed.Error
}

// exitCodeFor maps an error to the CLI exit code: 1 when the backend
// answered with an error status, 2 for everything else
func exitCodeFor(err error) int {
	var respErr *client.ResponseError
	if errors.As(err, &respErr) {
		return 1
	}
	return 2
}

// fail prints the error and returns its exit code
func (a *app) fail(ctx context.Context, w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %s\n", describeError(ctx, a.api.BaseURL(), err))
	return exitCodeFor(err)
}

func writeJSON(w io.Writer, v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
