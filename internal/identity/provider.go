// ABOUTME: Identity provider backed by Firebase-compatible REST endpoints
// ABOUTME: Restores the persisted identity on subscribe and reports sign-in changes

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/tcg-binder/internal/session"
)

var (
	// ErrNotConfigured is returned when no web API key is set
	ErrNotConfigured = errors.New("identity provider API key not configured")
	// ErrNotSignedIn is returned by Refresh when there is no stored identity
	ErrNotSignedIn = errors.New("not signed in")
)

// Config holds the identity provider settings
type Config struct {
	APIKey         string
	IdentityURL    string
	SecureTokenURL string
	TokenFile      string
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

// Provider implements session.Provider
type Provider struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	restoreOnce sync.Once
	sf          singleflight.Group

	// reportMu orders listener calls so a restored identity is never
	// reported after a newer sign-in or sign-out
	reportMu sync.Mutex

	mu        sync.Mutex
	current   *session.Identity
	listeners map[int]func(*session.Identity)
	nextID    int
}

// NewProvider creates a provider. Nothing is read from disk until the first
// subscription.
func NewProvider(cfg Config) *Provider {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
		listeners:  make(map[int]func(*session.Identity)),
	}
}

// OnAuthStateChanged registers fn and reports the restored identity to it
// asynchronously. Later sign-ins and sign-outs are reported to every listener.
// Listeners must not sign in or out synchronously.
func (p *Provider) OnAuthStateChanged(fn func(*session.Identity)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	go func() {
		p.restore()
		p.reportMu.Lock()
		defer p.reportMu.Unlock()
		p.mu.Lock()
		_, subscribed := p.listeners[id]
		u := p.current
		p.mu.Unlock()
		if subscribed {
			fn(u)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// restore loads the token file once, refreshing an expired ID token
func (p *Provider) restore() {
	p.restoreOnce.Do(func() {
		u, err := loadIdentity(p.cfg.TokenFile)
		if err != nil {
			p.logger.Warn("Ignoring unreadable token file", "path", p.cfg.TokenFile, "error", err)
			return
		}
		if u == nil {
			return
		}

		if u.Expired(p.now()) {
			refreshed, err := p.refresh(context.Background(), u)
			if err != nil {
				p.logger.Warn("Stored session could not be refreshed", "user", u, "error", err)
				return
			}
			u = refreshed
		}

		p.mu.Lock()
		p.current = u
		p.mu.Unlock()
		p.logger.Debug("Restored session", "user", u)
	})
}

// SignIn authenticates with email and password and persists the result
func (p *Provider) SignIn(ctx context.Context, email, password string) (*session.Identity, error) {
	if p.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	p.restore()

	u, err := p.signInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign-in failed: %w", err)
	}

	if err := saveIdentity(p.cfg.TokenFile, u); err != nil {
		return nil, err
	}

	p.logger.Info("Signed in", "user", u)
	p.set(u)
	return u, nil
}

// Refresh exchanges the current refresh token for a new ID token
func (p *Provider) Refresh(ctx context.Context) (*session.Identity, error) {
	p.restore()

	p.mu.Lock()
	u := p.current
	p.mu.Unlock()
	if u == nil {
		return nil, ErrNotSignedIn
	}

	refreshed, err := p.refresh(ctx, u)
	if err != nil {
		return nil, err
	}
	p.set(refreshed)
	return refreshed, nil
}

func (p *Provider) refresh(ctx context.Context, u *session.Identity) (*session.Identity, error) {
	if p.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if u.RefreshToken == "" {
		return nil, errors.New("no refresh token")
	}

	// Concurrent callers share one exchange per refresh token
	v, err, _ := p.sf.Do(u.RefreshToken, func() (interface{}, error) {
		refreshed, err := p.exchangeRefreshToken(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("token refresh failed: %w", err)
		}
		if err := saveIdentity(p.cfg.TokenFile, refreshed); err != nil {
			return nil, err
		}
		p.logger.Debug("Refreshed ID token", "user", refreshed)
		return refreshed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*session.Identity), nil
}

// SignOut forgets the persisted identity and reports no user
func (p *Provider) SignOut() error {
	p.restore()
	if err := removeIdentity(p.cfg.TokenFile); err != nil {
		return err
	}
	p.logger.Info("Signed out")
	p.set(nil)
	return nil
}

// Current returns the restored or signed-in identity
func (p *Provider) Current() *session.Identity {
	p.restore()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Provider) set(u *session.Identity) {
	p.reportMu.Lock()
	defer p.reportMu.Unlock()

	p.mu.Lock()
	p.current = u
	fns := make([]func(*session.Identity), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}
