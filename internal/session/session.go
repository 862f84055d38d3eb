// ABOUTME: Session state populated from identity provider notifications
// ABOUTME: Holds the current identity, a loading flag, and the readiness latch

package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/markalston/tcg-binder/internal/store"
)

// Identity is the authenticated user as reported by the identity provider
type Identity struct {
	UID          string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// LogValue keeps tokens out of logs
func (i *Identity) LogValue() slog.Value {
	if i == nil {
		return slog.StringValue("none")
	}
	return slog.GroupValue(
		slog.String("uid", i.UID),
		slog.String("email", i.Email),
		slog.Bool("has_token", i.AccessToken != ""),
	)
}

// Expired reports whether the access token is past its expiry.
// Identities without a known expiry never expire.
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Provider reports authentication state changes. A nil identity means no user.
// Implementations must report at least once after subscription for the
// session to become ready.
type Provider interface {
	OnAuthStateChanged(fn func(*Identity)) (unsubscribe func())
}

// Session tracks who is signed in. The zero value is not usable; use New.
type Session struct {
	User    *store.Writable[*Identity]
	Loading *store.Writable[bool]

	ready  *Latch[*Identity]
	logger *slog.Logger
}

// New creates a session with no user that is not yet ready
func New(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		User:    store.NewWritable[*Identity](nil),
		Loading: store.NewWritable(true),
		ready:   NewLatch[*Identity](),
		logger:  logger,
	}
}

// Listen subscribes the session to the provider
func (s *Session) Listen(p Provider) (unsubscribe func()) {
	return p.OnAuthStateChanged(s.handleAuthState)
}

func (s *Session) handleAuthState(u *Identity) {
	s.User.Set(u)
	s.logger.Debug("Auth state changed", "user", u)
	if s.ready.Resolve(u) {
		s.logger.Debug("Session ready")
	}
	s.Loading.Set(false)
}

// Current returns the identity, or nil when nobody is signed in
func (s *Session) Current() *Identity {
	return s.User.Get()
}

// Ready returns a channel closed once the provider has reported
func (s *Session) Ready() <-chan struct{} {
	return s.ready.Done()
}

// WaitReady blocks until the provider's first report. There is no built-in
// timeout: if the provider never reports, this returns only when ctx ends.
func (s *Session) WaitReady(ctx context.Context) error {
	_, err := s.ready.Wait(ctx)
	return err
}

// AwaitIdentity returns the identity to use for an outgoing request.
// Callers that arrive before readiness get the identity reported at
// resolution; later callers get the current one.
func (s *Session) AwaitIdentity(ctx context.Context) (*Identity, error) {
	if s.ready.Resolved() {
		return s.Current(), nil
	}
	return s.ready.Wait(ctx)
}
