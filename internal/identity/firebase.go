// ABOUTME: Firebase Auth REST calls for password sign-in and token refresh
// ABOUTME: Identity Toolkit and Secure Token endpoints, keyed by the web API key

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/markalston/tcg-binder/internal/session"
)

// AuthError is an error reported by the identity service
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("identity service error (%d): %s", e.StatusCode, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

// signInWithPassword calls accounts:signInWithPassword
func (p *Provider) signInWithPassword(ctx context.Context, email, password string) (*session.Identity, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign-in request: %w", err)
	}

	endpoint := p.cfg.IdentityURL + "/v1/accounts:signInWithPassword?key=" + url.QueryEscape(p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp signInResponse
	if err := p.do(req, &resp); err != nil {
		return nil, err
	}

	return p.identityFrom(resp.LocalID, resp.Email, resp.IDToken, resp.RefreshToken, resp.ExpiresIn), nil
}

// exchangeRefreshToken calls the Secure Token endpoint
func (p *Provider) exchangeRefreshToken(ctx context.Context, u *session.Identity) (*session.Identity, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {u.RefreshToken},
	}

	endpoint := p.cfg.SecureTokenURL + "/v1/token?key=" + url.QueryEscape(p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp refreshResponse
	if err := p.do(req, &resp); err != nil {
		return nil, err
	}

	refreshed := p.identityFrom(resp.UserID, u.Email, resp.IDToken, resp.RefreshToken, resp.ExpiresIn)
	if refreshed.Email == "" {
		refreshed.Email = u.Email
	}
	return refreshed, nil
}

func (p *Provider) do(req *http.Request, out interface{}) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.Error.Message == "" {
			return &AuthError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &AuthError{StatusCode: resp.StatusCode, Message: env.Error.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from identity service: %w", err)
	}
	return nil
}

// identityFrom builds an identity, preferring token claims over response fields
func (p *Provider) identityFrom(uid, email, idToken, refreshToken, expiresIn string) *session.Identity {
	u := &session.Identity{
		UID:          uid,
		Email:        email,
		AccessToken:  idToken,
		RefreshToken: refreshToken,
	}

	if secs, err := strconv.Atoi(expiresIn); err == nil {
		u.ExpiresAt = p.now().Add(time.Duration(secs) * time.Second)
	}

	if claims, err := ParseClaims(idToken); err == nil {
		if claims.UID != "" {
			u.UID = claims.UID
		}
		if claims.Email != "" {
			u.Email = claims.Email
		}
		if !claims.ExpiresAt.IsZero() {
			u.ExpiresAt = claims.ExpiresAt
		}
	} else {
		p.logger.Debug("ID token claims unavailable", "error", err)
	}

	return u
}
