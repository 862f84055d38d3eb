// ABOUTME: Reads identity claims from Firebase ID tokens
// ABOUTME: Signatures are not checked here; the backend verifies every request

package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity fields carried by an ID token
type Claims struct {
	UID       string
	Email     string
	ExpiresAt time.Time
}

// ParseClaims decodes an ID token without verifying it
func ParseClaims(idToken string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, mc); err != nil {
		return nil, fmt.Errorf("failed to parse ID token: %w", err)
	}

	c := &Claims{}
	// Firebase tokens carry user_id; sub holds the same value
	if uid, ok := mc["user_id"].(string); ok && uid != "" {
		c.UID = uid
	} else if sub, err := mc.GetSubject(); err == nil {
		c.UID = sub
	}
	if email, ok := mc["email"].(string); ok {
		c.Email = email
	}
	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}

	return c, nil
}
