// Package session holds the signed-in identity for the client: the Session
// value returned by the auth endpoint, pluggable persistence backends, and a
// Manager that the rest of the client reads the current identity from.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/inkwell/internal/common"
)

// Session is the identity state produced by a successful sign-in.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past its expiry at the given
// instant. A zero ExpiresAt never expires (tests, long-lived service keys).
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Claims is the identity subset of the platform access token.
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ParseAccessToken extracts identity claims from a platform JWT. The token's
// signature is not verified here: the service validates every request
// server-side, and the client has no verification key. The claims are used
// only for display and for keying the local cache.
func ParseAccessToken(raw string) (Claims, error) {
	var ac accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &ac); err != nil {
		return Claims{}, fmt.Errorf("parse access token: %w", err)
	}

	if ac.Subject == "" {
		return Claims{}, fmt.Errorf("access token has no subject: %w", common.ErrValidation)
	}

	c := Claims{UserID: ac.Subject, Email: ac.Email}
	if ac.ExpiresAt != nil {
		c.ExpiresAt = ac.ExpiresAt.Time
	}
	return c, nil
}
