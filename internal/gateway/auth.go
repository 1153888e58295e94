package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/inkwell/internal/session"
)

// signInResponse is the auth endpoint's token payload.
type signInResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignInWithPassword exchanges credentials for a session via the platform's
// password grant. The caller owns wiping the password slice.
func (c *REST) SignInWithPassword(ctx context.Context, email string, password []byte) (session.Session, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: string(password)}

	var resp signInResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, &resp); err != nil {
		return session.Session{}, fmt.Errorf("sign in: %w", err)
	}

	s := session.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
	}
	if resp.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	// Some deployments omit the user block; the token itself always
	// carries the identity.
	if s.UserID == "" {
		claims, err := session.ParseAccessToken(s.AccessToken)
		if err != nil {
			return session.Session{}, fmt.Errorf("sign in: %w", err)
		}
		s.UserID = claims.UserID
		if s.Email == "" {
			s.Email = claims.Email
		}
		if s.ExpiresAt.IsZero() {
			s.ExpiresAt = claims.ExpiresAt
		}
	}

	return s, nil
}

// SignOut invalidates the refresh token server-side. A failure only means
// the token lives until expiry; local sign-out proceeds regardless.
func (c *REST) SignOut(ctx context.Context, refreshToken string) error {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	if err := c.do(ctx, http.MethodPost, "/auth/v1/logout", body, nil); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
