package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/inkwell/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

// Login prompts the user for an email and password and exchanges them for a
// session via the auth endpoint. On success the session is persisted and
// installed, which advances the identity epoch: the next list fetch is
// unconditional, so a previous account's documents are never shown.
//
// The password byte slice is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		printlnFn("Sign-in failed:", friendlyError(err))
		return err
	}
	if err := a.session.SetSession(ctx, s); err != nil {
		printlnFn("Sign-in failed:", friendlyError(err))
		return err
	}

	a.lastList = nil
	printlnFn(fmt.Sprintf("Signed in as %s", s.Email))
	return nil
}

// Logout invalidates the refresh token server-side (best effort), removes
// the persisted session, and drops every cached document.
func (a *App) Logout(ctx context.Context) error {
	s, ok := a.session.Current()
	if !ok {
		printlnFn("Not signed in.")
		return nil
	}

	if err := a.auth.SignOut(ctx, s.RefreshToken); err != nil {
		a.logger.Warn(ctx, "server-side sign-out failed", "error", err)
	}
	if err := a.session.Clear(ctx); err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	a.docs.Reset()
	a.lastList = nil
	printlnFn("Signed out.")
	return nil
}

// WhoAmI prints the signed-in identity and session expiry.
func (a *App) WhoAmI(ctx context.Context) error {
	s, ok := a.session.Current()
	if !ok {
		printlnFn("Not signed in.")
		return nil
	}
	printlnFn(fmt.Sprintf("%s (%s)", s.Email, s.UserID))
	if !s.ExpiresAt.IsZero() {
		printlnFn("Session expires:", s.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
