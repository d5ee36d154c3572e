// Package authn produces valid bearer credentials for the provider
// clients. Three lifecycles are covered: a static API key (Notion), a
// confidential client with a cached refresh token (Microsoft Graph),
// and browser-interactive OAuth with a cached token (Google Drive).
// The OAuth paths share one Session state machine:
//
//	UNAUTHENTICATED -> AUTHENTICATED(token, expiry) -> EXPIRED -> ...
//
// On demand, a Session returns the cached token if still valid,
// silently refreshes it if expired with a refresh token, and falls
// through to interactive browser consent (bounded by a timeout) when
// refresh is impossible. It never returns a known-expired token.
package authn

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotLoggedIn indicates no usable token exists and the session
// cannot start an interactive flow (headless, no browser opener).
var ErrNotLoggedIn = errors.New("authn: not logged in")

// ErrConsentTimeout indicates the user did not complete interactive
// consent within the session's timeout.
var ErrConsentTimeout = errors.New("authn: interactive consent timed out")

// Error is an authentication failure: token acquisition, refresh, or
// interactive consent. Recoverable by re-running the interactive flow;
// never auto-retried here.
type Error struct {
	Provider string
	Op       string // "cache", "refresh", "consent"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("authn: %s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// TokenSource yields a bearer token valid for at least the duration of
// one subsequent request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Static is the no-lifecycle TokenSource for providers authenticated
// by a long-lived API key. No state machine, no cache, no expiry.
type Static struct {
	key string
}

// NewStatic wraps a static API key.
func NewStatic(key string) *Static {
	return &Static{key: key}
}

func (s *Static) Token(_ context.Context) (string, error) {
	return s.key, nil
}
