package authn

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/clipline/mediasource-go/internal/tokencache"
)

// expirySkew is the margin before the recorded expiry at which a token
// stops being handed out. Covers the latency of the one request the
// token must remain valid for.
const expirySkew = 30 * time.Second

// ConsentTimeout is the default bound on the interactive consent flow.
const ConsentTimeout = 5 * time.Minute

// Session binds one provider's OAuth configuration to one token cache
// slot. Create one per provider per process; it needs no teardown
// beyond the cache writes it already performs. Sessions are for use
// from one goroutine at a time — the model is single-caller,
// synchronous (callers wanting concurrency wrap their own).
type Session struct {
	provider       string
	cfg            *oauth2.Config
	tokenPath      string
	opener         func(url string) error // nil = headless, no interactive flow
	consentTimeout time.Duration
	logger         *slog.Logger

	current   *oauth2.Token
	lastSaved string // access token last written to the cache
	loaded    bool
}

// Option configures a Session.
type Option func(*Session)

// WithBrowser enables the interactive consent flow. open is called with
// the authorization URL; the CLI uses it to launch the default browser.
func WithBrowser(open func(url string) error) Option {
	return func(s *Session) { s.opener = open }
}

// WithConsentTimeout overrides the default interactive consent bound.
func WithConsentTimeout(d time.Duration) Option {
	return func(s *Session) { s.consentTimeout = d }
}

// NewSession creates an OAuth session for a provider. tokenPath is the
// cache location for this provider's token artifact.
func NewSession(provider string, cfg *oauth2.Config, tokenPath string, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		provider:       provider,
		cfg:            cfg,
		tokenPath:      tokenPath,
		consentTimeout: ConsentTimeout,
		logger:         logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Token returns a bearer token valid for at least one request, walking
// the lifecycle: cached-and-valid is returned as-is with no network
// I/O; expired-with-refresh-token triggers exactly one silent refresh
// and one cache write; anything else falls through to interactive
// consent, or fails with *Error when the session is headless.
func (s *Session) Token(ctx context.Context) (string, error) {
	if !s.loaded {
		tok, err := tokencache.Read(s.tokenPath)
		if err != nil {
			return "", &Error{Provider: s.provider, Op: "cache", Err: err}
		}

		s.current = tok
		s.loaded = true

		if tok != nil {
			s.lastSaved = tok.AccessToken
			s.logger.Debug("loaded cached token",
				slog.String("provider", s.provider),
				slog.Time("expiry", tok.Expiry),
			)
		}
	}

	if usable(s.current) {
		return s.current.AccessToken, nil
	}

	if s.current != nil && s.current.RefreshToken != "" {
		tok, err := s.refresh(ctx)
		if err == nil {
			return tok.AccessToken, nil
		}

		// Revoked or expired refresh token: fall through to interactive.
		s.logger.Warn("silent refresh failed",
			slog.String("provider", s.provider),
			slog.String("error", err.Error()),
		)
	}

	if s.opener == nil {
		return "", &Error{Provider: s.provider, Op: "refresh", Err: ErrNotLoggedIn}
	}

	tok, err := s.Login(ctx)
	if err != nil {
		return "", err
	}

	return tok.AccessToken, nil
}

// refresh performs one silent refresh against the provider's token
// endpoint and persists the result. The cache is written at most once
// per refresh.
func (s *Session) refresh(ctx context.Context) (*oauth2.Token, error) {
	// Seeding a fresh TokenSource with the expired token makes the
	// oauth2 library issue a single refresh request.
	tok, err := s.cfg.TokenSource(ctx, s.current).Token()
	if err != nil {
		return nil, &Error{Provider: s.provider, Op: "refresh", Err: err}
	}

	s.store(tok)
	s.logger.Info("token refreshed",
		slog.String("provider", s.provider),
		slog.Time("new_expiry", tok.Expiry),
	)

	return tok, nil
}

// Login runs the interactive browser consent flow regardless of cache
// state, bounded by the session's consent timeout. The CLI login
// command calls this directly; Token falls back to it.
func (s *Session) Login(ctx context.Context) (*oauth2.Token, error) {
	if s.opener == nil {
		return nil, &Error{Provider: s.provider, Op: "consent", Err: ErrNotLoggedIn}
	}

	flowCtx, cancel := context.WithTimeout(ctx, s.consentTimeout)
	defer cancel()

	s.logger.Info("starting interactive consent",
		slog.String("provider", s.provider),
	)

	tok, err := authCodeFlow(flowCtx, s.cfg, s.opener, s.logger)
	if err != nil {
		if flowCtx.Err() != nil && ctx.Err() == nil {
			err = ErrConsentTimeout
		}

		return nil, &Error{Provider: s.provider, Op: "consent", Err: err}
	}

	s.store(tok)
	s.loaded = true
	s.logger.Info("interactive consent complete",
		slog.String("provider", s.provider),
		slog.Time("expiry", tok.Expiry),
	)

	return tok, nil
}

// store records the new token and persists it if the access token
// actually changed. A persist failure is logged, not fatal — the
// session keeps working from memory and re-persists on the next change.
func (s *Session) store(tok *oauth2.Token) {
	s.current = tok

	if tok.AccessToken == s.lastSaved {
		return
	}

	if err := tokencache.Write(s.tokenPath, tok); err != nil {
		s.logger.Warn("failed to persist token",
			slog.String("provider", s.provider),
			slog.String("error", err.Error()),
		)

		return
	}

	s.lastSaved = tok.AccessToken
}

// usable reports whether the token can still back at least one request.
func usable(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return false
	}

	if tok.Expiry.IsZero() {
		return true
	}

	return time.Until(tok.Expiry) > expirySkew
}
