package services

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultExpiryBuffer is how close to expiry a token may get before it is refreshed.
const DefaultExpiryBuffer = 60 * time.Second

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// TokenGuard hands out usable access tokens, refreshing ones that are about to expire.
type TokenGuard struct {
	refresher TokenRefresher
	buffer    time.Duration
	now       func() time.Time
	logger    *log.Logger
}

// TokenGuardOpts configures a [TokenGuard]. Zero values use the defaults.
type TokenGuardOpts struct {
	Buffer time.Duration
	Now    func() time.Time
	Logger *log.Logger
}

// NewTokenGuard creates a guard around refresher.
func NewTokenGuard(refresher TokenRefresher, opts TokenGuardOpts) *TokenGuard {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultExpiryBuffer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &TokenGuard{refresher: refresher, buffer: opts.Buffer, now: opts.Now, logger: opts.Logger}
}

// Ensure returns a token that stays valid for at least the buffer.
//
// refreshed is true when a new token was obtained; the caller must store it in place of the old one.
// Every failure wraps [shared.ErrNotAuthenticated] so callers send the user back through login.
func (g *TokenGuard) Ensure(ctx context.Context, token *oauth2.Token) (*oauth2.Token, bool, error) {
	if token == nil || token.AccessToken == "" {
		return nil, false, shared.ErrNotAuthenticated
	}

	if token.Expiry.IsZero() || token.Expiry.Sub(g.now()) >= g.buffer {
		return token, false, nil
	}

	if token.RefreshToken == "" {
		return nil, false, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrNoRefreshToken)
	}

	fresh, err := g.refresher.Refresh(ctx, token.RefreshToken)
	if err != nil {
		g.logger.Warn("token refresh failed", "error", err)
		return nil, false, fmt.Errorf("%w: %w: %w", shared.ErrNotAuthenticated, shared.ErrRefreshFailed, err)
	}
	if fresh == nil || fresh.AccessToken == "" {
		return nil, false, fmt.Errorf("%w: %w: empty token", shared.ErrNotAuthenticated, shared.ErrRefreshFailed)
	}

	if fresh.RefreshToken == "" {
		fresh.RefreshToken = token.RefreshToken
	}

	g.logger.Debug("token refreshed", "expiry", fresh.Expiry)
	return fresh, true, nil
}

// OAuthRefresher implements [TokenRefresher] against an OAuth2 token endpoint.
type OAuthRefresher struct {
	config *oauth2.Config
}

// NewOAuthRefresher creates a refresher for config's token endpoint.
func NewOAuthRefresher(config *oauth2.Config) *OAuthRefresher {
	return &OAuthRefresher{config: config}
}

// Refresh forces a refresh-token grant.
func (r *OAuthRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	// a token without an access token is never valid, so the source always hits the endpoint
	src := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, err
	}
	return token, nil
}
