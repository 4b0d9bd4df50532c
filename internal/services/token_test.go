package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeRefresher struct {
	token *oauth2.Token
	err   error
	calls []string
}

func (f *fakeRefresher) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	f.calls = append(f.calls, refreshToken)
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func TestTokenGuard(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ctx := context.Background()

	t.Run("refreshes a token expiring in 30 seconds", func(t *testing.T) {
		refresher := &fakeRefresher{token: &oauth2.Token{AccessToken: "fresh", RefreshToken: "r2", Expiry: now.Add(time.Hour)}}
		guard := NewTokenGuard(refresher, TokenGuardOpts{Now: clock})

		got, refreshed, err := guard.Ensure(ctx, &oauth2.Token{AccessToken: "old", RefreshToken: "r1", Expiry: now.Add(30 * time.Second)})
		require.NoError(t, err)
		assert.True(t, refreshed)
		assert.Equal(t, "fresh", got.AccessToken)
		assert.Equal(t, "r2", got.RefreshToken)
		assert.Equal(t, []string{"r1"}, refresher.calls)
	})

	t.Run("keeps a token expiring in 120 seconds", func(t *testing.T) {
		refresher := &fakeRefresher{}
		guard := NewTokenGuard(refresher, TokenGuardOpts{Now: clock})
		tok := &oauth2.Token{AccessToken: "old", RefreshToken: "r1", Expiry: now.Add(120 * time.Second)}

		got, refreshed, err := guard.Ensure(ctx, tok)
		require.NoError(t, err)
		assert.False(t, refreshed)
		assert.Same(t, tok, got)
		assert.Empty(t, refresher.calls)
	})

	t.Run("keeps a token expiring in exactly the buffer", func(t *testing.T) {
		refresher := &fakeRefresher{}
		guard := NewTokenGuard(refresher, TokenGuardOpts{Now: clock})
		tok := &oauth2.Token{AccessToken: "old", RefreshToken: "r1", Expiry: now.Add(DefaultExpiryBuffer)}

		got, refreshed, err := guard.Ensure(ctx, tok)
		require.NoError(t, err)
		assert.False(t, refreshed)
		assert.Same(t, tok, got)
		assert.Empty(t, refresher.calls)
	})

	t.Run("refreshes a token one second inside the buffer", func(t *testing.T) {
		refresher := &fakeRefresher{token: &oauth2.Token{AccessToken: "fresh", Expiry: now.Add(time.Hour)}}
		guard := NewTokenGuard(refresher, TokenGuardOpts{Now: clock})

		_, refreshed, err := guard.Ensure(ctx, &oauth2.Token{AccessToken: "old", RefreshToken: "r1", Expiry: now.Add(DefaultExpiryBuffer - time.Second)})
		require.NoError(t, err)
		assert.True(t, refreshed)
	})

	t.Run("refreshes an expired token", func(t *testing.T) {
		refresher := &fakeRefresher{token: &oauth2.Token{AccessToken: "fresh", Expiry: now.Add(time.Hour)}}
		guard := NewTokenGuard(refresher, TokenGuardOpts{Now: clock})

		got, refreshed, err := guard.Ensure(ctx, &oauth2.Token{AccessToken: "old", RefreshToken: "r1", Expiry: now.Add(-time.Minute)})
		require.NoError(t, err)
		assert.True(t, refreshed)
		assert.Equal(t, "r1", got.RefreshToken, "previous refresh token is kept")
	})

	t.Run("token without expiry is used as is", func(t *testing.T) {
		guard := NewTokenGuard(&fakeRefresher{}, TokenGuardOpts{Now: clock})
		_, refreshed, err := guard.Ensure(ctx, &oauth2.Token{AccessToken: "a"})
		require.NoError(t, err)
		assert.False(t, refreshed)
	})

	t.Run("custom buffer", func(t *testing.T) {
		refresher := &fakeRefresher{token: &oauth2.Token{AccessToken: "fresh"}}
		guard := NewTokenGuard(refresher, TokenGuardOpts{Now: clock, Buffer: 5 * time.Minute})

		_, refreshed, err := guard.Ensure(ctx, &oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: now.Add(2 * time.Minute)})
		require.NoError(t, err)
		assert.True(t, refreshed)
	})

	t.Run("errors", func(t *testing.T) {
		guard := NewTokenGuard(&fakeRefresher{err: errors.New("invalid_grant")}, TokenGuardOpts{Now: clock})

		_, _, err := guard.Ensure(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

		_, _, err = guard.Ensure(ctx, &oauth2.Token{})
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)

		_, _, err = guard.Ensure(ctx, &oauth2.Token{AccessToken: "a", Expiry: now})
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.ErrorIs(t, err, shared.ErrNoRefreshToken)

		_, _, err = guard.Ensure(ctx, &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now})
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.ErrorIs(t, err, shared.ErrRefreshFailed)
	})

	t.Run("empty refresh response", func(t *testing.T) {
		guard := NewTokenGuard(&fakeRefresher{token: &oauth2.Token{}}, TokenGuardOpts{Now: clock})
		_, _, err := guard.Ensure(ctx, &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now})
		assert.ErrorIs(t, err, shared.ErrRefreshFailed)
	})
}

func TestOAuthRefresher(t *testing.T) {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	defer httpmock.DeactivateAndReset()

	const tokenURL = "https://accounts.example.test/api/token"
	var grant, refresh string
	httpmock.RegisterResponder(http.MethodPost, tokenURL, func(req *http.Request) (*http.Response, error) {
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		grant = req.PostForm.Get("grant_type")
		refresh = req.PostForm.Get("refresh_token")
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"access_token": "new-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	refresher := NewOAuthRefresher(&oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
	})

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
	tok, err := refresher.Refresh(ctx, "stored-refresh")
	require.NoError(t, err)

	assert.Equal(t, "new-access", tok.AccessToken)
	assert.Equal(t, "refresh_token", grant)
	assert.Equal(t, "stored-refresh", refresh)
	assert.False(t, tok.Expiry.IsZero())
}
