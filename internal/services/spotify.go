// Spotify Web API implementation of [Catalog]
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTracksBatch   = 50  // GET /tracks accepts at most 50 ids
	spotifyPlaylistBatch = 100 // POST /playlists/{id}/tracks accepts at most 100 uris
)

// SpotifyScopes are requested at login: profile reads plus playlist writes.
var SpotifyScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

var _ Catalog = (*SpotifyCatalog)(nil)

// SpotifyCatalog implements [Catalog] on top of a token-bound [spotify.Client].
type SpotifyCatalog struct {
	client *spotify.Client
	logger *log.Logger
}

// NewSpotifyCatalog wraps an authenticated client.
func NewSpotifyCatalog(client *spotify.Client, logger *log.Logger) *SpotifyCatalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifyCatalog{client: client, logger: shared.WithLogger(logger, "service", "spotify")}
}

// SearchTracks runs a track search limited to limit results.
func (s *SpotifyCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", shared.ErrAPIRequest, query, err)
	}

	if result.Tracks == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(&result.Tracks.Tracks[i]))
	}

	s.logger.Debug("search", "query", query, "results", len(tracks))
	return tracks, nil
}

// Track fetches a single track.
func (s *SpotifyCatalog) Track(ctx context.Context, id string) (*models.Track, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: track id is required", shared.ErrInvalidInput)
	}

	full, err := s.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("%w: get track %s: %w", shared.ErrAPIRequest, id, err)
	}

	track := convertTrack(full)
	return &track, nil
}

// Tracks fetches tracks in batches of 50, keeping the order of ids.
func (s *SpotifyCatalog) Tracks(ctx context.Context, ids []string) ([]models.Track, error) {
	tracks := make([]models.Track, 0, len(ids))

	for _, batch := range lo.Chunk(ids, spotifyTracksBatch) {
		full, err := s.client.GetTracks(ctx, toSpotifyIDs(batch))
		if err != nil {
			return nil, fmt.Errorf("%w: get %d tracks: %w", shared.ErrAPIRequest, len(batch), err)
		}
		for _, t := range full {
			if t == nil {
				continue
			}
			tracks = append(tracks, convertTrack(t))
		}
	}

	return tracks, nil
}

// CurrentUser returns the token owner's account id.
func (s *SpotifyCatalog) CurrentUser(ctx context.Context) (string, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: current user: %w", shared.ErrAPIRequest, err)
	}
	return user.ID, nil
}

// CreatePlaylist creates a non-collaborative playlist for userID.
func (s *SpotifyCatalog) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error) {
	playlist, err := s.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return "", fmt.Errorf("%w: create playlist %q: %w", shared.ErrAPIRequest, name, err)
	}

	s.logger.Info("created playlist", "id", playlist.ID, "name", name, "public", public)
	return string(playlist.ID), nil
}

// AddTracks appends tracks to a playlist, 100 per request.
func (s *SpotifyCatalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	for _, batch := range lo.Chunk(trackIDs, spotifyPlaylistBatch) {
		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), toSpotifyIDs(batch)...); err != nil {
			return fmt.Errorf("%w: add %d tracks to %s: %w", shared.ErrAPIRequest, len(batch), playlistID, err)
		}
	}

	s.logger.Debug("added tracks", "playlist", playlistID, "count", len(trackIDs))
	return nil
}

func toSpotifyIDs(ids []string) []spotify.ID {
	return lo.Map(ids, func(id string, _ int) spotify.ID { return spotify.ID(id) })
}

func convertTrack(t *spotify.FullTrack) models.Track {
	track := models.Track{
		ID:         string(t.ID),
		Name:       t.Name,
		Artists:    lo.Map(t.Artists, func(a spotify.SimpleArtist, _ int) string { return a.Name }),
		Album:      t.Album.Name,
		PreviewURL: t.PreviewURL,
		URL:        t.ExternalURLs["spotify"],
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}
	return track
}

// SpotifyClients builds the OAuth authenticator and per-token catalogs.
type SpotifyClients struct {
	auth   *spotifyauth.Authenticator
	config *oauth2.Config
	logger *log.Logger
}

// NewSpotifyClients configures the authorization-code flow for the given app credentials.
func NewSpotifyClients(cfg shared.SpotifyConfig, logger *log.Logger) *SpotifyClients {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(SpotifyScopes...),
	)

	return &SpotifyClients{
		auth: auth,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       SpotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		logger: logger,
	}
}

// AuthURL returns the provider consent URL carrying state.
func (c *SpotifyClients) AuthURL(state string) string {
	return c.auth.AuthURL(state)
}

// Exchange validates the callback's state and trades its code for a token.
func (c *SpotifyClients) Exchange(ctx context.Context, state string, r *http.Request) (*oauth2.Token, error) {
	if state == "" || r.FormValue("state") != state {
		return nil, shared.ErrInvalidState
	}
	if errParam := r.FormValue("error"); errParam != "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, errParam)
	}

	token, err := c.auth.Token(ctx, state, r)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %w", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Catalog returns a [Catalog] bound to token.
func (c *SpotifyClients) Catalog(ctx context.Context, token *oauth2.Token) Catalog {
	return NewSpotifyCatalog(spotify.New(c.auth.Client(ctx, token)), c.logger)
}

// AppCatalog returns a [Catalog] authorized with the app's own credentials through the
// client-credentials grant. It reads the public catalog only: it has no user, so
// CurrentUser and playlist writes are rejected by the provider.
func (c *SpotifyClients) AppCatalog(ctx context.Context) Catalog {
	cc := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return NewSpotifyCatalog(spotify.New(cc.Client(ctx)), c.logger)
}

// Refresher returns a [TokenRefresher] using the same app credentials.
func (c *SpotifyClients) Refresher() *OAuthRefresher {
	return NewOAuthRefresher(c.config)
}
