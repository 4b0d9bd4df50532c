package services

import (
	"context"

	"github.com/desertthunder/mindmap/internal/models"
)

// Catalog is the subset of the streaming provider used by mindmap.
type Catalog interface {
	// SearchTracks runs a free-text track search and returns at most limit tracks in provider order.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)

	// Track fetches a single track by catalog id.
	Track(ctx context.Context, id string) (*models.Track, error)

	// Tracks fetches several tracks, preserving the order of ids and skipping unavailable ones.
	Tracks(ctx context.Context, ids []string) ([]models.Track, error)

	// CurrentUser returns the account id of the token's owner.
	CurrentUser(ctx context.Context) (string, error)

	// CreatePlaylist creates a playlist owned by userID and returns its remote id.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (string, error)

	// AddTracks appends tracks to a remote playlist.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// SimilarityProvider returns tracks similar to a given (artist, title) pair, best match first.
type SimilarityProvider interface {
	SimilarTracks(ctx context.Context, artist, title string, limit int) ([]models.Candidate, error)
}

// VideoSearcher returns video hits for a query in provider order.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, query string) ([]models.Video, error)
}
