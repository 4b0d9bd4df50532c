package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/services"
	"github.com/desertthunder/mindmap/internal/shared"
)

// DefaultSearchLimit is the number of results on the search page.
const DefaultSearchLimit = 10

// ResolveTrack maps a (title, artist) pair to the catalog's first field-scoped search hit.
//
// No hit returns (nil, nil); the caller skips the candidate.
func ResolveTrack(ctx context.Context, catalog services.Catalog, title, artist string) (*models.Track, error) {
	query := fmt.Sprintf("track:%s artist:%s", title, artist)

	tracks, err := catalog.SearchTracks(ctx, query, 1)
	if err != nil {
		return nil, apiError(err, "failed to resolve %q", query)
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return &tracks[0], nil
}

// SearchCatalog runs a free-text track search. limit <= 0 uses [DefaultSearchLimit].
func SearchCatalog(ctx context.Context, catalog services.Catalog, query string, limit int) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", shared.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	tracks, err := catalog.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, apiError(err, "search failed")
	}
	return tracks, nil
}

// SelectedTracks returns the catalog details of the seen-set, in seen order.
func SelectedTracks(ctx context.Context, catalog services.Catalog, seen models.SeenSet) ([]models.Track, error) {
	if len(seen) == 0 {
		return []models.Track{}, nil
	}

	tracks, err := catalog.Tracks(ctx, seen.IDs())
	if err != nil {
		return nil, apiError(err, "failed to fetch %d selected tracks", len(seen))
	}
	return tracks, nil
}

// apiError wraps err in [shared.ErrAPIRequest] unless it already carries it.
func apiError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, shared.ErrAPIRequest) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, msg, err)
}
