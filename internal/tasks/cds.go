package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/services"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/samber/lo"
)

// CDDescriptionFormat is the remote playlist description; %s is the CD name.
const CDDescriptionFormat = "'%s' - created with Music Mindmap Store"

// CDStore is the local record of saved CDs, implemented by repositories.PlaylistRepository.
type CDStore interface {
	SaveCD(ctx context.Context, userID, remoteID, name string, trackIDs []string) (*models.Playlist, error)
	Get(ctx context.Context, id int64) (*models.Playlist, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Playlist, error)
}

// CDBuilder turns a track selection into a remote playlist plus a local CD record.
type CDBuilder struct {
	store  CDStore
	logger *log.Logger
}

// NewCDBuilder creates a CDBuilder writing to store.
func NewCDBuilder(store CDStore, logger *log.Logger) *CDBuilder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CDBuilder{store: store, logger: shared.WithLogger(logger, "task", "cd")}
}

// Create makes a private remote playlist with trackIDs and records it locally for ownerID.
//
// Nothing is written locally until both remote calls succeed. If the local save then fails,
// the remote playlist is left behind and its id is logged.
func (b *CDBuilder) Create(ctx context.Context, catalog services.Catalog, ownerID, name string, trackIDs []string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	trackIDs = lo.Uniq(lo.Compact(trackIDs))

	switch {
	case ownerID == "":
		return nil, fmt.Errorf("%w: owner is required", shared.ErrInvalidInput)
	case name == "":
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	case len(trackIDs) == 0:
		return nil, fmt.Errorf("%w: at least one track is required", shared.ErrInvalidInput)
	}

	remoteID, err := catalog.CreatePlaylist(ctx, ownerID, name, fmt.Sprintf(CDDescriptionFormat, name), false)
	if err != nil {
		return nil, apiError(err, "failed to create playlist %q", name)
	}

	if err := catalog.AddTracks(ctx, remoteID, trackIDs); err != nil {
		b.logger.Warn("remote playlist left without tracks", "remote_id", remoteID, "error", err)
		return nil, apiError(err, "failed to add tracks to %s", remoteID)
	}

	playlist, err := b.store.SaveCD(ctx, ownerID, remoteID, name, trackIDs)
	if err != nil {
		b.logger.Warn("remote playlist orphaned, local save failed", "remote_id", remoteID, "error", err)
		if errors.Is(err, shared.ErrPersistence) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrPersistence, err)
	}

	b.logger.Info("cd created", "id", playlist.ID, "remote_id", remoteID, "owner", ownerID, "tracks", len(trackIDs))
	return playlist, nil
}

// List returns userID's CDs, newest first.
func (b *CDBuilder) List(ctx context.Context, userID string) ([]*models.Playlist, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", shared.ErrInvalidInput)
	}
	return b.store.ListByUser(ctx, userID)
}

// Detail returns CD id with catalog details for its tracks.
//
// CDs owned by another user are reported as [shared.ErrPlaylistNotFound].
func (b *CDBuilder) Detail(ctx context.Context, catalog services.Catalog, userID string, id int64) (*models.CD, error) {
	playlist, err := b.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, fmt.Errorf("%w: %d", shared.ErrPlaylistNotFound, id)
	}

	cd := &models.CD{Playlist: playlist, Tracks: []models.Track{}}
	if len(playlist.Tracks) == 0 {
		return cd, nil
	}

	tracks, err := catalog.Tracks(ctx, playlist.TrackIDs())
	if err != nil {
		return nil, apiError(err, "failed to fetch tracks of cd %d", id)
	}
	cd.Tracks = tracks
	return cd, nil
}
