package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
)

// PlaylistRepository persists saved CDs ([models.Playlist] with their [models.PlaylistTrack] rows).
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// SaveCD records a CD whose remote playlist already exists.
//
// The owner upsert, the playlist row and one row per track are written in a single transaction.
// Any failure rolls all of them back and returns an error wrapping [shared.ErrPersistence].
func (r *PlaylistRepository) SaveCD(ctx context.Context, userID, remoteID, name string, trackIDs []string) (*models.Playlist, error) {
	playlist := &models.Playlist{
		RemoteID:  remoteID,
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := playlist.Validate(); err != nil {
		return nil, fmt.Errorf("%w: validation failed: %w", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", shared.ErrPersistence, err)
	}
	defer tx.Rollback()

	if _, err := ensureUser(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrPersistence, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO playlists (remote_id, name, user_id, created_at) VALUES (?, ?, ?, ?)`,
		playlist.RemoteID, playlist.Name, playlist.UserID, playlist.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert playlist: %w", shared.ErrPersistence, err)
	}
	if playlist.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("%w: failed to read playlist id: %w", shared.ErrPersistence, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO playlist_tracks (track_id, playlist_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to prepare track insert: %w", shared.ErrPersistence, err)
	}
	defer stmt.Close()

	playlist.Tracks = make([]models.PlaylistTrack, 0, len(trackIDs))
	for i, trackID := range trackIDs {
		res, err := stmt.ExecContext(ctx, trackID, playlist.ID, i)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to insert track %s: %w", shared.ErrPersistence, trackID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read track row id: %w", shared.ErrPersistence, err)
		}
		playlist.Tracks = append(playlist.Tracks, models.PlaylistTrack{
			ID:         id,
			TrackID:    trackID,
			PlaylistID: playlist.ID,
			Position:   i,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit: %w", shared.ErrPersistence, err)
	}

	return playlist, nil
}

// Get retrieves a CD and its tracks by local id.
func (r *PlaylistRepository) Get(ctx context.Context, id int64) (*models.Playlist, error) {
	query := `SELECT id, remote_id, name, user_id, created_at FROM playlists WHERE id = ?`

	playlist, err := scanPlaylist(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}

	tracks, err := r.tracks(ctx, `WHERE playlist_id = ?`, id)
	if err != nil {
		return nil, err
	}
	playlist.Tracks = tracks[playlist.ID]

	return playlist, nil
}

// ListByUser returns the user's CDs with their tracks, newest first.
//
// An unknown user simply has no CDs.
func (r *PlaylistRepository) ListByUser(ctx context.Context, userID string) ([]*models.Playlist, error) {
	query := `
		SELECT id, remote_id, name, user_id, created_at
		FROM playlists
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	var playlists []*models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate playlists: %w", err)
	}
	rows.Close()

	if len(playlists) == 0 {
		return playlists, nil
	}

	tracks, err := r.tracks(ctx, `WHERE playlist_id IN (SELECT id FROM playlists WHERE user_id = ?)`, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range playlists {
		p.Tracks = tracks[p.ID]
	}

	return playlists, nil
}

// tracks loads playlist_tracks rows matching where, grouped by playlist id in position order.
func (r *PlaylistRepository) tracks(ctx context.Context, where string, args ...any) (map[int64][]models.PlaylistTrack, error) {
	query := `SELECT id, track_id, playlist_id, position FROM playlist_tracks ` + where + ` ORDER BY playlist_id, position, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	grouped := make(map[int64][]models.PlaylistTrack)
	for rows.Next() {
		var t models.PlaylistTrack
		if err := rows.Scan(&t.ID, &t.TrackID, &t.PlaylistID, &t.Position); err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		grouped[t.PlaylistID] = append(grouped[t.PlaylistID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlist tracks: %w", err)
	}
	return grouped, nil
}

func scanPlaylist(s scanner) (*models.Playlist, error) {
	var p models.Playlist
	if err := s.Scan(&p.ID, &p.RemoteID, &p.Name, &p.UserID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
