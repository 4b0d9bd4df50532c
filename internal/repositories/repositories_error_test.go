package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
)

// failTrackInsert makes any playlist_tracks insert for trackID abort the statement.
func failTrackInsert(t *testing.T, repo *PlaylistRepository, trackID string) {
	t.Helper()
	trigger := `
		CREATE TRIGGER fail_track_insert BEFORE INSERT ON playlist_tracks
		WHEN NEW.track_id = '` + trackID + `'
		BEGIN
			SELECT RAISE(ABORT, 'forced failure');
		END
	`
	if _, err := repo.db.Exec(trigger); err != nil {
		t.Fatalf("failed to install trigger: %v", err)
	}
}

func TestPlaylistRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveCD rolls back every row when a track insert fails", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		failTrackInsert(t, repo, "boom")

		_, err := repo.SaveCD(ctx, "u1", "remote-1", "Broken", []string{"t1", "t2", "boom"})
		if !errors.Is(err, shared.ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}

		for _, table := range []string{"users", "playlists", "playlist_tracks"} {
			if n := countRows(t, db, table); n != 0 {
				t.Errorf("expected %s to be empty after rollback, got %d rows", table, n)
			}
		}
	})

	t.Run("SaveCD rejects invalid input without touching the store", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		_, err := repo.SaveCD(ctx, "u1", "", "No remote", []string{"t1"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if n := countRows(t, db, "users"); n != 0 {
			t.Errorf("expected no user rows, got %d", n)
		}
	})

	t.Run("SaveCD on closed database", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		_, err := NewPlaylistRepository(db).SaveCD(ctx, "u1", "r1", "Name", []string{"t1"})
		if !errors.Is(err, shared.ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewPlaylistRepository(db).Get(ctx, 404)
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("ListByUser on closed database", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		if _, err := NewPlaylistRepository(db).ListByUser(ctx, "u1"); err == nil {
			t.Fatal("expected error on closed database")
		}
	})
}

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewUserRepository(db).Get(ctx, "missing"); err == nil {
			t.Fatal("expected error for missing user")
		}
	})

	t.Run("Ensure on closed database", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		if _, err := NewUserRepository(db).Ensure(ctx, "u1"); err == nil {
			t.Fatal("expected error on closed database")
		}
	})
}

func TestSessionRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Get unknown session", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewSessionRepository(db).Get(ctx, "missing")
		if !errors.Is(err, shared.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Save unknown session", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewSessionRepository(db).Save(ctx, &models.Session{ID: "missing"})
		if !errors.Is(err, shared.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Get with corrupt seen column", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		session, err := repo.Create(ctx, time.Hour)
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if _, err := db.Exec(`UPDATE sessions SET seen = 'not json' WHERE id = ?`, session.ID); err != nil {
			t.Fatalf("failed to corrupt row: %v", err)
		}

		if _, err := repo.Get(ctx, session.ID); err == nil {
			t.Fatal("expected decode error")
		}
	})

	t.Run("Create on closed database", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		if _, err := NewSessionRepository(db).Create(ctx, time.Hour); err == nil {
			t.Fatal("expected error on closed database")
		}
	})
}
