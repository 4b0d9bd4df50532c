package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Ensure creates the user once", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)

		first, err := repo.Ensure(ctx, "spotify-user")
		if err != nil {
			t.Fatalf("failed to ensure user: %v", err)
		}
		second, err := repo.Ensure(ctx, "spotify-user")
		if err != nil {
			t.Fatalf("failed to ensure existing user: %v", err)
		}

		if first.ID != "spotify-user" || second.ID != first.ID {
			t.Errorf("expected the same user twice, got %q and %q", first.ID, second.ID)
		}
		if !second.CreatedAt.Equal(first.CreatedAt) {
			t.Errorf("existing user should not be rewritten: %v vs %v", first.CreatedAt, second.CreatedAt)
		}
		if n := countRows(t, db, "users"); n != 1 {
			t.Errorf("expected 1 user row, got %d", n)
		}
	})

	t.Run("Ensure rejects empty id", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewUserRepository(db).Ensure(ctx, ""); err == nil {
			t.Fatal("expected error for empty user id")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewUserRepository(db)
		if _, err := repo.Ensure(ctx, "u1"); err != nil {
			t.Fatalf("failed to ensure user: %v", err)
		}

		user, err := repo.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if user.ID != "u1" {
			t.Errorf("expected u1, got %s", user.ID)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveCD writes user, playlist and tracks", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist, err := repo.SaveCD(ctx, "u1", "remote-1", "Road trip", []string{"t1", "t2", "t3"})
		if err != nil {
			t.Fatalf("failed to save cd: %v", err)
		}

		if playlist.ID == 0 {
			t.Error("expected local id to be assigned")
		}
		if len(playlist.Tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(playlist.Tracks))
		}
		for i, tr := range playlist.Tracks {
			if tr.Position != i || tr.PlaylistID != playlist.ID {
				t.Errorf("track %d has position %d playlist %d", i, tr.Position, tr.PlaylistID)
			}
		}

		if n := countRows(t, db, "users"); n != 1 {
			t.Errorf("expected lazily created user, got %d rows", n)
		}
		if n := countRows(t, db, "playlist_tracks"); n != 3 {
			t.Errorf("expected 3 playlist_tracks rows, got %d", n)
		}
	})

	t.Run("SaveCD reuses an existing user", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		for _, name := range []string{"One", "Two"} {
			if _, err := repo.SaveCD(ctx, "u1", "remote-"+name, name, []string{"t1"}); err != nil {
				t.Fatalf("failed to save %s: %v", name, err)
			}
		}

		if n := countRows(t, db, "users"); n != 1 {
			t.Errorf("expected 1 user row, got %d", n)
		}
		if n := countRows(t, db, "playlists"); n != 2 {
			t.Errorf("expected 2 playlists, got %d", n)
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		saved, err := repo.SaveCD(ctx, "u1", "remote-1", "Road trip", []string{"b", "a"})
		if err != nil {
			t.Fatalf("failed to save cd: %v", err)
		}

		got, err := repo.Get(ctx, saved.ID)
		if err != nil {
			t.Fatalf("failed to get cd: %v", err)
		}
		if got.Name != "Road trip" || got.RemoteID != "remote-1" || got.UserID != "u1" {
			t.Errorf("unexpected playlist %+v", got)
		}
		ids := got.TrackIDs()
		if len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
			t.Errorf("expected insertion order [b a], got %v", ids)
		}
	})

	t.Run("ListByUser", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		first, _ := repo.SaveCD(ctx, "u1", "r1", "First", []string{"t1"})
		second, _ := repo.SaveCD(ctx, "u1", "r2", "Second", []string{"t2", "t3"})
		if _, err := repo.SaveCD(ctx, "u2", "r3", "Other", []string{"t4"}); err != nil {
			t.Fatalf("failed to save other user's cd: %v", err)
		}

		list, err := repo.ListByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(list))
		}
		if list[0].ID != second.ID || list[1].ID != first.ID {
			t.Errorf("expected newest first, got %d then %d", list[0].ID, list[1].ID)
		}
		if len(list[0].Tracks) != 2 || len(list[1].Tracks) != 1 {
			t.Errorf("tracks not attached: %d and %d", len(list[0].Tracks), len(list[1].Tracks))
		}
	})

	t.Run("ListByUser for unknown user", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		list, err := NewPlaylistRepository(db).ListByUser(ctx, "nobody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("expected no playlists, got %d", len(list))
		}
	})
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		created, err := repo.Create(ctx, time.Hour)
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.Authenticated() {
			t.Error("new session should not carry a token")
		}
		if got.Seen == nil || len(got.Seen) != 0 {
			t.Errorf("expected empty seen-set, got %v", got.Seen)
		}
	})

	t.Run("Save round-trips token, state and seen-set", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		session, err := repo.Create(ctx, time.Hour)
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		session.SetToken(&oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry})
		session.SetOAuthState("state-123")
		session.SetSeen(models.SeenSet{"a", "b"})

		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}
		if session.Dirty() {
			t.Error("session should be clean after save")
		}

		got, err := repo.Get(ctx, session.ID)
		if err != nil {
			t.Fatalf("failed to reload session: %v", err)
		}
		if got.Token == nil || got.Token.AccessToken != "access" || got.Token.RefreshToken != "refresh" {
			t.Errorf("token not restored: %+v", got.Token)
		}
		if !got.Token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, got.Token.Expiry)
		}
		if got.OAuthState != "state-123" {
			t.Errorf("expected state-123, got %s", got.OAuthState)
		}
		if len(got.Seen) != 2 || got.Seen[0] != "a" || got.Seen[1] != "b" {
			t.Errorf("expected seen [a b], got %v", got.Seen)
		}
	})

	t.Run("expired sessions are not returned and are swept", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return start }

		session, err := repo.Create(ctx, time.Hour)
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		repo.now = func() time.Time { return start.Add(2 * time.Hour) }

		if _, err := repo.Get(ctx, session.ID); err == nil {
			t.Fatal("expected expired session to be rejected")
		}

		removed, err := repo.DeleteExpired(ctx)
		if err != nil {
			t.Fatalf("failed to sweep sessions: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 expired session removed, got %d", removed)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		session, _ := repo.Create(ctx, time.Hour)

		if err := repo.Delete(ctx, session.ID); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}
		if err := repo.Delete(ctx, session.ID); err != nil {
			t.Errorf("deleting twice should not fail: %v", err)
		}
		if _, err := repo.Get(ctx, session.ID); err == nil {
			t.Error("expected deleted session to be gone")
		}
	})
}
