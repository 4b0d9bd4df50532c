// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
)

// SetupTestDB creates an in-memory SQLite database with migrations applied and closes it on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// FailTrackInsert installs a trigger that aborts any playlist_tracks insert for trackID.
func FailTrackInsert(t *testing.T, db *sql.DB, trackID string) {
	t.Helper()
	trigger := fmt.Sprintf(`
		CREATE TRIGGER fail_track_insert BEFORE INSERT ON playlist_tracks
		WHEN NEW.track_id = '%s'
		BEGIN
			SELECT RAISE(ABORT, 'forced failure');
		END
	`, trackID)
	if _, err := db.Exec(trigger); err != nil {
		t.Fatalf("failed to install trigger: %v", err)
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// RemotePlaylist records a playlist created through [FakeCatalog].
type RemotePlaylist struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Public      bool
	TrackIDs    []string
}

// FakeCatalog is an in-memory streaming catalog.
//
// Library backs Track and Tracks lookups; Results maps search queries to hits.
type FakeCatalog struct {
	mu sync.Mutex

	Library map[string]models.Track
	Results map[string][]models.Track
	UserID  string

	SearchErr error
	TrackErr  error
	UserErr   error
	CreateErr error
	AddErr    error

	Queries   []string
	Limits    []int
	Lookups   int
	Playlists []*RemotePlaylist
	AddCalls  int
}

// NewFakeCatalog creates a catalog owned by userID containing tracks.
func NewFakeCatalog(userID string, tracks ...models.Track) *FakeCatalog {
	f := &FakeCatalog{Library: map[string]models.Track{}, Results: map[string][]models.Track{}, UserID: userID}
	for _, tr := range tracks {
		f.Library[tr.ID] = tr
	}
	return f
}

// AddResult makes query return tracks and adds them to the library.
func (f *FakeCatalog) AddResult(query string, tracks ...models.Track) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results[query] = append(f.Results[query], tracks...)
	for _, tr := range tracks {
		f.Library[tr.ID] = tr
	}
}

func (f *FakeCatalog) SearchTracks(_ context.Context, query string, limit int) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queries = append(f.Queries, query)
	f.Limits = append(f.Limits, limit)
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	hits := f.Results[query]
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return append([]models.Track{}, hits...), nil
}

func (f *FakeCatalog) Track(_ context.Context, id string) (*models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lookups++
	if f.TrackErr != nil {
		return nil, f.TrackErr
	}
	tr, ok := f.Library[id]
	if !ok {
		return nil, fmt.Errorf("%w: no track %s", shared.ErrAPIRequest, id)
	}
	return &tr, nil
}

func (f *FakeCatalog) Tracks(_ context.Context, ids []string) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lookups++
	if f.TrackErr != nil {
		return nil, f.TrackErr
	}
	tracks := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if tr, ok := f.Library[id]; ok {
			tracks = append(tracks, tr)
		}
	}
	return tracks, nil
}

func (f *FakeCatalog) CurrentUser(context.Context) (string, error) {
	if f.UserErr != nil {
		return "", f.UserErr
	}
	return f.UserID, nil
}

func (f *FakeCatalog) CreatePlaylist(_ context.Context, userID, name, description string, public bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	p := &RemotePlaylist{
		ID:          fmt.Sprintf("remote-%d", len(f.Playlists)+1),
		UserID:      userID,
		Name:        name,
		Description: description,
		Public:      public,
	}
	f.Playlists = append(f.Playlists, p)
	return p.ID, nil
}

func (f *FakeCatalog) AddTracks(_ context.Context, playlistID string, trackIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	if f.AddErr != nil {
		return f.AddErr
	}
	for _, p := range f.Playlists {
		if p.ID == playlistID {
			p.TrackIDs = append(p.TrackIDs, trackIDs...)
			return nil
		}
	}
	return fmt.Errorf("%w: no playlist %s", shared.ErrAPIRequest, playlistID)
}

// FakeSimilarity returns a fixed candidate list.
type FakeSimilarity struct {
	Candidates []models.Candidate
	Err        error

	Calls  int
	Limits []int
}

func (f *FakeSimilarity) SimilarTracks(_ context.Context, artist, title string, limit int) ([]models.Candidate, error) {
	f.Calls++
	f.Limits = append(f.Limits, limit)
	if f.Err != nil {
		return nil, f.Err
	}
	if limit > 0 && len(f.Candidates) > limit {
		return f.Candidates[:limit], nil
	}
	return f.Candidates, nil
}

// FakeVideos returns a fixed video list.
type FakeVideos struct {
	Videos []models.Video
	Err    error

	Queries []string
}

func (f *FakeVideos) SearchVideos(_ context.Context, query string) ([]models.Video, error) {
	f.Queries = append(f.Queries, query)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Videos, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
