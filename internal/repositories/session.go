package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mindmap/internal/models"
	"github.com/desertthunder/mindmap/internal/shared"
	"golang.org/x/oauth2"
)

// SessionRepository stores browsing sessions.
//
// The OAuth token and the seen-set are kept as JSON columns.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create starts a new, unauthenticated session that expires after ttl.
func (r *SessionRepository) Create(ctx context.Context, ttl time.Duration) (*models.Session, error) {
	now := r.now().UTC()
	session := &models.Session{
		ID:        shared.GenerateID(),
		Seen:      models.SeenSet{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	query := `
		INSERT INTO sessions (id, token, oauth_state, seen, created_at, updated_at, expires_at)
		VALUES (?, NULL, '', '[]', ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, session.ID, session.CreatedAt, session.UpdatedAt, session.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// Get loads a live session. Missing and expired sessions both return [shared.ErrSessionNotFound].
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, token, oauth_state, seen, created_at, updated_at, expires_at
		FROM sessions
		WHERE id = ?
	`

	var (
		session models.Session
		token   sql.NullString
		seen    string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &token, &session.OAuthState, &seen,
		&session.CreatedAt, &session.UpdatedAt, &session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if session.Expired(r.now()) {
		return nil, fmt.Errorf("%w: %s expired", shared.ErrSessionNotFound, id)
	}

	if token.Valid && token.String != "" {
		var tok oauth2.Token
		if err := json.Unmarshal([]byte(token.String), &tok); err != nil {
			return nil, fmt.Errorf("failed to decode session token: %w", err)
		}
		session.Token = &tok
	}

	if err := json.Unmarshal([]byte(seen), &session.Seen); err != nil {
		return nil, fmt.Errorf("failed to decode seen tracks: %w", err)
	}
	if session.Seen == nil {
		session.Seen = models.SeenSet{}
	}

	return &session, nil
}

// Save writes the session's mutable fields and marks it clean.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	var token sql.NullString
	if session.Token != nil {
		data, err := json.Marshal(session.Token)
		if err != nil {
			return fmt.Errorf("failed to encode session token: %w", err)
		}
		token = sql.NullString{String: string(data), Valid: true}
	}

	seen := session.Seen
	if seen == nil {
		seen = models.SeenSet{}
	}
	seenJSON, err := json.Marshal(seen)
	if err != nil {
		return fmt.Errorf("failed to encode seen tracks: %w", err)
	}

	session.UpdatedAt = r.now().UTC()
	query := `
		UPDATE sessions
		SET token = ?, oauth_state = ?, seen = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, token, session.OAuthState, string(seenJSON), session.UpdatedAt, session.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, session.ID)
	}

	session.MarkClean()
	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session past its expiry and reports how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
