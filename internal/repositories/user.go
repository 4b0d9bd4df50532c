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

// UserRepository persists [models.User] records.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure returns the user with the given id, inserting it first if absent.
func (r *UserRepository) Ensure(ctx context.Context, id string) (*models.User, error) {
	return ensureUser(ctx, r.db, id)
}

// Get retrieves a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return getUser(ctx, r.db, id)
}

// ensureUser is a single conditional insert followed by a read, so two first-time saves for the same account cannot both insert.
func ensureUser(ctx context.Context, q querier, id string) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", shared.ErrInvalidInput)
	}

	query := `INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`
	if _, err := q.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return getUser(ctx, q, id)
}

func getUser(ctx context.Context, q querier, id string) (*models.User, error) {
	var user models.User
	err := q.QueryRowContext(ctx, `SELECT id, created_at FROM users WHERE id = ?`, id).Scan(&user.ID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}
