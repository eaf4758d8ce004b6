// Package repository provides PostgreSQL persistence for users, secret
// requests, secrets and the audit ledger.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyharmony/keyharmony/internal/models"
)

// PostgresUserRepository implements user lookups against a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// GetByUsername fetches a user by login name.
// Returns models.ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_admin FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return &u, nil
}

// GetByID fetches a user by identifier.
// Returns models.ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_admin FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &u, nil
}

// Upsert creates a user or rotates an existing user's credential and admin
// flag. Used by the provisioning tool only; the service itself never
// creates users.
func (r *PostgresUserRepository) Upsert(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, is_admin)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			is_admin = EXCLUDED.is_admin
		RETURNING id
	`, username, passwordHash, isAdmin).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Upsert: %w", err)
	}
	return id, nil
}
