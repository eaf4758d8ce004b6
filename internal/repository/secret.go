package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyharmony/keyharmony/internal/models"
)

// PostgresSecretRepository reads the secrets table. Secrets are written
// only by PostgresRequestRepository.Approve, inside the approval
// transaction; there is no update or delete.
type PostgresSecretRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSecretRepository creates a new PostgresSecretRepository using
// the provided *sql.DB.
func NewPostgresSecretRepository(db *sql.DB) *PostgresSecretRepository {
	return &PostgresSecretRepository{DB: db}
}

// GetByID fetches a single secret.
// Returns models.ErrNotFound if absent.
func (r *PostgresSecretRepository) GetByID(ctx context.Context, id int64) (models.Secret, error) {
	var s models.Secret
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, owner_id, name, value, created_at FROM secrets WHERE id = $1
	`, id).Scan(&s.ID, &s.OwnerID, &s.Name, &s.Value, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Secret{}, models.ErrNotFound
	}
	if err != nil {
		return models.Secret{}, fmt.Errorf("GetByID: %w", err)
	}
	return s, nil
}

func (r *PostgresSecretRepository) list(ctx context.Context, query string, args ...any) ([]models.Secret, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer rows.Close()

	var secrets []models.Secret
	for rows.Next() {
		var s models.Secret
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Value, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		secrets = append(secrets, s)
	}
	return secrets, rows.Err()
}

// ListAll returns every secret in insertion order.
func (r *PostgresSecretRepository) ListAll(ctx context.Context) ([]models.Secret, error) {
	return r.list(ctx, `SELECT id, owner_id, name, value, created_at FROM secrets ORDER BY id`)
}

// ListByOwner returns the given user's secrets in insertion order.
func (r *PostgresSecretRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Secret, error) {
	return r.list(ctx, `SELECT id, owner_id, name, value, created_at FROM secrets WHERE owner_id = $1 ORDER BY id`, ownerID)
}
