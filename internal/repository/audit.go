package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keyharmony/keyharmony/internal/models"
)

// PostgresAuditRepository appends to and reads the append-only audit
// ledger. Transition audit entries are written by the request repository
// inside the transition transaction; this repository covers standalone
// appends (view_secret) and the admin listing.
type PostgresAuditRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository using
// the provided *sql.DB.
func NewPostgresAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{DB: db}
}

// Record appends one entry to the ledger. userID may be nil for system
// actions.
func (r *PostgresAuditRepository) Record(ctx context.Context, userID *int64, action, detail string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO audit_log (user_id, action, detail) VALUES ($1, $2, $3)
	`, userID, action, detail)
	if err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	return nil
}

// List returns the full ledger, newest first.
func (r *PostgresAuditRepository) List(ctx context.Context) ([]models.AuditEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, action, COALESCE(detail, ''), created_at
		FROM audit_log ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
