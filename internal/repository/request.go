package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyharmony/keyharmony/internal/models"
)

// PostgresRequestRepository owns the secret_requests table. Every state
// transition runs in a transaction that locks the request row, re-checks
// the lifecycle precondition and appends the audit entry, so a concurrent
// loser observes the post-transition state and fails with
// models.ErrInvalidTransition.
type PostgresRequestRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresRequestRepository creates a new PostgresRequestRepository
// using the provided *sql.DB.
func NewPostgresRequestRepository(db *sql.DB) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

const requestColumns = `
	r.id, r.requester_id, u.username, r.secret_name, COALESCE(r.reason, ''),
	r.status, r.created_at, r.resolved_at, r.admin_comment, r.secret_id`

func scanRequest(row interface{ Scan(...any) error }) (models.SecretRequest, error) {
	var (
		req    models.SecretRequest
		status string
	)
	err := row.Scan(
		&req.ID, &req.RequesterID, &req.RequesterUsername, &req.SecretName, &req.Reason,
		&status, &req.CreatedAt, &req.ResolvedAt, &req.AdminComment, &req.SecretID,
	)
	if err != nil {
		return models.SecretRequest{}, err
	}
	req.Status = models.RequestStatus(status)
	return req, nil
}

// insertAudit appends one audit row inside the caller's transaction.
func insertAudit(ctx context.Context, tx *sql.Tx, userID int64, action, detail string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (user_id, action, detail) VALUES ($1, $2, $3)
	`, userID, action, detail)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// Create inserts a new pending request and its create_request audit entry
// in one transaction.
func (r *PostgresRequestRepository) Create(ctx context.Context, requesterID int64, secretName, reason string) (models.SecretRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.SecretRequest{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var req models.SecretRequest
	err = tx.QueryRowContext(ctx, `
		INSERT INTO secret_requests (requester_id, secret_name, reason, status)
		VALUES ($1, $2, NULLIF($3, ''), 'pending')
		RETURNING id, created_at
	`, requesterID, secretName, reason).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return models.SecretRequest{}, fmt.Errorf("insert request: %w", err)
	}

	if err := insertAudit(ctx, tx, requesterID, models.ActionCreateRequest, fmt.Sprintf("secret: %s", secretName)); err != nil {
		return models.SecretRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.SecretRequest{}, fmt.Errorf("commit: %w", err)
	}

	req.RequesterID = requesterID
	req.SecretName = secretName
	req.Reason = reason
	req.Status = models.StatusPending
	return req, nil
}

// GetByID fetches a single request, enriched with the requester's username.
// Returns models.ErrNotFound if absent.
func (r *PostgresRequestRepository) GetByID(ctx context.Context, id int64) (models.SecretRequest, error) {
	req, err := scanRequest(r.DB.QueryRowContext(ctx, `
		SELECT`+requestColumns+`
		FROM secret_requests r JOIN users u ON u.id = r.requester_id
		WHERE r.id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SecretRequest{}, models.ErrNotFound
	}
	if err != nil {
		return models.SecretRequest{}, fmt.Errorf("GetByID: %w", err)
	}
	return req, nil
}

func (r *PostgresRequestRepository) list(ctx context.Context, query string, args ...any) ([]models.SecretRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []models.SecretRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// ListAll returns every request in insertion order.
func (r *PostgresRequestRepository) ListAll(ctx context.Context) ([]models.SecretRequest, error) {
	return r.list(ctx, `
		SELECT`+requestColumns+`
		FROM secret_requests r JOIN users u ON u.id = r.requester_id
		ORDER BY r.id
	`)
}

// ListByRequester returns the given user's requests in insertion order.
func (r *PostgresRequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]models.SecretRequest, error) {
	return r.list(ctx, `
		SELECT`+requestColumns+`
		FROM secret_requests r JOIN users u ON u.id = r.requester_id
		WHERE r.requester_id = $1
		ORDER BY r.id
	`, requesterID)
}

// lockStatus loads the request's current status under FOR UPDATE, holding
// the row lock for the remainder of the transaction.
func lockStatus(ctx context.Context, tx *sql.Tx, id int64) (models.RequestStatus, error) {
	var status string
	err := tx.QueryRowContext(ctx, `
		SELECT status FROM secret_requests WHERE id = $1 FOR UPDATE
	`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lock request: %w", err)
	}
	return models.RequestStatus(status), nil
}

// advance moves a request to a non-terminal target state (in_review or
// awaiting_admin) and appends the matching audit entry.
func (r *PostgresRequestRepository) advance(ctx context.Context, id, actorID int64, target models.RequestStatus, action string) (models.SecretRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.SecretRequest{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	status, err := lockStatus(ctx, tx, id)
	if err != nil {
		return models.SecretRequest{}, err
	}
	if !status.CanTransition(target) {
		return models.SecretRequest{}, models.ErrInvalidTransition
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE secret_requests SET status = $2 WHERE id = $1
	`, id, string(target)); err != nil {
		return models.SecretRequest{}, fmt.Errorf("update status: %w", err)
	}
	if err := insertAudit(ctx, tx, actorID, action, fmt.Sprintf("request_id: %d", id)); err != nil {
		return models.SecretRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.SecretRequest{}, fmt.Errorf("commit: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Review moves a pending request to in_review.
func (r *PostgresRequestRepository) Review(ctx context.Context, id, actorID int64) (models.SecretRequest, error) {
	return r.advance(ctx, id, actorID, models.StatusInReview, models.ActionReviewRequest)
}

// Escalate moves an in_review request to awaiting_admin.
func (r *PostgresRequestRepository) Escalate(ctx context.Context, id, actorID int64) (models.SecretRequest, error) {
	return r.advance(ctx, id, actorID, models.StatusAwaitingAdmin, models.ActionEscalateRequest)
}

// Approve resolves a non-terminal request: it materializes the secret for
// the requester, marks the request approved and appends the audit entry,
// all in one transaction. A request that is already terminal fails with
// models.ErrInvalidTransition and no secret is created.
func (r *PostgresRequestRepository) Approve(ctx context.Context, id, actorID int64, secretValue, comment string) (models.SecretRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.SecretRequest{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		requesterID int64
		secretName  string
		status      string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT requester_id, secret_name, status FROM secret_requests WHERE id = $1 FOR UPDATE
	`, id).Scan(&requesterID, &secretName, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SecretRequest{}, models.ErrNotFound
	}
	if err != nil {
		return models.SecretRequest{}, fmt.Errorf("lock request: %w", err)
	}
	if !models.RequestStatus(status).CanTransition(models.StatusApproved) {
		return models.SecretRequest{}, models.ErrInvalidTransition
	}

	var secretID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO secrets (owner_id, name, value) VALUES ($1, $2, $3) RETURNING id
	`, requesterID, secretName, secretValue).Scan(&secretID)
	if err != nil {
		return models.SecretRequest{}, fmt.Errorf("insert secret: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE secret_requests
		SET status = 'approved', resolved_at = now(), admin_comment = NULLIF($2, ''), secret_id = $3
		WHERE id = $1
	`, id, comment, secretID); err != nil {
		return models.SecretRequest{}, fmt.Errorf("update status: %w", err)
	}
	if err := insertAudit(ctx, tx, actorID, models.ActionApproveRequest,
		fmt.Sprintf("request_id: %d, secret_id: %d", id, secretID)); err != nil {
		return models.SecretRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.SecretRequest{}, fmt.Errorf("commit: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Deny resolves a non-terminal request without creating a secret.
func (r *PostgresRequestRepository) Deny(ctx context.Context, id, actorID int64, comment string) (models.SecretRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.SecretRequest{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	status, err := lockStatus(ctx, tx, id)
	if err != nil {
		return models.SecretRequest{}, err
	}
	if !status.CanTransition(models.StatusDenied) {
		return models.SecretRequest{}, models.ErrInvalidTransition
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE secret_requests
		SET status = 'denied', resolved_at = now(), admin_comment = NULLIF($2, '')
		WHERE id = $1
	`, id, comment); err != nil {
		return models.SecretRequest{}, fmt.Errorf("update status: %w", err)
	}
	if err := insertAudit(ctx, tx, actorID, models.ActionDenyRequest, fmt.Sprintf("request_id: %d", id)); err != nil {
		return models.SecretRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.SecretRequest{}, fmt.Errorf("commit: %w", err)
	}

	return r.GetByID(ctx, id)
}
