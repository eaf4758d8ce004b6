package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/keyharmony/keyharmony/internal/models"
)

// RequestRepository defines the persistence operations required by the
// lifecycle engine. Each transition method is atomic: it re-checks the
// lifecycle precondition under a row lock and appends the audit entry in
// the same transaction, returning models.ErrInvalidTransition when the
// precondition no longer holds.
type RequestRepository interface {
	Create(ctx context.Context, requesterID int64, secretName, reason string) (models.SecretRequest, error)
	GetByID(ctx context.Context, id int64) (models.SecretRequest, error)
	ListAll(ctx context.Context) ([]models.SecretRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]models.SecretRequest, error)
	Review(ctx context.Context, id, actorID int64) (models.SecretRequest, error)
	Escalate(ctx context.Context, id, actorID int64) (models.SecretRequest, error)
	Approve(ctx context.Context, id, actorID int64, secretValue, comment string) (models.SecretRequest, error)
	Deny(ctx context.Context, id, actorID int64, comment string) (models.SecretRequest, error)
}

// SecretRepository defines the read operations the engine needs on
// materialized secrets.
type SecretRepository interface {
	GetByID(ctx context.Context, id int64) (models.Secret, error)
	ListAll(ctx context.Context) ([]models.Secret, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Secret, error)
}

// AuditRepository defines the ledger operations for standalone audit
// appends and the admin listing.
type AuditRepository interface {
	Record(ctx context.Context, userID *int64, action, detail string) error
	List(ctx context.Context) ([]models.AuditEntry, error)
}

// Notifier enqueues a human-readable event message for a user.
type Notifier interface {
	Enqueue(userID int64, message string)
	List(userID int64) []string
}

// requestLocks serializes transitions per request identifier. Unrelated
// requests proceed in parallel. Entries are a few words each and are kept
// for the process lifetime.
type requestLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *requestLocks) get(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[int64]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// LifecycleService owns the SecretRequest state machine. Every transition
// validates the caller's capability, applies the state change atomically
// with its audit entry, and enqueues exactly one notification. Concurrent
// transitions on the same request serialize; the loser observes the
// post-transition state and fails with models.ErrInvalidTransition.
type LifecycleService struct {
	requests RequestRepository
	secrets  SecretRepository
	audit    AuditRepository
	outbox   Notifier
	locks    requestLocks
}

// NewLifecycleService constructs the engine over its collaborators.
func NewLifecycleService(requests RequestRepository, secrets SecretRepository, audit AuditRepository, outbox Notifier) *LifecycleService {
	return &LifecycleService{requests: requests, secrets: secrets, audit: audit, outbox: outbox}
}

// Submit creates a new pending request for the acting user.
func (s *LifecycleService) Submit(ctx context.Context, actor *models.User, secretName, reason string) (models.SecretRequest, error) {
	if strings.TrimSpace(secretName) == "" {
		return models.SecretRequest{}, models.ErrInvalidArgument
	}
	req, err := s.requests.Create(ctx, actor.ID, secretName, reason)
	if err != nil {
		return models.SecretRequest{}, err
	}
	req.RequesterUsername = actor.Username
	s.outbox.Enqueue(actor.ID, fmt.Sprintf("Request created: %s", secretName))
	return req, nil
}

// ListRequests returns either the actor's own requests or, for
// administrators asking for the full set, every request.
func (s *LifecycleService) ListRequests(ctx context.Context, actor *models.User, all bool) ([]models.SecretRequest, error) {
	if all {
		if !CanListAllRequests(actor) {
			return nil, models.ErrForbidden
		}
		return s.requests.ListAll(ctx)
	}
	return s.requests.ListByRequester(ctx, actor.ID)
}

// Review moves a pending request to in_review.
func (s *LifecycleService) Review(ctx context.Context, actor *models.User, id int64) (models.SecretRequest, error) {
	if !CanTriage(actor) {
		return models.SecretRequest{}, models.ErrForbidden
	}
	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := s.requests.Review(ctx, id, actor.ID)
	if err != nil {
		return models.SecretRequest{}, err
	}
	s.outbox.Enqueue(req.RequesterID, fmt.Sprintf("Request %d is under review", id))
	return req, nil
}

// Escalate moves an in_review request to awaiting_admin.
func (s *LifecycleService) Escalate(ctx context.Context, actor *models.User, id int64) (models.SecretRequest, error) {
	if !CanTriage(actor) {
		return models.SecretRequest{}, models.ErrForbidden
	}
	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := s.requests.Escalate(ctx, id, actor.ID)
	if err != nil {
		return models.SecretRequest{}, err
	}
	s.outbox.Enqueue(req.RequesterID, fmt.Sprintf("Request %d is awaiting administrator action", id))
	return req, nil
}

// Approve resolves a non-terminal request, materializing the secret for
// its requester. The secret value must be non-empty. A retried approve
// hits the terminal state and fails with models.ErrInvalidTransition
// instead of creating a second secret.
func (s *LifecycleService) Approve(ctx context.Context, actor *models.User, id int64, secretValue, comment string) (models.SecretRequest, error) {
	if !CanTriage(actor) {
		return models.SecretRequest{}, models.ErrForbidden
	}
	if secretValue == "" {
		return models.SecretRequest{}, models.ErrInvalidArgument
	}
	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := s.requests.Approve(ctx, id, actor.ID, secretValue, comment)
	if err != nil {
		return models.SecretRequest{}, err
	}
	s.outbox.Enqueue(req.RequesterID, fmt.Sprintf("Request %d approved, the secret is ready to view", id))
	return req, nil
}

// Deny resolves a non-terminal request without creating a secret.
func (s *LifecycleService) Deny(ctx context.Context, actor *models.User, id int64, comment string) (models.SecretRequest, error) {
	if !CanTriage(actor) {
		return models.SecretRequest{}, models.ErrForbidden
	}
	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	req, err := s.requests.Deny(ctx, id, actor.ID, comment)
	if err != nil {
		return models.SecretRequest{}, err
	}
	s.outbox.Enqueue(req.RequesterID, fmt.Sprintf("Request %d denied", id))
	return req, nil
}

// ViewSecret returns the secret resolved for the request. The request
// must be approved (models.ErrInvalidState otherwise) and the actor must
// be the requester or an administrator (models.ErrForbidden otherwise).
// Every successful view is audited.
func (s *LifecycleService) ViewSecret(ctx context.Context, actor *models.User, id int64) (models.Secret, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return models.Secret{}, err
	}
	if req.Status != models.StatusApproved {
		return models.Secret{}, models.ErrInvalidState
	}
	if !CanViewSecret(actor, req) {
		return models.Secret{}, models.ErrForbidden
	}
	// Unreachable while the approve invariant holds.
	if req.SecretID == nil {
		return models.Secret{}, models.ErrNotFound
	}

	secret, err := s.secrets.GetByID(ctx, *req.SecretID)
	if err != nil {
		return models.Secret{}, err
	}
	if err := s.audit.Record(ctx, &actor.ID, models.ActionViewSecret,
		fmt.Sprintf("request_id: %d, secret_id: %d", req.ID, secret.ID)); err != nil {
		return models.Secret{}, err
	}
	return secret, nil
}

// ListSecrets returns every secret for administrators, otherwise the
// actor's own.
func (s *LifecycleService) ListSecrets(ctx context.Context, actor *models.User) ([]models.Secret, error) {
	if actor.IsAdmin {
		return s.secrets.ListAll(ctx)
	}
	return s.secrets.ListByOwner(ctx, actor.ID)
}

// Audit returns the full ledger, newest first. Administrators only.
func (s *LifecycleService) Audit(ctx context.Context, actor *models.User) ([]models.AuditEntry, error) {
	if !CanViewAudit(actor) {
		return nil, models.ErrForbidden
	}
	return s.audit.List(ctx)
}

// Notifications returns the actor's queued messages, oldest first.
func (s *LifecycleService) Notifications(actor *models.User) []string {
	return s.outbox.List(actor.ID)
}
