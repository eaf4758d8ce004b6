// Package models defines the core data structures for principals, secrets,
// disclosure requests and audit entries, together with the request
// state machine.
package models

import "time"

// User represents an authenticated principal.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Username is the login name chosen by the user.
	Username string
	// PasswordHash is the opaque verifiable credential
	// (pbkdf2_sha256$<iterations>$<salt>$<hash>).
	PasswordHash string
	// IsAdmin grants the administrator capability.
	IsAdmin bool
}

// Secret holds a disclosed value together with its ownership metadata.
// Secrets are immutable once written.
type Secret struct {
	// ID is the unique identifier for the secret.
	ID int64 `json:"id"`
	// OwnerID references the user the secret was disclosed to.
	OwnerID int64 `json:"owner_id"`
	// Name is the secret name, copied from the originating request.
	Name string `json:"name"`
	// Value is the opaque secret material.
	Value string `json:"value"`
	// CreatedAt is the disclosure timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// RequestStatus is the lifecycle state of a SecretRequest.
type RequestStatus string

const (
	// StatusPending is the initial state of a freshly submitted request.
	StatusPending RequestStatus = "pending"
	// StatusInReview means a triager has picked the request up.
	StatusInReview RequestStatus = "in_review"
	// StatusAwaitingAdmin means the request was escalated for a decision.
	StatusAwaitingAdmin RequestStatus = "awaiting_admin"
	// StatusApproved is terminal; a secret has been materialized.
	StatusApproved RequestStatus = "approved"
	// StatusDenied is terminal; no secret exists for the request.
	StatusDenied RequestStatus = "denied"
)

// IsTerminal reports whether no further transition is legal from s.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// CanTransition reports whether moving from s to target follows the
// lifecycle graph. Approve and deny are legal from every non-terminal
// state; review and escalate each have a single legal source state.
func (s RequestStatus) CanTransition(target RequestStatus) bool {
	switch target {
	case StatusInReview:
		return s == StatusPending
	case StatusAwaitingAdmin:
		return s == StatusInReview
	case StatusApproved, StatusDenied:
		return !s.IsTerminal()
	default:
		return false
	}
}

// SecretRequest is a user's request for disclosure of a named secret.
// It is created in StatusPending and mutated only through validated
// transitions.
type SecretRequest struct {
	// ID is the unique identifier for the request.
	ID int64 `json:"id"`
	// RequesterID references the submitting user.
	RequesterID int64 `json:"requester_id"`
	// RequesterUsername is resolved at read time for presentation.
	RequesterUsername string `json:"requester_username,omitempty"`
	// SecretName names the secret being requested.
	SecretName string `json:"secret_name"`
	// Reason is the optional justification supplied at submission.
	Reason string `json:"reason,omitempty"`
	// Status is the current lifecycle state.
	Status RequestStatus `json:"status"`
	// CreatedAt is the submission timestamp.
	CreatedAt time.Time `json:"created_at"`
	// ResolvedAt is set exactly when the request reaches a terminal state.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	// AdminComment is set by the resolving approve or deny.
	AdminComment *string `json:"admin_comment,omitempty"`
	// SecretID references the materialized secret; set iff approved.
	SecretID *int64 `json:"secret_id,omitempty"`
}

// Audit action tags, one per mutating operation.
const (
	ActionCreateRequest   = "create_request"
	ActionReviewRequest   = "review_request"
	ActionEscalateRequest = "escalate_request"
	ActionApproveRequest  = "approve_request"
	ActionDenyRequest     = "deny_request"
	ActionViewSecret      = "view_secret"
)

// AuditEntry is one record in the append-only audit ledger.
type AuditEntry struct {
	// ID is the unique identifier for the entry.
	ID int64 `json:"id"`
	// UserID references the acting user; nil for system actions.
	UserID *int64 `json:"user_id,omitempty"`
	// Action is the operation tag, e.g. "approve_request".
	Action string `json:"action"`
	// Detail is free-text context for the action.
	Detail string `json:"detail,omitempty"`
	// CreatedAt orders the ledger.
	CreatedAt time.Time `json:"created_at"`
}
