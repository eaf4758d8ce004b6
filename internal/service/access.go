package service

import "github.com/keyharmony/keyharmony/internal/models"

// The access gate: pure capability checks over (principal, resource).
// Callers translate a false result into models.ErrForbidden, never
// models.ErrNotFound, so authorization failures stay distinguishable
// from absence.

// CanListAllRequests reports whether u may list other users' requests.
func CanListAllRequests(u *models.User) bool {
	return u.IsAdmin
}

// CanTriage reports whether u may review, escalate, approve or deny a
// request. Triage is modeled as the administrator capability.
func CanTriage(u *models.User) bool {
	return u.IsAdmin
}

// CanViewSecret reports whether u may read the secret resolved for req:
// the original requester, or an administrator.
func CanViewSecret(u *models.User, req models.SecretRequest) bool {
	return u.IsAdmin || u.ID == req.RequesterID
}

// CanViewAudit reports whether u may read the audit ledger.
func CanViewAudit(u *models.User) bool {
	return u.IsAdmin
}
