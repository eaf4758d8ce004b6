package models

import "errors"

// Sentinel errors forming the user-facing error taxonomy. Every rejected
// operation maps to exactly one of these; storage failures propagate
// separately as opaque infrastructure errors.
var (
	// ErrInvalidCredentials is returned when the username is unknown or
	// the password does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when no valid token accompanies a call.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when an authenticated principal lacks the
	// capability for an operation on an existing resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a requested state change does
	// not follow the lifecycle graph, including retries on terminal states.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidArgument is returned for malformed input, e.g. an empty
	// secret value on approve.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState is returned when a secret is requested before the
	// request reached approved.
	ErrInvalidState = errors.New("secret not available")
)
