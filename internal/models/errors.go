package models

import "errors"

// Error taxonomy shared by every service in the engine. Services wrap these
// with context; the HTTP layer maps them onto response codes.
var (
	// ErrInvalidArgument indicates malformed input, e.g. a rating outside 1-5
	// or a source URL no pattern recognizes.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates the target entity is absent or, for
	// non-moderators, soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller is authenticated but lacks the role
	// or ownership the operation requires.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a state-machine violation, such as re-actioning a
	// resolved flag or losing a concurrent transition.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable indicates a downstream collaborator failure.
	ErrUnavailable = errors.New("unavailable")
)
