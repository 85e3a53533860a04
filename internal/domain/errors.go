package domain

import "errors"

// Engine error taxonomy. Every failure a client can recover from maps to
// one of these sentinels; handlers translate them to HTTP codes with
// errors.Is. Anything else is treated as a store failure and surfaces
// as a 500.
var (
	// ErrNotFound is returned when the target session, activity or
	// response does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden is returned on an ownership mismatch: the actor is not
	// the session's owner.
	ErrForbidden = errors.New("actor does not own this resource")
	// ErrInvalidState is returned when an operation is not valid from the
	// entity's current status, e.g. broadcasting a non-waiting activity.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrExpired is returned when a submission arrives after the deadline
	// or after a manual end.
	ErrExpired = errors.New("activity is no longer live")
	// ErrConflict is returned on a duplicate submission for the same
	// (activity, student) pair. The storage unique constraint is the
	// authoritative source of this signal.
	ErrConflict = errors.New("response already submitted")
	// ErrNotEnrolled is returned when a student polls or submits against a
	// subject they are not enrolled in.
	ErrNotEnrolled = errors.New("student not enrolled in subject")
)
