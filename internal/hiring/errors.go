package hiring

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an application, job, user, note or
	// interview round is missing. Wrapped errors read "<what> not found".
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the applicant already has a live
	// application for the job.
	ErrConflict = errors.New("application already exists for this job")

	// ErrForbidden is returned when the caller may not read or mutate the
	// application.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// NotFound returns an error matching ErrNotFound for the named entity, e.g.
// "interview not found".
func NotFound(what string) error { return fmt.Errorf("%s %w", what, ErrNotFound) }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
