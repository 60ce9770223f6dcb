package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrExerciseMismatch   = errors.New("no scheduled day matches today")
	ErrDayRolledOver      = errors.New("day rolled over during update")
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrBestEffortItem marks a single sweep item that failed and was skipped.
	ErrBestEffortItem = errors.New("sweep item failed")
)
