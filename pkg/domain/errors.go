package domain

import "errors"

// ErrAccessDenied is returned when the access gate rejects a user.
var ErrAccessDenied = errors.New("access denied")

// ErrNoActiveSession is returned when a choice is submitted without a running wizard.
var ErrNoActiveSession = errors.New("no active session")

// ErrStepMismatch is returned when a choice targets a step other than the pending one.
var ErrStepMismatch = errors.New("step mismatch")

// ErrUnknownOption is returned when a value is not part of the vocabulary of its step.
var ErrUnknownOption = errors.New("unknown option")

// ErrInvariantViolation signals a catalog/session inconsistency. It is a programming
// or data error and is never recovered by re-prompting.
var ErrInvariantViolation = errors.New("invariant violation")

// ErrNoHistory is returned when exporting a user without any history record.
var ErrNoHistory = errors.New("no history")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// IsValidation reports whether err is malformed client input that should be
// answered with a retry prompt.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrStepMismatch) ||
		errors.Is(err, ErrUnknownOption)
}
