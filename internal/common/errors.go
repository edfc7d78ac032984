// Package common defines sentinel errors shared by the repositories, services
// and the interactive controller. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already in use")

	// Recoverable inside a retry loop; each one consumes a try.
	ErrValidation      = errors.New("validation error")
	ErrAccountNotFound = errors.New("email address not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrAccountLocked   = errors.New("account locked, please try again later")

	// Surfaced to the caller immediately.
	ErrInvalidAction    = errors.New("invalid action")
	ErrMaxTriesExceeded = errors.New("max attempts exceeded, please try again later")

	// Storage is unreachable, timed out or busy. Not retried by the core.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
