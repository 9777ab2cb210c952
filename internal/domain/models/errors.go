// internal/domain/models/errors.go
package models

import "errors"

var (
	// ErrNotFound is returned when a referenced question or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrWriteConflict is returned when a conditional assignment write no longer
	// matches the stored document (someone else assigned it first, or the
	// chosen assignee has since declined).
	ErrWriteConflict = errors.New("assignment write conflict")

	// ErrStoreUnavailable wraps network and timeout failures talking to the store.
	ErrStoreUnavailable = errors.New("store unavailable")
)
