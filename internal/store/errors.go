package store

import "errors"

var (
	// ErrConflict reports that the requested slot is already held by an active appointment.
	ErrConflict = errors.New("slot conflict")
	ErrNotFound = errors.New("not found")
)
