package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrForeignKey is returned when a write references a missing parent row.
	ErrForeignKey = errors.New("foreign key violation")
)
