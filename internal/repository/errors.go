package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a uniqueness constraint is hit,
	// e.g. a second vehicle with the same plate in one tenant.
	ErrDuplicate = errors.New("duplicate entity")

	// ErrScheduleOverlap is returned when the database's exclusion
	// constraint rejects an active trip whose interval overlaps another
	// active trip on the same vehicle. It backs the in-service conflict
	// scan against concurrent writers.
	ErrScheduleOverlap = errors.New("active trip interval overlaps")
)
