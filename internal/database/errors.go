package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database file is
	// missing and creation was not requested.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrInvalidRun is returned when a summary without a run ID is saved.
	ErrInvalidRun = errors.New("run summary must have a run ID")

	// ErrDuplicateRun is returned when a run ID is saved twice.
	ErrDuplicateRun = errors.New("run already stored")
)
