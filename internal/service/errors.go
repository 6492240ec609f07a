package service

import "errors"

// Common service-level errors
var (
	// ErrTaskNotOwned is returned when an authenticated user attempts to
	// read or mutate a task that belongs to another user. The task exists;
	// the caller simply may not touch it.
	ErrTaskNotOwned = errors.New("task not owned by user")

	// ErrDateRequired is returned when a task listing has neither a date
	// scope nor a search term.
	ErrDateRequired = errors.New("task date is required when not searching")
)
