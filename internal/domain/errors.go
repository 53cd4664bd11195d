package domain

import "errors"

// Domain errors returned by the engine, the planner service and repository implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTaskNotFound indicates the specified task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskExists indicates a task with the same ID is already stored.
	ErrTaskExists = errors.New("task already exists")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")
)

// Validation errors.
var (
	ErrTextRequired      = errors.New("task text is required")
	ErrTextTooLong       = errors.New("task text must be 500 characters or less")
	ErrDeadlineRequired  = errors.New("task deadline is required")
	ErrDeadlineInPast    = errors.New("task deadline cannot be in the past")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidRepetition = errors.New("invalid repetition")
	ErrInvalidWeekday    = errors.New("weekday index must be between 0 and 6")
	ErrInvalidFilter     = errors.New("invalid filter")
)

// Engine errors.
var (
	// ErrNotAnOccurrence indicates a date is not an occurrence of the task,
	// so it cannot carry a completion or a note.
	ErrNotAnOccurrence = errors.New("date is not an occurrence of the task")

	// ErrInvalidRange indicates a projection range whose end precedes its start.
	ErrInvalidRange = errors.New("invalid date range")
)
