package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the completion state of a task.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// IsValid checks if the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Statement and priority constraints for tasks.
const (
	MaxStatementLength = 500
	MinPriority        = 0
	MaxPriority        = 3
)

// Common task validation errors
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwner     = errors.New("task owner ID cannot be empty")
	ErrEmptyStatement     = errors.New("statement cannot be empty")
	ErrStatementTooLong   = errors.New("statement must be at most 500 characters")
	ErrEmptyTaskDate      = errors.New("task date cannot be empty")
	ErrNegativeSortOrder  = errors.New("sort order cannot be negative")
	ErrPriorityOutOfRange = errors.New("priority must be between 0 and 3")
)

// Task represents a single dated to-do item owned by a user.
// SortOrder defines the display position among the owner's tasks
// sharing the same TaskDate; it is unique only by convention.
type Task struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Statement string     `json:"statement"`
	Status    TaskStatus `json:"status"`
	Priority  int        `json:"priority"`
	TaskDate  time.Time  `json:"task_date"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewTask creates a new pending Task for the given owner.
// It generates a new UUID for the task ID and sets the creation/update timestamps.
// The caller is responsible for assigning SortOrder before persisting.
// Returns an error if validation fails.
func NewTask(userID uuid.UUID, statement string, taskDate time.Time, priority int) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Statement: statement,
		Status:    TaskStatusPending,
		Priority:  priority,
		TaskDate:  NormalizeDate(taskDate),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}

	if t.Statement == "" {
		return ErrEmptyStatement
	}

	// Characters, not bytes: a multibyte statement may be well under the
	// limit while its byte length is far over it.
	if utf8.RuneCountInString(t.Statement) > MaxStatementLength {
		return ErrStatementTooLong
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return ErrPriorityOutOfRange
	}

	if t.TaskDate.IsZero() {
		return ErrEmptyTaskDate
	}

	if t.SortOrder < 0 {
		return ErrNegativeSortOrder
	}

	return nil
}

// IsCompleted reports whether the task has been marked completed.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// NormalizeDate strips the time component from a calendar date,
// keeping only year/month/day in UTC. Task dates carry no time of day.
func NormalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
