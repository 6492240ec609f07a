package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/daytask/daytask-api/internal/domain"
	"github.com/google/uuid"
)

// Sort columns accepted by TaskStore.ListForOwner. Anything outside this
// whitelist must fall back to sorting by sort_order.
const (
	TaskSortBySortOrder = "sort_order"
	TaskSortByPriority  = "priority"
	TaskSortByStatus    = "status"
	TaskSortByCreatedAt = "created_at"
)

// TaskFilter describes the owner-scoped view of tasks to retrieve.
// When Search is non-empty the Date scope is dropped entirely and the
// query spans all of the owner's dates.
type TaskFilter struct {
	// Date restricts results to a single task_date. Ignored when Search
	// is set; nil otherwise means no date restriction.
	Date *time.Time

	// Search matches statement by substring, using the database's default
	// text comparison.
	Search string

	// SortBy is one of the TaskSortBy* columns.
	SortBy string

	// SortDir is "asc" or "desc".
	SortDir string

	// Limit and Offset paginate the result set.
	Limit  int
	Offset int
}

// TaskStore defines the interface for task data persistence.
// Every read and write is scoped to a single owner where the operation is
// owner-scoped by contract; GetByID intentionally looks up by id alone so
// callers can distinguish "missing" from "not yours".
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors if the task data is invalid, and
	// ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, regardless of owner.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists the mutable fields of an existing task
	// (statement, status, priority, task date, sort order).
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForOwner retrieves the owner's tasks matching the filter,
	// ordered and paginated per the filter settings.
	ListForOwner(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// CountForOwner returns the total number of the owner's tasks matching
	// the filter, ignoring Limit and Offset.
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) (int64, error)

	// MaxSortOrder returns the highest sort_order among the owner's tasks
	// on the given date, or -1 when the owner has no tasks on that date.
	MaxSortOrder(ctx context.Context, ownerID uuid.UUID, date time.Time) (int, error)

	// UpdateSortOrder sets the sort_order of the task with the given ID,
	// scoped to the owner. A task that does not exist or belongs to a
	// different owner updates zero rows; that is not an error.
	UpdateSortOrder(ctx context.Context, ownerID, taskID uuid.UUID, sortOrder int) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically via RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}
