package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/platform/logger"
	"github.com/daytask/daytask-api/internal/store"
	"github.com/google/uuid"
)

// TaskPageSize is the fixed number of tasks per page of listing results.
const TaskPageSize = 50

// ListTasksParams describes a task listing request.
// When Search is set the Date scope is dropped and the listing spans all of
// the owner's dates; otherwise Date is required.
type ListTasksParams struct {
	Date    *time.Time
	Search  string
	SortBy  string
	SortDir string
	Page    int
}

// TaskPage is one page of listing results plus pagination metadata.
type TaskPage struct {
	Tasks       []*domain.Task
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int64
}

// CreateTaskParams carries the fields needed to create a task.
type CreateTaskParams struct {
	Statement string
	TaskDate  time.Time
	Priority  int
}

// UpdateTaskParams carries a partial update; nil fields are left unchanged.
type UpdateTaskParams struct {
	Statement *string
	Status    *domain.TaskStatus
	Priority  *int
	TaskDate  *time.Time
}

// SortOrderUpdate assigns a new sort_order to one task in a reorder batch.
type SortOrderUpdate struct {
	TaskID    uuid.UUID
	SortOrder int
}

// TaskService implements owner-scoped task querying and mutation.
type TaskService struct {
	taskStore store.TaskStore

	// db enables transactional sort-order assignment on create. It may be
	// nil when the service is backed by an in-memory store, in which case
	// the two steps run without a transaction.
	db *sql.DB

	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskStore store.TaskStore, db *sql.DB, log *slog.Logger) *TaskService {
	if taskStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskStore cannot be nil for TaskService")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskService")
	}

	return &TaskService{
		taskStore: taskStore,
		db:        db,
		logger:    log.With(slog.String("component", "task_service")),
	}
}

// List returns one page of the owner's tasks.
//
// A search spans all dates; without a search the date scope is mandatory.
// An unknown sort column silently falls back to sort_order, and any sort
// direction other than "desc" is treated as "asc".
func (s *TaskService) List(
	ctx context.Context,
	ownerID uuid.UUID,
	params ListTasksParams,
) (*TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if params.Search == "" && params.Date == nil {
		return nil, ErrDateRequired
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	filter := store.TaskFilter{
		Search:  params.Search,
		SortBy:  normalizeSortBy(params.SortBy),
		SortDir: normalizeSortDir(params.SortDir),
		Limit:   TaskPageSize,
		Offset:  (page - 1) * TaskPageSize,
	}
	if params.Search == "" {
		filter.Date = params.Date
	}

	tasks, err := s.taskStore.ListForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	total, err := s.taskStore.CountForOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	lastPage := int((total + TaskPageSize - 1) / TaskPageSize)
	if lastPage < 1 {
		lastPage = 1
	}

	log.Debug("listed tasks",
		slog.String("user_id", ownerID.String()),
		slog.Int("page", page),
		slog.Int64("total", total))

	return &TaskPage{
		Tasks:       tasks,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     TaskPageSize,
		Total:       total,
	}, nil
}

// Get returns a single task after checking ownership.
//
// Resolution is by id alone: a missing row yields store.ErrTaskNotFound
// before any ownership check, and an existing row owned by someone else
// yields ErrTaskNotOwned.
func (s *TaskService) Get(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.UserID != ownerID {
		return nil, ErrTaskNotOwned
	}

	return task, nil
}

// Create persists a new pending task at the end of the owner's list for
// that date: sort_order becomes the current maximum plus one, where "no
// existing rows" counts as a maximum of -1.
func (s *TaskService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	params CreateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, params.Statement, params.TaskDate, params.Priority)
	if err != nil {
		return nil, err
	}

	placeAndCreate := func(ctx context.Context, ts store.TaskStore) error {
		maxOrder, err := ts.MaxSortOrder(ctx, ownerID, task.TaskDate)
		if err != nil {
			return fmt.Errorf("failed to get max sort order: %w", err)
		}
		task.SortOrder = maxOrder + 1
		return ts.Create(ctx, task)
	}

	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return placeAndCreate(ctx, s.taskStore.WithTx(tx))
		})
	} else {
		err = placeAndCreate(ctx, s.taskStore)
	}
	if err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", ownerID.String()),
		slog.Int("sort_order", task.SortOrder))
	return task, nil
}

// Update applies a partial update to an owned task and returns the
// refreshed entity reflecting persisted state. Ownership rules match Get.
func (s *TaskService) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	params UpdateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if params.Statement != nil {
		task.Statement = *params.Statement
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.TaskDate != nil {
		task.TaskDate = domain.NormalizeDate(*params.TaskDate)
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, err
	}

	// Re-read so the caller sees exactly what was persisted.
	refreshed, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return refreshed, nil
}

// Delete removes an owned task. Deleting a missing id fails with
// store.ErrTaskNotFound; it never silently succeeds.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.Get(ctx, ownerID, taskID); err != nil {
		return err
	}

	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// Reorder persists drag-and-drop sort order for a batch of the owner's
// tasks. Each pair is an independent owner-scoped update: an entry
// referencing a task the owner does not have updates zero rows and is
// silently skipped. The batch is best-effort, not atomic; a mid-batch
// failure leaves earlier updates applied.
func (s *TaskService) Reorder(
	ctx context.Context,
	ownerID uuid.UUID,
	updates []SortOrderUpdate,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for i, update := range updates {
		if err := s.taskStore.UpdateSortOrder(ctx, ownerID, update.TaskID, update.SortOrder); err != nil {
			return fmt.Errorf("failed to apply sort order update %d: %w", i, err)
		}
	}

	log.Info("tasks reordered",
		slog.String("user_id", ownerID.String()),
		slog.Int("count", len(updates)))
	return nil
}

// normalizeSortBy maps anything outside the sort whitelist to sort_order.
func normalizeSortBy(sortBy string) string {
	switch sortBy {
	case store.TaskSortBySortOrder, store.TaskSortByPriority,
		store.TaskSortByStatus, store.TaskSortByCreatedAt:
		return sortBy
	default:
		return store.TaskSortBySortOrder
	}
}

// normalizeSortDir treats anything other than "desc" as "asc".
func normalizeSortDir(sortDir string) string {
	if sortDir == "desc" {
		return "desc"
	}
	return "asc"
}
