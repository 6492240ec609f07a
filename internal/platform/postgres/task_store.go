package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/platform/logger"
	"github.com/daytask/daytask-api/internal/store"
	"github.com/google/uuid"
)

// taskColumns is the column list shared by every task SELECT.
const taskColumns = "id, user_id, statement, status, priority, task_date, sort_order, created_at, updated_at"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owning user doesn't exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Statement,
		task.Status,
		task.Priority,
		task.TaskDate,
		task.SortOrder,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return err
	}

	log.Debug("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.Int("sort_order", task.SortOrder))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its unique ID, regardless of owner.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// It persists the mutable fields of an existing task.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET statement = $1, status = $2, priority = $3, task_date = $4,
		    sort_order = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Statement,
		task.Status,
		task.Priority,
		task.TaskDate,
		task.SortOrder,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Debug("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
// It removes a task by its ID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete",
			slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Debug("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// ListForOwner implements store.TaskStore.ListForOwner
// It retrieves the owner's tasks matching the filter, ordered and paginated.
// Returns an empty slice when nothing matches.
func (s *PostgresTaskStore) ListForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := taskFilterClause(ownerID, filter)

	query := `SELECT ` + taskColumns + ` FROM tasks ` + where +
		` ORDER BY ` + orderClause(filter) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed tasks for owner",
		slog.String("user_id", ownerID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// CountForOwner implements store.TaskStore.CountForOwner
func (s *PostgresTaskStore) CountForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := taskFilterClause(ownerID, filter)

	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks `+where, args...).Scan(&total)
	if err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return 0, err
	}

	return total, nil
}

// MaxSortOrder implements store.TaskStore.MaxSortOrder
// It returns -1 when the owner has no tasks on the given date, so a caller
// computing "max + 1" places the first task at 0.
func (s *PostgresTaskStore) MaxSortOrder(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COALESCE(MAX(sort_order), -1)
		FROM tasks
		WHERE user_id = $1 AND task_date = $2
	`

	var max int
	err := s.db.QueryRowContext(ctx, query, ownerID, domain.NormalizeDate(date)).Scan(&max)
	if err != nil {
		log.Error("failed to get max sort order",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return 0, err
	}

	return max, nil
}

// UpdateSortOrder implements store.TaskStore.UpdateSortOrder
// The update is scoped to the owner; a task that does not exist or belongs
// to a different owner updates zero rows, which is deliberately not an error.
func (s *PostgresTaskStore) UpdateSortOrder(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	sortOrder int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET sort_order = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
	`

	_, err := s.db.ExecContext(ctx, query, sortOrder, time.Now().UTC(), taskID, ownerID)
	if err != nil {
		log.Error("failed to update sort order",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("user_id", ownerID.String()))
		return err
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status string

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Statement,
		&status,
		&task.Priority,
		&task.TaskDate,
		&task.SortOrder,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.TaskDate = domain.NormalizeDate(task.TaskDate)
	return &task, nil
}

// taskFilterClause builds the WHERE clause shared by ListForOwner and
// CountForOwner. A search drops the date scope entirely and spans all of
// the owner's dates.
func taskFilterClause(ownerID uuid.UUID, filter store.TaskFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{ownerID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("statement LIKE $%d", len(args)))
	} else if filter.Date != nil {
		args = append(args, domain.NormalizeDate(*filter.Date))
		conds = append(conds, fmt.Sprintf("task_date = $%d", len(args)))
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

// orderClause renders the ORDER BY expression from the filter, guarding the
// column against anything outside the whitelist. Values are interpolated
// rather than bound because ORDER BY does not accept placeholders.
func orderClause(filter store.TaskFilter) string {
	column := filter.SortBy
	switch column {
	case store.TaskSortBySortOrder, store.TaskSortByPriority,
		store.TaskSortByStatus, store.TaskSortByCreatedAt:
	default:
		column = store.TaskSortBySortOrder
	}

	direction := "ASC"
	if filter.SortDir == "desc" {
		direction = "DESC"
	}

	return column + " " + direction
}
