package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation is a complete in-memory store with the same filtering,
// ordering, and pagination behavior as the SQL-backed store, so service
// tests can exercise real query semantics without a database.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, task *domain.Task) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	UpdateFn          func(ctx context.Context, task *domain.Task) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error
	ListForOwnerFn    func(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error)
	CountForOwnerFn   func(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter) (int64, error)
	MaxSortOrderFn    func(ctx context.Context, ownerID uuid.UUID, date time.Time) (int, error)
	UpdateSortOrderFn func(ctx context.Context, ownerID, taskID uuid.UUID, sortOrder int) error

	// Forced errors for default implementation
	CreateError error
	UpdateError error

	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.tasks[id]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	copied := *task
	return &copied, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	if m.UpdateError != nil {
		return m.UpdateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[task.ID]; !exists {
		return store.ErrTaskNotFound
	}

	copied := *task
	copied.UpdatedAt = time.Now().UTC()
	m.tasks[task.ID] = &copied
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[id]; !exists {
		return store.ErrTaskNotFound
	}

	delete(m.tasks, id)
	return nil
}

// ListForOwner implements the TaskStore interface
func (m *MockTaskStore) ListForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	if m.ListForOwnerFn != nil {
		return m.ListForOwnerFn(ctx, ownerID, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	matched := m.matchingTasks(ownerID, filter)
	sortTasks(matched, filter.SortBy, filter.SortDir)

	if filter.Offset >= len(matched) {
		return []*domain.Task{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	result := make([]*domain.Task, len(matched))
	for i, task := range matched {
		copied := *task
		result[i] = &copied
	}
	return result, nil
}

// CountForOwner implements the TaskStore interface
func (m *MockTaskStore) CountForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.TaskFilter,
) (int64, error) {
	if m.CountForOwnerFn != nil {
		return m.CountForOwnerFn(ctx, ownerID, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.matchingTasks(ownerID, filter))), nil
}

// MaxSortOrder implements the TaskStore interface
func (m *MockTaskStore) MaxSortOrder(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
) (int, error) {
	if m.MaxSortOrderFn != nil {
		return m.MaxSortOrderFn(ctx, ownerID, date)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	max := -1
	for _, task := range m.tasks {
		if task.UserID == ownerID && sameDate(task.TaskDate, date) && task.SortOrder > max {
			max = task.SortOrder
		}
	}
	return max, nil
}

// UpdateSortOrder implements the TaskStore interface
func (m *MockTaskStore) UpdateSortOrder(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	sortOrder int,
) error {
	if m.UpdateSortOrderFn != nil {
		return m.UpdateSortOrderFn(ctx, ownerID, taskID, sortOrder)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, exists := m.tasks[taskID]
	if !exists || task.UserID != ownerID {
		// Zero rows updated is not an error.
		return nil
	}

	task.SortOrder = sortOrder
	task.UpdatedAt = time.Now().UTC()
	return nil
}

// WithTx implements the TaskStore interface. The mock has no transaction
// concept, so it returns the same store.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// matchingTasks returns the owner's tasks matching the filter scope.
// Callers must hold m.mu.
func (m *MockTaskStore) matchingTasks(ownerID uuid.UUID, filter store.TaskFilter) []*domain.Task {
	var matched []*domain.Task
	for _, task := range m.tasks {
		if task.UserID != ownerID {
			continue
		}
		if filter.Search != "" {
			if !strings.Contains(task.Statement, filter.Search) {
				continue
			}
		} else if filter.Date != nil && !sameDate(task.TaskDate, *filter.Date) {
			continue
		}
		matched = append(matched, task)
	}
	return matched
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sortTasks(tasks []*domain.Task, sortBy, sortDir string) {
	desc := sortDir == "desc"
	sort.SliceStable(tasks, func(i, j int) bool {
		less := false
		switch sortBy {
		case store.TaskSortByPriority:
			less = tasks[i].Priority < tasks[j].Priority
		case store.TaskSortByStatus:
			less = tasks[i].Status < tasks[j].Status
		case store.TaskSortByCreatedAt:
			less = tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		default:
			less = tasks[i].SortOrder < tasks[j].SortOrder
		}
		if desc {
			return !less && !tasksEqual(tasks[i], tasks[j], sortBy)
		}
		return less
	})
}

func tasksEqual(a, b *domain.Task, sortBy string) bool {
	switch sortBy {
	case store.TaskSortByPriority:
		return a.Priority == b.Priority
	case store.TaskSortByStatus:
		return a.Status == b.Status
	case store.TaskSortByCreatedAt:
		return a.CreatedAt.Equal(b.CreatedAt)
	default:
		return a.SortOrder == b.SortOrder
	}
}
