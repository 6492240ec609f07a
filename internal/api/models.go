package api

import (
	"time"

	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/service"
)

// taskDateLayout is the wire format for task dates: a calendar date with
// no time component.
const taskDateLayout = "2006-01-02"

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user returned from login.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse is returned from a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListTasksQuery represents the query parameters accepted by GET /tasks.
// task_date is mandatory unless a search term is given; a search spans all
// dates. sort_by and sort_dir are deliberately unvalidated here: unknown
// values silently fall back rather than erroring.
type ListTasksQuery struct {
	TaskDate string `json:"task_date" validate:"required_without=Search,omitempty,datetime=2006-01-02"`
	Search   string `json:"search"    validate:"omitempty,max=255"`
	SortBy   string `json:"sort_by"`
	SortDir  string `json:"sort_dir"`
	Page     int    `json:"page"      validate:"omitempty,gte=1"`
}

// CreateTaskRequest represents the payload for creating a task.
type CreateTaskRequest struct {
	Statement string `json:"statement" validate:"required,max=500"`
	TaskDate  string `json:"task_date" validate:"required,datetime=2006-01-02"`
	Priority  *int   `json:"priority"  validate:"omitempty,gte=0,lte=3"`
}

// UpdateTaskRequest represents a partial update; absent fields stay unchanged.
type UpdateTaskRequest struct {
	Statement *string `json:"statement" validate:"omitempty,max=500"`
	Status    *string `json:"status"    validate:"omitempty,oneof=pending completed"`
	Priority  *int    `json:"priority"  validate:"omitempty,gte=0,lte=3"`
	TaskDate  *string `json:"task_date" validate:"omitempty,datetime=2006-01-02"`
}

// ReorderTaskItem assigns a new sort_order to one task.
// SortOrder is a pointer so that an explicit 0 is distinguishable from a
// missing field.
type ReorderTaskItem struct {
	ID        string `json:"id"         validate:"required,uuid"`
	SortOrder *int   `json:"sort_order" validate:"required,gte=0"`
}

// ReorderTasksRequest represents the payload for POST /tasks/reorder.
type ReorderTasksRequest struct {
	Tasks []ReorderTaskItem `json:"tasks" validate:"required,min=1,dive"`
}

// TaskResponse represents the response data for a task.
// is_completed is derived from status, not stored.
type TaskResponse struct {
	ID          string    `json:"id"`
	Statement   string    `json:"statement"`
	Status      string    `json:"status"`
	IsCompleted bool      `json:"is_completed"`
	Priority    int       `json:"priority"`
	TaskDate    string    `json:"task_date"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PageMeta carries pagination metadata for list responses.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// TaskListResponse is one page of tasks plus pagination metadata.
type TaskListResponse struct {
	Data []TaskResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		Statement:   task.Statement,
		Status:      string(task.Status),
		IsCompleted: task.IsCompleted(),
		Priority:    task.Priority,
		TaskDate:    task.TaskDate.Format(taskDateLayout),
		SortOrder:   task.SortOrder,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// pageToResponse converts a service.TaskPage to a TaskListResponse.
func pageToResponse(page *service.TaskPage) TaskListResponse {
	data := make([]TaskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		data = append(data, taskToResponse(task))
	}

	return TaskListResponse{
		Data: data,
		Meta: PageMeta{
			CurrentPage: page.CurrentPage,
			LastPage:    page.LastPage,
			PerPage:     page.PerPage,
			Total:       page.Total,
		},
	}
}
