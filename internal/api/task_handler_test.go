package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daytask/daytask-api/internal/api"
	apiMiddleware "github.com/daytask/daytask-api/internal/api/middleware"
	"github.com/daytask/daytask-api/internal/api/shared"
	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/mocks"
	"github.com/daytask/daytask-api/internal/service"
	"github.com/daytask/daytask-api/internal/service/auth"
)

const testToken = "test-token"

// testEnv bundles the pieces handler tests need: a routed handler, the
// authenticated user, and direct service access for seeding data.
type testEnv struct {
	router      http.Handler
	userID      uuid.UUID
	taskService *service.TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	taskService := service.NewTaskService(taskStore, nil, slog.Default())

	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			if tokenString != testToken {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, Subject: userID.String()}, nil
		},
	}

	taskHandler := api.NewTaskHandler(taskService, slog.Default())
	authMiddleware := apiMiddleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Post("/tasks", taskHandler.CreateTask)
		r.Post("/tasks/reorder", taskHandler.ReorderTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
	})

	return &testEnv{
		router:      r,
		userID:      userID,
		taskService: taskService,
	}
}

// doJSON performs an authenticated request with an optional JSON body and
// returns the recorded response.
func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedTask(t *testing.T, statement string, date time.Time) *domain.Task {
	t.Helper()
	task, err := e.taskService.Create(context.Background(), e.userID, service.CreateTaskParams{
		Statement: statement,
		TaskDate:  date,
	})
	require.NoError(t, err)
	return task
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestTaskRoutesRequireAuthentication(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodPost, "/tasks/reorder"},
		{http.MethodGet, "/tasks/" + uuid.New().String()},
		{http.MethodPut, "/tasks/" + uuid.New().String()},
		{http.MethodDelete, "/tasks/" + uuid.New().String()},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			// No Authorization header at all.
			req := httptest.NewRequest(route.method, route.path, nil)
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			// A token the JWT service rejects.
			req = httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set("Authorization", "Bearer bogus")
			rec = httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/tasks", map[string]interface{}{
		"statement": "write the quarterly report",
		"task_date": "2025-06-14",
		"priority":  2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var task api.TaskResponse
	decodeBody(t, rec, &task)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "write the quarterly report", task.Statement)
	assert.Equal(t, "pending", task.Status)
	assert.False(t, task.IsCompleted)
	assert.Equal(t, 2, task.Priority)
	assert.Equal(t, "2025-06-14", task.TaskDate)
	assert.Equal(t, 0, task.SortOrder)

	// Second task on the same date lands after the first.
	rec = env.doJSON(t, http.MethodPost, "/tasks", map[string]interface{}{
		"statement": "review pull requests",
		"task_date": "2025-06-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	decodeBody(t, rec, &task)
	assert.Equal(t, 1, task.SortOrder)
	assert.Equal(t, 0, task.Priority, "priority defaults to 0 when omitted")
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/tasks", map[string]interface{}{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp shared.ErrorResponse
	decodeBody(t, rec, &resp)

	assert.Equal(t, "The given data was invalid.", resp.Message)
	assert.Contains(t, resp.Errors, "statement")
	assert.Contains(t, resp.Errors, "task_date")
	assert.Contains(t, resp.Errors["statement"], "The statement field is required.")

	// Malformed date.
	rec = env.doJSON(t, http.MethodPost, "/tasks", map[string]interface{}{
		"statement": "bad date",
		"task_date": "14/06/2025",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Errors, "task_date")

	// Priority outside the allowed range.
	rec = env.doJSON(t, http.MethodPost, "/tasks", map[string]interface{}{
		"statement": "bad priority",
		"task_date": "2025-06-14",
		"priority":  9,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListTasks(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	env.seedTask(t, "first", date)
	env.seedTask(t, "second", date)
	env.seedTask(t, "another day", date.AddDate(0, 0, 1))

	rec := env.doJSON(t, http.MethodGet, "/tasks?task_date=2025-06-14", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskListResponse
	decodeBody(t, rec, &resp)

	require.Len(t, resp.Data, 2)
	assert.Equal(t, "first", resp.Data[0].Statement)
	assert.Equal(t, "second", resp.Data[1].Statement)
	assert.Equal(t, 1, resp.Meta.CurrentPage)
	assert.Equal(t, 1, resp.Meta.LastPage)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestListTasksRequiresDateUnlessSearching(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	env.seedTask(t, "buy milk", date)
	env.seedTask(t, "buy bread", date.AddDate(0, 0, 3))

	// No date, no search: 422.
	rec := env.doJSON(t, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp shared.ErrorResponse
	decodeBody(t, rec, &errResp)
	assert.Contains(t, errResp.Errors, "task_date")

	// A search spans all dates, even combined with a date.
	rec = env.doJSON(t, http.MethodGet, "/tasks?task_date=2025-06-14&search=buy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskListResponse
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Data, 2)
}

func TestGetTask(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	task := env.seedTask(t, "mine", date)

	rec := env.doJSON(t, http.MethodGet, "/tasks/"+task.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, task.ID.String(), resp.ID)

	// Missing task.
	rec = env.doJSON(t, http.MethodGet, "/tasks/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A malformed id is indistinguishable from a missing task.
	rec = env.doJSON(t, http.MethodGet, "/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTaskOwnedBySomeoneElse(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	// Seed a task for a different owner directly through the service.
	foreign, err := env.taskService.Create(context.Background(), uuid.New(), service.CreateTaskParams{
		Statement: "not yours",
		TaskDate:  date,
	})
	require.NoError(t, err)

	rec := env.doJSON(t, http.MethodGet, "/tasks/"+foreign.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp shared.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "You do not own this task.", resp.Message)
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	task := env.seedTask(t, "original", date)

	rec := env.doJSON(t, http.MethodPut, "/tasks/"+task.ID.String(), map[string]interface{}{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskResponse
	decodeBody(t, rec, &resp)

	assert.Equal(t, "completed", resp.Status)
	assert.True(t, resp.IsCompleted)
	assert.Equal(t, "original", resp.Statement, "unspecified fields stay unchanged")

	// An unknown status is rejected before reaching the service.
	rec = env.doJSON(t, http.MethodPut, "/tasks/"+task.ID.String(), map[string]interface{}{
		"status": "archived",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp shared.ErrorResponse
	decodeBody(t, rec, &errResp)
	assert.Contains(t, errResp.Errors, "status")
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	task := env.seedTask(t, "short-lived", date)

	rec := env.doJSON(t, http.MethodDelete, "/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting again reports not-found.
	rec = env.doJSON(t, http.MethodDelete, "/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorderTasks(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	first := env.seedTask(t, "first", date)
	second := env.seedTask(t, "second", date)

	rec := env.doJSON(t, http.MethodPost, "/tasks/reorder", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"id": first.ID.String(), "sort_order": 1},
			{"id": second.ID.String(), "sort_order": 0},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.MessageResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Order saved.", resp.Message)

	// Verify the swap took effect.
	listRec := env.doJSON(t, http.MethodGet, "/tasks?task_date=2025-06-14", nil)
	require.Equal(t, http.StatusOK, listRec.Code)

	var listResp api.TaskListResponse
	decodeBody(t, listRec, &listResp)
	require.Len(t, listResp.Data, 2)
	assert.Equal(t, second.ID.String(), listResp.Data[0].ID)
	assert.Equal(t, first.ID.String(), listResp.Data[1].ID)
}

func TestReorderTasksValidation(t *testing.T) {
	env := newTestEnv(t)

	// Empty batch.
	rec := env.doJSON(t, http.MethodPost, "/tasks/reorder", map[string]interface{}{
		"tasks": []map[string]interface{}{},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Nested field errors are keyed by their position in the batch.
	rec = env.doJSON(t, http.MethodPost, "/tasks/reorder", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"id": uuid.New().String()},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp shared.ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Errors, "tasks.0.sort_order")
}

func TestReorderTasksIgnoresForeignEntries(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	foreignOwner := uuid.New()
	foreign, err := env.taskService.Create(context.Background(), foreignOwner, service.CreateTaskParams{
		Statement: "not yours",
		TaskDate:  date,
	})
	require.NoError(t, err)

	rec := env.doJSON(t, http.MethodPost, "/tasks/reorder", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"id": foreign.ID.String(), "sort_order": 5},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.taskService.Get(context.Background(), foreignOwner, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SortOrder, "foreign task must be untouched")
}

func TestListTasksPagination(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	for i := 0; i < service.TaskPageSize+1; i++ {
		env.seedTask(t, fmt.Sprintf("task %d", i), date)
	}

	rec := env.doJSON(t, http.MethodGet, "/tasks?task_date=2025-06-14&page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskListResponse
	decodeBody(t, rec, &resp)

	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Meta.CurrentPage)
	assert.Equal(t, 2, resp.Meta.LastPage)
	assert.Equal(t, int64(service.TaskPageSize+1), resp.Meta.Total)
}
