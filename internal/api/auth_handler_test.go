package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daytask/daytask-api/internal/api"
	"github.com/daytask/daytask-api/internal/api/shared"
	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/mocks"
)

func newLoginHandler(
	t *testing.T,
	userStore *mocks.MockUserStore,
	verifier *mocks.MockPasswordVerifier,
) *api.AuthHandler {
	t.Helper()

	jwtService := &mocks.MockJWTService{Token: "issued-token"}
	return api.NewAuthHandler(userStore, jwtService, verifier, slog.Default())
}

func postLogin(t *testing.T, handler *api.AuthHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	userStore := mocks.NewMockUserStore()
	user, err := domain.NewUser("Ada Lovelace", "ada@example.com", "hashed-password")
	require.NoError(t, err)
	require.NoError(t, userStore.Create(context.Background(), user))

	handler := newLoginHandler(t, userStore, &mocks.MockPasswordVerifier{ShouldSucceed: true})

	rec := postLogin(t, handler, map[string]string{
		"email":    "ada@example.com",
		"password": "correct-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "issued-token", resp.Token)
	assert.Equal(t, user.ID.String(), resp.User.ID)
	assert.Equal(t, "Ada Lovelace", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
}

func TestLoginUnknownEmail(t *testing.T) {
	verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
	handler := newLoginHandler(t, mocks.NewMockUserStore(), verifier)

	rec := postLogin(t, handler, map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Invalid credentials.", resp.Message)

	// The password must not even be checked for an unknown email.
	assert.Equal(t, 0, verifier.CompareCallCount)
}

func TestLoginWrongPassword(t *testing.T) {
	userStore := mocks.NewMockUserStore()
	user, err := domain.NewUser("Ada Lovelace", "ada@example.com", "hashed-password")
	require.NoError(t, err)
	require.NoError(t, userStore.Create(context.Background(), user))

	handler := newLoginHandler(t, userStore, &mocks.MockPasswordVerifier{ShouldSucceed: false})

	rec := postLogin(t, handler, map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	// Same message as for an unknown email so the two are indistinguishable.
	assert.Equal(t, "Invalid credentials.", resp.Message)
}

func TestLoginValidation(t *testing.T) {
	handler := newLoginHandler(t, mocks.NewMockUserStore(), &mocks.MockPasswordVerifier{})

	rec := postLogin(t, handler, map[string]string{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "The given data was invalid.", resp.Message)
	assert.Contains(t, resp.Errors, "email")
	assert.Contains(t, resp.Errors, "password")
	assert.Contains(t, resp.Errors["email"], "The email field is required.")

	// A malformed email fails the format rule.
	rec = postLogin(t, handler, map[string]string{
		"email":    "not-an-email",
		"password": "whatever",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Errors["email"], "The email field must be a valid email address.")
}

func TestLogout(t *testing.T) {
	handler := newLoginHandler(t, mocks.NewMockUserStore(), &mocks.MockPasswordVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, uuid.New())
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.MessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Logged out.", resp.Message)
}
