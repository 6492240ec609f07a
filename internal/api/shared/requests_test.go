package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flatRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type nestedItem struct {
	ID        string `json:"id"         validate:"required,uuid"`
	SortOrder *int   `json:"sort_order" validate:"required,gte=0"`
}

type nestedRequest struct {
	Tasks []nestedItem `json:"tasks" validate:"required,min=1,dive"`
}

func TestFieldErrorsUsesJSONNames(t *testing.T) {
	err := Validate.Struct(flatRequest{})
	require.Error(t, err)

	fieldErrors := FieldErrors(err)

	assert.Contains(t, fieldErrors, "email")
	assert.Contains(t, fieldErrors, "password")
	assert.Contains(t, fieldErrors["email"], "The email field is required.")
	assert.Contains(t, fieldErrors["password"], "The password field is required.")
}

func TestFieldErrorsEmailFormat(t *testing.T) {
	err := Validate.Struct(flatRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)

	fieldErrors := FieldErrors(err)
	assert.Contains(t, fieldErrors["email"], "The email field must be a valid email address.")
}

func TestFieldErrorsNestedKeys(t *testing.T) {
	err := Validate.Struct(nestedRequest{
		Tasks: []nestedItem{
			{ID: "4f9d2a00-0000-0000-0000-000000000000", SortOrder: intPtr(0)},
			{ID: "not-a-uuid"},
		},
	})
	require.Error(t, err)

	fieldErrors := FieldErrors(err)

	// Nested errors are keyed by dotted position in the batch.
	assert.Contains(t, fieldErrors, "tasks.1.id")
	assert.Contains(t, fieldErrors, "tasks.1.sort_order")
	assert.NotContains(t, fieldErrors, "tasks.0.id")
	assert.Contains(t, fieldErrors["tasks.1.sort_order"], "The sort_order field is required.")
}

func TestFieldErrorsNonValidatorError(t *testing.T) {
	fieldErrors := FieldErrors(errors.New("unexpected EOF"))

	assert.Contains(t, fieldErrors, "body")
	assert.Contains(t, fieldErrors["body"], "The request body is invalid.")
}

func intPtr(v int) *int { return &v }
