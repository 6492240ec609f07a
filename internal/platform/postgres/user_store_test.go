package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daytask/daytask-api/internal/domain"
	"github.com/daytask/daytask-api/internal/store"
)

func newMockUserStore(t *testing.T) (*PostgresUserStore, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	userStore := NewPostgresUserStore(db, nil)
	cleanup := func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	}
	return userStore, mock, cleanup
}

func validUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Ada Lovelace", "ada@example.com", "hashed-password")
	require.NoError(t, err)
	return user
}

func userRows(user *domain.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "hashed_password", "created_at", "updated_at",
	}).AddRow(
		user.ID.String(), user.Name, user.Email, user.HashedPassword,
		user.CreatedAt, user.UpdatedAt,
	)
}

func TestUserStoreCreate(t *testing.T) {
	userStore, mock, cleanup := newMockUserStore(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := userStore.Create(context.Background(), validUser(t))
	assert.NoError(t, err)
}

func TestUserStoreCreateDuplicateEmail(t *testing.T) {
	userStore, mock, cleanup := newMockUserStore(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolationCode})

	err := userStore.Create(context.Background(), validUser(t))
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUserStoreGetByEmail(t *testing.T) {
	userStore, mock, cleanup := newMockUserStore(t)
	defer cleanup()

	user := validUser(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs(user.Email).
		WillReturnRows(userRows(user))

	got, err := userStore.GetByEmail(context.Background(), user.Email)
	require.NoError(t, err)

	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.HashedPassword, got.HashedPassword)
}

func TestUserStoreGetByEmailNotFound(t *testing.T) {
	userStore, mock, cleanup := newMockUserStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "hashed_password", "created_at", "updated_at",
		}))

	_, err := userStore.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStoreGetByIDNotFound(t *testing.T) {
	userStore, mock, cleanup := newMockUserStore(t)
	defer cleanup()

	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "hashed_password", "created_at", "updated_at",
		}))

	_, err := userStore.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
