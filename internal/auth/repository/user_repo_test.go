package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vox-librorum/vox-desk/internal/auth/domain"
)

func newMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (id, username, email, password_hash, role)")).
			WithArgs("u-1", "nova", nil, "hash", "archivist").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		u := &domain.User{ID: "u-1", Username: "nova", PasswordHash: "hash", Role: "archivist"}
		require.NoError(t, repo.Create(ctx, u))
		assert.Equal(t, now, u.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &domain.User{ID: "u-2", Username: "nova", Email: "n@vox.test", PasswordHash: "h", Role: "archivist"})
		assert.ErrorIs(t, err, domain.ErrDuplicateUser)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	cols := []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}

	t.Run("found with null email", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WithArgs("nova").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("u-1", "nova", nil, "hash", "archivist", time.Now(), time.Now()))

		u, err := repo.GetByUsername(ctx, "nova")
		require.NoError(t, err)
		assert.Equal(t, "u-1", u.ID)
		assert.Empty(t, u.Email)
		assert.Equal(t, "hash", u.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "a", Username: "nova", Email: "nova@vox.test"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "b", Username: "nova"}), domain.ErrDuplicateUser)
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "c", Username: "ember", Email: "NOVA@vox.test"}), domain.ErrDuplicateUser)

	u, err := repo.GetByUsername(ctx, "nova")
	require.NoError(t, err)
	assert.Equal(t, "a", u.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
