package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "email", "password_hash", "role", "created_at"}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	name := "John"
	email := "john@example.com"
	hash := "hashed_password"
	role := "user"

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users \(name, email, password_hash, role\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING id, name, email, password_hash, role, created_at`).
			WithArgs(name, email, hash, role).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(1, name, email, hash, role, time.Now()))

		u, err := repo.Create(ctx, name, email, hash, role)
		assert.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		assert.Equal(t, email, u.Email)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		_, err := repo.Create(ctx, name, email, hash, role)
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(errors.New("db error"))

		_, err := repo.Create(ctx, name, email, hash, role)
		assert.Error(t, err)
	})
}

func TestRepository_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	email := "john@example.com"

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(userRowColumns).
			AddRow(1, "John", email, "hashed", "admin", time.Now())

		mock.ExpectQuery(`SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = \$1`).
			WithArgs(email).
			WillReturnRows(rows)

		u, err := repo.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
			WithArgs(email).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByEmail(ctx, email)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WithArgs(uint(3)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(3, "Jane", "jane@example.com", "hashed", "user", time.Now()))

		u, err := repo.FindByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Jane", u.Name)
		assert.False(t, u.IsAdmin())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), 99)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_UpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	name := "Jane Doe"

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users SET name = COALESCE\(\$2, name\)`).
			WithArgs(uint(3), &name, nil, nil).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(3, name, "jane@example.com", "hashed", "user", time.Now()))

		u, err := repo.UpdateProfile(ctx, 3, &name, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, name, u.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users`).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateProfile(ctx, 3, &name, nil, nil)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		email := "taken@example.com"
		mock.ExpectQuery(`UPDATE users`).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.UpdateProfile(ctx, 3, nil, &email, nil)
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestRepository_SetRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET role = \$1 WHERE email = \$2`).
			WithArgs("admin", "boss@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetRole(ctx, "boss@example.com", "admin"))
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET role`).
			WithArgs("admin", "ghost@example.com").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetRole(ctx, "ghost@example.com", "admin"), ErrUserNotFound)
	})
}
