package user

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	UpdateProfile(ctx context.Context, id uint, name, email, passwordHash *string) (*User, error)
	SetRole(ctx context.Context, email, role string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = "id, name, email, password_hash, role, created_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash, role string) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	u, err := scanUser(r.db.QueryRowContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING "+userColumns,
		name, email, passwordHash, role,
	))
	if isUniqueViolation(err) {
		return nil, ErrEmailExists
	}
	if err != nil {
		log.Error("db: failed to insert user",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}
	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile overwrites only the non-nil fields.
func (r *repository) UpdateProfile(ctx context.Context, id uint, name, email, passwordHash *string) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProfile"),
		zap.Uint("user_id", id),
	)

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    password_hash = COALESCE($4, password_hash)
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, name, email, passwordHash))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrUserNotFound
	case isUniqueViolation(err):
		return nil, ErrEmailExists
	case err != nil:
		log.Error("failed to update profile", zap.Error(err))
		return nil, err
	}

	log.Info("profile updated")
	return u, nil
}

func (r *repository) SetRole(ctx context.Context, email, role string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET role = $1 WHERE email = $2", role, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
