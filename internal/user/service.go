package user

import (
	"context"
	"errors"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

// TokenIssuer signs access tokens; *auth.TokenManager satisfies it.
type TokenIssuer interface {
	Generate(userID uint, email, role string) (string, error)
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	GetMe(ctx context.Context, userID uint) (*User, error)
	UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*AuthResponse, error)
	PromoteToAdmin(ctx context.Context, email string) error
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

// Register always creates a plain user; admins are promoted out of band.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return nil, ErrMissingName
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, name, email, hashed, utils.RoleUser)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("register service completed", zap.Uint("user_id", u.ID))
	return newAuthResponse(u, token), nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, ErrMissingPassword
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login with unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPasswordHash(input.Password, u.PasswordHash) {
		log.Info("password mismatch", zap.Uint("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return newAuthResponse(u, token), nil
}

func (s *service) GetMe(ctx context.Context, userID uint) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile returns a fresh token because the email claim may change.
func (s *service) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*AuthResponse, error) {
	var name, email, hash *string

	if input.Name != nil {
		n := strings.TrimSpace(*input.Name)
		if n == "" {
			return nil, ErrMissingName
		}
		name = &n
	}
	if input.Email != nil {
		e := normalizeEmail(*input.Email)
		if err := validateEmail(e); err != nil {
			return nil, err
		}
		email = &e
	}
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		h, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	u, err := s.repo.UpdateProfile(ctx, userID, name, email, hash)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return newAuthResponse(u, token), nil
}

func (s *service) PromoteToAdmin(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.repo.SetRole(ctx, email, utils.RoleAdmin); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("user promoted to admin", zap.String("email", email))
	return nil
}
