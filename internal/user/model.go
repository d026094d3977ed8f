package user

import (
	"time"

	"storefront-be/internal/utils"
)

const MinPasswordLength = 6

type User struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == utils.RoleAdmin
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileInput leaves nil fields unchanged.
type UpdateProfileInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// AuthResponse is what register, login and profile updates answer with.
type AuthResponse struct {
	ID    uint   `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token,omitempty"`
}

func newAuthResponse(u *User, token string) *AuthResponse {
	return &AuthResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Token: token,
	}
}
