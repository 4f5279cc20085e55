package dto

import (
	"time"

	"github.com/spec-kit/identity-service/internal/domain"
)

// UserResponse is the outward account shape; the password hash never leaves
// the service.
type UserResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	Active      bool        `json:"active"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewUserResponse maps the domain model.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Active:      user.Active,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// UpdateProfileRequest is the self-service profile update payload. Arbitrary
// keys are accepted here; the allow-list filter decides what survives.
type UpdateProfileRequest map[string]any

// UpdateRoleRequest is the administrative role change payload.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UpdateActiveRequest is the administrative activation payload.
type UpdateActiveRequest struct {
	Active *bool `json:"active"`
}
