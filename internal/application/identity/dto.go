package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
)

// RegisterInput contains input for account registration
type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginInput contains input for authentication
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// ClientAddr is the remote address the attempt came from; it scopes the
	// failed-attempt budget together with the email.
	ClientAddr string `json:"-"`
}

// LogoutInput contains input for logout
type LogoutInput struct {
	JTI      string
	TokenTTL time.Duration
	UserID   uuid.UUID
}

// UserInfo is the API representation of an account
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToUserInfo converts a user to its API representation
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthResult is returned after a successful login or registration
type AuthResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

// RateLimitedError is returned when a (client, email) pair has exhausted
// its failed-login budget. RetryAfter tells the client when to try again.
type RateLimitedError struct {
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitedError) Error() string {
	return "Too many login attempts. Please try again later."
}

// CreateUserInput contains admin input for creating an account
type CreateUserInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required,oneof=user admin"`
}

// UpdateUserInput contains admin input for updating an account
type UpdateUserInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required,oneof=user admin"`
	Password string `json:"password" binding:"omitempty,min=8,max=72"`
}

// ListUsersQuery carries the browse parameters of the admin user list
type ListUsersQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
}
