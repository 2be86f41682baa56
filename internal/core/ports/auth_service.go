package ports

import (
	"context"
	"time"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
