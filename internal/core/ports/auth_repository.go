package ports

import (
	"context"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// UserRepository defines the credential store.
type UserRepository interface {
	// Create stores a new user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
