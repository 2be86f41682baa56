// Package memory provides in-process implementations of the repository ports.
// They back the STORAGE_DRIVER=memory mode and the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

type UserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.User
	order      []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byUsername: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return nil, domain.ErrUserExists
	}

	stored := *user
	stored.ID = uuid.NewString()
	r.byUsername[stored.Username] = &stored
	r.order = append(r.order, stored.Username)

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.order))
	for _, name := range r.order {
		u := *r.byUsername[name]
		users = append(users, &u)
	}
	return users, nil
}
