package ports

import (
	"context"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Create stores a new task and assigns its ID.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// List returns tasks in insertion order. A nil status returns every task.
	List(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, error)
	// UpdateStatus moves a task from one status to another only if its stored
	// status still equals from. Returns domain.ErrWriteConflict otherwise and
	// domain.ErrTaskNotFound for an unknown id.
	UpdateStatus(ctx context.Context, id string, from, to domain.TaskStatus) (*domain.Task, error)
}
