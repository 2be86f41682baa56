package ports

import (
	"context"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// CreateTaskInput carries the data needed to create a task.
type CreateTaskInput struct {
	Title        string
	Description  string
	AssignedUser string
	// CreatedBy is the authenticated subject submitting the task.
	CreatedBy string
}

// TransitionTaskInput identifies a task and the caller acting on it.
type TransitionTaskInput struct {
	TaskID   string
	Username string
	Role     domain.Role
}

// TaskService defines use-case operations for the task workflow.
type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, status string) ([]*domain.Task, error)
	Approve(ctx context.Context, input TransitionTaskInput) (*domain.Task, error)
	Reject(ctx context.Context, input TransitionTaskInput) (*domain.Task, error)
}
