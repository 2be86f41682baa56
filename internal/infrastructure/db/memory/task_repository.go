package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// TaskRepository keeps tasks in a map guarded by a single lock, so the
// compare-and-set in UpdateStatus is atomic per task.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	order []string
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*domain.Task)}
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	stored := *task
	stored.ID = uuid.NewString()

	r.mu.Lock()
	r.tasks[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	r.mu.Unlock()

	out := stored
	return &out, nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (r *TaskRepository) List(_ context.Context, status *domain.TaskStatus) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*domain.Task, 0, len(r.order))
	for _, id := range r.order {
		t := r.tasks[id]
		if status != nil && t.Status != *status {
			continue
		}
		out := *t
		tasks = append(tasks, &out)
	}
	return tasks, nil
}

func (r *TaskRepository) UpdateStatus(_ context.Context, id string, from, to domain.TaskStatus) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if t.Status != from {
		return nil, domain.ErrWriteConflict
	}

	t.Status = to
	t.UpdatedAt = time.Now().UTC()
	out := *t
	return &out, nil
}
