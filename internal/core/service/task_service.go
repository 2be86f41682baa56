package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/approval-platform/internal/core/domain"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

// maxTransitionAttempts bounds the reload-and-retry after a write conflict.
const maxTransitionAttempts = 2

type TaskService struct {
	repo          ports.TaskRepository
	notifications ports.NotificationQueue
	logger        zerolog.Logger
	now           func() time.Time
}

// NewTaskService returns a TaskService. notifications may be nil, in which case
// transitions are only logged.
func NewTaskService(repo ports.TaskRepository, notifications ports.NotificationQueue, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, notifications: notifications, logger: logger, now: time.Now}
}

// Create stores a new PENDING task.
func (s *TaskService) Create(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(in.Title, in.Description, in.AssignedUser, in.CreatedBy, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().Str("task_id", created.ID).Str("created_by", in.CreatedBy).Msg("task created")
	return created, nil
}

// List returns every task, or only those in status when it is non-empty.
func (s *TaskService) List(ctx context.Context, status string) ([]*domain.Task, error) {
	var filter *domain.TaskStatus
	if status != "" {
		st, err := domain.ParseTaskStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Approve(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error) {
	return s.transition(ctx, in, domain.ActionApprove)
}

func (s *TaskService) Reject(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error) {
	return s.transition(ctx, in, domain.ActionReject)
}

func (s *TaskService) transition(ctx context.Context, in ports.TransitionTaskInput, action domain.TaskAction) (*domain.Task, error) {
	if !in.Role.Can(domain.CapReviewTasks) {
		s.logger.Warn().Str("task_id", in.TaskID).Str("username", in.Username).Str("role", string(in.Role)).
			Str("action", string(action)).Msg("transition forbidden")
		return nil, domain.ErrForbidden
	}

	var lastErr error
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		task, err := s.repo.FindByID(ctx, in.TaskID)
		if err != nil {
			return nil, err
		}

		next, err := domain.Transition(task.Status, action, in.Role)
		if err != nil {
			return nil, err
		}

		updated, err := s.repo.UpdateStatus(ctx, task.ID, task.Status, next)
		if errors.Is(err, domain.ErrWriteConflict) {
			lastErr = err
			s.logger.Debug().Str("task_id", task.ID).Int("attempt", attempt+1).Msg("status write conflict, reloading")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s task: %w", action, err)
		}

		s.logger.Info().Str("task_id", updated.ID).Str("status", string(updated.Status)).
			Str("username", in.Username).Msg("task status changed")
		s.notify(updated, in.Username)
		return updated, nil
	}
	return nil, lastErr
}

func (s *TaskService) notify(task *domain.Task, actor string) {
	if s.notifications == nil {
		return
	}
	s.notifications.Enqueue(domain.TaskNotification{
		TaskID:       task.ID,
		Title:        task.Title,
		Status:       task.Status,
		AssignedUser: task.AssignedUser,
		Actor:        actor,
		OccurredAt:   s.now().UTC(),
	})
}
