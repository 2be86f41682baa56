package ports

import (
	"context"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// Notifier delivers task notifications to the outside world.
type Notifier interface {
	Notify(ctx context.Context, n domain.TaskNotification) error
}

// NotificationQueue accepts notifications for asynchronous delivery.
type NotificationQueue interface {
	Enqueue(n domain.TaskNotification)
}
