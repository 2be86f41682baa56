package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskflow/approval-platform/internal/core/domain"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

// LogNotifier simulates the outbound email by writing it to the log.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n domain.TaskNotification) error {
	l.log.Info().
		Str("task_id", n.TaskID).
		Str("status", string(n.Status)).
		Str("actor", n.Actor).
		Msg(n.Message())
	return nil
}

// Fanout delivers to every notifier and returns the first error.
type Fanout []ports.Notifier

func (f Fanout) Notify(ctx context.Context, n domain.TaskNotification) error {
	var first error
	for _, nt := range f {
		if err := nt.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
