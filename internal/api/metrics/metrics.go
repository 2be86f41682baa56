// Package metrics defines and registers the custom Prometheus metrics shared by
// the identity and task services. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// through promauto; the HTTP layer exposes them on /metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

const namespace = "taskflow"

// ── Identity metrics ──────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsersRegisteredTotal counts successful registrations.
// Label:
//   - role: the registered role (ADMIN, MANAGER, USER)
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users, by role.",
	},
	[]string{"role"},
)

// TokenValidationsTotal counts bearer token checks made by the auth middleware
// and the validation endpoint.
// Label:
//   - result: "valid", "expired", "malformed" or "mismatch"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of token validations, by result.",
	},
	[]string{"result"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks.
var TasksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

// TaskTransitionsTotal counts approve/reject attempts.
// Labels:
//   - action: "approve" or "reject"
//   - result: "success", "forbidden", "invalid_transition", "not_found", "conflict" or "error"
var TaskTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_transitions_total",
		Help:      "Total number of task status transition attempts.",
	},
	[]string{"action", "result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsQueueDepth tracks the number of notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationsTotal counts notification deliveries.
// Label:
//   - result: "delivered", "failed" or "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of task notifications, by delivery result.",
	},
	[]string{"result"},
)

// TokenResult maps a token validation outcome to its TokenValidationsTotal label.
func TokenResult(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrSubjectMismatch):
		return "mismatch"
	default:
		return "malformed"
	}
}

// TransitionResult maps a workflow outcome to its TaskTransitionsTotal result label.
func TransitionResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrTaskNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrWriteConflict):
		return "conflict"
	default:
		return "error"
	}
}
