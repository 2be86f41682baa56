package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending  TaskStatus = "PENDING"
	StatusApproved TaskStatus = "APPROVED"
	StatusRejected TaskStatus = "REJECTED"
)

// TaskAction is a workflow action that moves a task between statuses.
type TaskAction string

const (
	ActionApprove TaskAction = "approve"
	ActionReject  TaskAction = "reject"
)

// validTransitions defines the task state machine. Statuses without an entry are terminal.
var validTransitions = map[TaskStatus]map[TaskAction]TaskStatus{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
}

// ParseTaskStatus maps s onto a known TaskStatus, ignoring case.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// IsTerminal reports whether no action can move a task out of s.
func (s TaskStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Transition applies action to a task in status current on behalf of a caller
// holding role. The role gate is checked before the state rule.
func Transition(current TaskStatus, action TaskAction, role Role) (TaskStatus, error) {
	if !role.Can(CapReviewTasks) {
		return current, ErrForbidden
	}
	next, ok := validTransitions[current][action]
	if !ok {
		return current, fmt.Errorf("%w: cannot %s a %s task", ErrInvalidTransition, action, current)
	}
	return next, nil
}

// Task is the aggregate managed by the task workflow.
type Task struct {
	ID           string
	Title        string
	Description  string
	Status       TaskStatus
	AssignedUser string
	CreatedBy    string
	CreatedDate  time.Time
	UpdatedAt    time.Time
}

// NewTask builds a PENDING task stamped with now. The title must not be blank.
func NewTask(title, description, assignedUser, createdBy string, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	now = now.UTC()
	return &Task{
		Title:        title,
		Description:  strings.TrimSpace(description),
		Status:       StatusPending,
		AssignedUser: strings.TrimSpace(assignedUser),
		CreatedBy:    createdBy,
		CreatedDate:  now,
		UpdatedAt:    now,
	}, nil
}

// TaskNotification is emitted after a task reaches a terminal status.
type TaskNotification struct {
	TaskID       string
	Title        string
	Status       TaskStatus
	AssignedUser string
	Actor        string
	OccurredAt   time.Time
}

// Message renders the simulated email line sent to the assignee.
func (n TaskNotification) Message() string {
	assignee := n.AssignedUser
	if assignee == "" {
		assignee = "unassigned"
	}
	return "task " + strings.ToLower(string(n.Status)) + ", email simulated for " + assignee
}
