package engine

import (
	"context"

	taskdomain "task-manager/backend/internal/task/domain"
)

// Action is the operation a subject attempts on a task.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Evaluator decides whether a subject may perform an action on a task.
type Evaluator interface {
	// Allowed reports whether subject (a user ID) may perform action on task.
	// Implementations fail closed: any evaluation error yields false together with the error.
	Allowed(ctx context.Context, subject string, action Action, task *taskdomain.Task) (bool, error)
}
