// Package store defines the persistence collaborator of the scheduling
// core. The host application owns the actual note files; this interface is
// the narrow surface the core reads tasks through and writes them back to.
package store

import (
	"context"
	"errors"

	"github.com/notetools/tasknote/task"
)

var (
	// ErrTaskNotFound is returned when no task exists for a UID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrMissingUID is returned when an operation requires a UID and none
	// was given.
	ErrMissingUID = errors.New("task UID is required")
)

// Store connects the scheduling core with the host's note persistence.
// Implementations must hand out independent copies: callers mutate the
// returned tasks freely and persist changes explicitly through SaveTask.
type Store interface {
	// GetTask retrieves one task by UID.
	GetTask(ctx context.Context, uid string) (*task.Task, error)
	// ListTasks retrieves every task.
	ListTasks(ctx context.Context) ([]task.Task, error)
	// SaveTask creates or replaces a task. A task without a UID is assigned
	// one, written back into t.
	SaveTask(ctx context.Context, t *task.Task) error
	// DeleteTask removes a task by UID.
	DeleteTask(ctx context.Context, uid string) error
}
