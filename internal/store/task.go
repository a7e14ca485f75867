package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// TaskFilter describes the recognized options for filtered task listing.
// Zero values mean "no constraint" except Limit, which callers must set.
type TaskFilter struct {
	// Status restricts results to tasks with exactly this status.
	Status *domain.TaskStatus

	// Search restricts results to tasks whose title or description
	// contains this string, case-insensitively.
	Search string

	// DueBefore and DueAfter are inclusive bounds on the due date.
	// Tasks without a due date never match either bound.
	DueBefore *time.Time
	DueAfter  *time.Time

	// Offset and Limit implement offset-based pagination. Results are
	// always ordered by creation time descending, ties broken by ID
	// descending for determinism.
	Offset int
	Limit  int
}

// TaskStore defines the interface for task data persistence.
// Every operation that addresses a single task is scoped to an owner;
// a task owned by someone else behaves exactly like a missing task.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID, scoped to the owner.
	// Returns ErrTaskNotFound if the task does not exist or is not owned
	// by ownerID.
	GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// List retrieves the owner's tasks matching the filter, ordered by
	// creation time descending then ID descending. Returns an empty slice
	// (never nil) when nothing matches.
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Update persists the mutable fields of an existing task, scoped to
	// its owner. Returns ErrTaskNotFound if the task does not exist or is
	// not owned by task.OwnerID.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task, scoped to the owner.
	// Returns ErrTaskNotFound if the task does not exist or is not owned
	// by ownerID.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error

	// WithTx returns a TaskStore bound to the given transaction, so a
	// sequence of operations can commit or roll back together.
	WithTx(tx *sql.Tx) TaskStore
}
