package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength bounds task titles, matching the column width in the schema.
const MaxTitleLength = 200

// Task validation errors
var (
	ErrTaskIDEmpty      = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrTaskOwnerEmpty   = fmt.Errorf("%w: task owner cannot be empty", ErrValidation)
	ErrTaskTitleEmpty   = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTitleTooLong = fmt.Errorf("%w: task title exceeds %d characters", ErrValidation, MaxTitleLength)
	ErrInvalidStatus    = fmt.Errorf("%w: invalid task status", ErrValidation)
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Valid task statuses. The database enforces the same set with a CHECK
// constraint, so no other value can be persisted.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid reports whether the status is one of the defined values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// ParseTaskStatus converts a raw string into a TaskStatus.
// Returns ErrInvalidStatus if the value is not one of the defined statuses.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Task is a single to-do item owned by exactly one user. All reads and
// mutations are scoped to the owner; the owner reference is immutable
// after creation.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by ownerID. Created and updated
// timestamps are set to the same instant. Returns an error if validation
// fails.
func NewTask(ownerID uuid.UUID, title string, description *string, status TaskStatus, dueDate *time.Time) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerEmpty
	}
	if t.Title == "" {
		return ErrTaskTitleEmpty
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return nil
}
