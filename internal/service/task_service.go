package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// Pagination bounds for task listing.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CreateTaskInput carries the caller-supplied fields for a new task.
// Status is the raw string from the request; empty means "todo".
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      string
	DueDate     *time.Time
}

// UpdateTaskInput carries a partial update for an existing task.
// Nil fields leave the stored values unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
}

// ListTasksInput carries the recognized task-listing options. Zero values
// mean "absent": no status/search/due constraint, default page and size.
type ListTasksInput struct {
	Status    string
	Search    string
	DueBefore *time.Time
	DueAfter  *time.Time
	Page      int
	PageSize  int
}

// TaskService provides owner-scoped task operations. Every method takes
// the acting user's ID; tasks owned by anyone else are treated as missing.
type TaskService interface {
	// CreateTask creates a new task owned by ownerID.
	CreateTask(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a single task.
	// Returns store.ErrTaskNotFound if it does not exist or belongs to
	// another user.
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks retrieves the owner's tasks matching the input's filters,
	// newest first. The returned slice is never nil.
	ListTasks(ctx context.Context, ownerID uuid.UUID, input ListTasksInput) ([]*domain.Task, error)

	// UpdateTask applies the input's non-nil fields to an existing task,
	// leaving the rest unchanged.
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)

	// CompleteTask marks a task as done. Completing an already-done task
	// succeeds and is a no-op apart from the updated timestamp.
	CompleteTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// DeleteTask removes a task permanently.
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	db     *sql.DB
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the task store is nil. The database handle is
// used for transactional read-modify-write operations and may be nil,
// in which case those operations run without a transaction.
func NewTaskService(db *sql.DB, tasks store.TaskStore, log *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &taskServiceImpl{
		db:     db,
		tasks:  tasks,
		logger: log.With(slog.String("component", "task_service")),
	}, nil
}

// inTransaction runs fn against a transaction-bound task store when a
// database handle is available, and directly against the store otherwise.
func (s *taskServiceImpl) inTransaction(ctx context.Context, fn func(tasks store.TaskStore) error) error {
	if s.db == nil {
		return fn(s.tasks)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(s.tasks.WithTx(tx))
	})
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	status := domain.TaskStatusTodo
	if input.Status != "" {
		parsed, err := domain.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	task, err := domain.NewTask(ownerID, input.Title, input.Description, status, input.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", ownerID.String()))

	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, ownerID, taskID)
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, ownerID uuid.UUID, input ListTasksInput) ([]*domain.Task, error) {
	filter, err := buildTaskFilter(input)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx, ownerID, filter)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to query tasks", err)
	}

	return tasks, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var task *domain.Task
	err := s.inTransaction(ctx, func(tasks store.TaskStore) error {
		var err error
		task, err = tasks.GetByID(ctx, ownerID, taskID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			task.Title = *input.Title
		}
		if input.Description != nil {
			task.Description = input.Description
		}
		if input.Status != nil {
			parsed, err := domain.ParseTaskStatus(*input.Status)
			if err != nil {
				return err
			}
			task.Status = parsed
		}
		if input.DueDate != nil {
			task.DueDate = input.DueDate
		}
		task.UpdatedAt = time.Now().UTC()

		// Validate the merged result before touching the store so a bad
		// request cannot leave a half-updated row.
		if err := task.Validate(); err != nil {
			return err
		}

		return tasks.Update(ctx, task)
	})
	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		log.Error("failed to update task",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("update_task", "failed to save task", err)
	}

	return task, nil
}

// CompleteTask implements TaskService.CompleteTask
func (s *taskServiceImpl) CompleteTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var task *domain.Task
	err := s.inTransaction(ctx, func(tasks store.TaskStore) error {
		var err error
		task, err = tasks.GetByID(ctx, ownerID, taskID)
		if err != nil {
			return err
		}

		task.Status = domain.TaskStatusDone
		task.UpdatedAt = time.Now().UTC()

		return tasks.Update(ctx, task)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to complete task",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("complete_task", "failed to save task", err)
	}

	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.tasks.Delete(ctx, ownerID, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		log.Error("failed to delete task",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	return nil
}

// buildTaskFilter validates the listing input and converts it to a store
// filter, translating page/size into offset/limit.
func buildTaskFilter(input ListTasksInput) (store.TaskFilter, error) {
	filter := store.TaskFilter{
		Search:    input.Search,
		DueBefore: input.DueBefore,
		DueAfter:  input.DueAfter,
	}

	if input.Status != "" {
		status, err := domain.ParseTaskStatus(input.Status)
		if err != nil {
			return store.TaskFilter{}, err
		}
		filter.Status = &status
	}

	page := input.Page
	if page == 0 {
		page = DefaultPage
	}
	if page < 1 {
		return store.TaskFilter{}, domain.NewValidationError("page", "must be at least 1", domain.ErrValidation)
	}

	size := input.PageSize
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 1 || size > MaxPageSize {
		return store.TaskFilter{}, domain.NewValidationError(
			"page_size",
			fmt.Sprintf("must be between 1 and %d", MaxPageSize),
			domain.ErrValidation,
		)
	}

	filter.Offset = (page - 1) * size
	filter.Limit = size

	return filter, nil
}
