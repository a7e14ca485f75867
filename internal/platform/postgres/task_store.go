package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// taskColumns is the column list shared by every task SELECT.
const taskColumns = "id, owner_id, title, description, status, due_date, created_at, updated_at"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts any store.DBTX, so it works both with
// a *sql.DB and inside a transaction.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{
		db: db,
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, owner_id, title, description, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert task",
			"task_id", task.ID,
			"owner_id", task.OwnerID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContext(ctx)

	query, args := buildListQuery(ownerID, filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			"owner_id", ownerID,
			"error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return err
	}

	// The owner never changes; scoping the WHERE by it makes an update
	// against someone else's task indistinguishable from a missing row.
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, due_date = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		log.Error("failed to update task",
			"task_id", task.ID,
			"owner_id", task.OwnerID,
			"error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContext(ctx)

	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`

	result, err := s.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			"task_id", taskID,
			"owner_id", ownerID,
			"error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// buildListQuery assembles the filtered list statement and its arguments.
// Results are always ordered by creation time descending, ties broken by
// ID descending, so pagination is stable across requests.
func buildListQuery(ownerID uuid.UUID, filter store.TaskFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SELECT %s FROM tasks WHERE owner_id = $1", taskColumns))

	args := []any{ownerID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		sb.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+escapeLikePattern(filter.Search)+"%")
		n := len(args)
		sb.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	// Due-date bounds are inclusive. Rows with a NULL due date never
	// match a bound because NULL comparisons are not true in SQL.
	if filter.DueAfter != nil {
		args = append(args, *filter.DueAfter)
		sb.WriteString(fmt.Sprintf(" AND due_date >= $%d", len(args)))
	}

	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		sb.WriteString(fmt.Sprintf(" AND due_date <= $%d", len(args)))
	}

	sb.WriteString(" ORDER BY created_at DESC, id DESC")

	args = append(args, filter.Limit)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	args = append(args, filter.Offset)
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	return sb.String(), args
}

// escapeLikePattern escapes LIKE metacharacters so user-supplied search
// terms match literally.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var dueDate sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&description,
		&task.Status,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}

	return &task, nil
}
