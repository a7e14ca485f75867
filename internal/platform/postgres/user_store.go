package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db store.DBTX
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts any store.DBTX, so it works both with
// a *sql.DB and inside a transaction.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	return &PostgresUserStore{
		db: db,
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create.
//
// The insert uses ON CONFLICT DO NOTHING so that concurrent provisioning
// of the same subject cannot fail mid-race: the loser sees zero rows
// affected and gets ErrSubjectExists (or ErrEmailExists) back, which
// callers resolve by re-reading the winner's row.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, firebase_uid, email, display_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.SubjectID,
		user.Email,
		user.DisplayName,
		user.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert user",
			"subject_id", user.SubjectID,
			"error", err)
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing was inserted, so some unique constraint matched. DO NOTHING
	// does not say which, so probe by subject ID to tell the two apart.
	if _, err := s.GetBySubjectID(ctx, user.SubjectID); err == nil {
		return store.ErrSubjectExists
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}
	return store.ErrEmailExists
}

// GetBySubjectID implements store.UserStore.GetBySubjectID
func (s *PostgresUserStore) GetBySubjectID(ctx context.Context, subjectID string) (*domain.User, error) {
	query := `
		SELECT id, firebase_uid, email, display_name, created_at
		FROM users
		WHERE firebase_uid = $1
	`
	return s.getUser(ctx, query, subjectID)
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, firebase_uid, email, display_name, created_at
		FROM users
		WHERE id = $1
	`
	return s.getUser(ctx, query, id)
}

func (s *PostgresUserStore) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	var displayName sql.NullString

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.SubjectID,
		&user.Email,
		&displayName,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}

	if displayName.Valid {
		user.DisplayName = &displayName.String
	}

	return &user, nil
}
