package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create inserts a new user, ignoring the insert if a user with the
	// same subject ID or email already exists. In that case it returns
	// ErrSubjectExists (or ErrEmailExists); no existing row is modified.
	// The insert-ignore behavior makes concurrent first-sight provisioning
	// safe: at most one row can exist per subject ID, and losers of the
	// race re-read instead of failing.
	Create(ctx context.Context, user *domain.User) error

	// GetBySubjectID retrieves a user by the identity provider's subject ID.
	// Returns ErrUserNotFound if no such user exists.
	GetBySubjectID(ctx context.Context, subjectID string) (*domain.User, error)

	// GetByID retrieves a user by local ID.
	// Returns ErrUserNotFound if no such user exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
