package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// PlaceholderEmailDomain is appended to the subject ID when the identity
// provider supplies no email claim, so the local email column stays
// non-null and unique.
const PlaceholderEmailDomain = "unknown.local"

// UserDirectory resolves externally-issued identities to local user rows,
// creating the row on first sight. Resolution is idempotent and safe under
// concurrent first requests for the same subject.
type UserDirectory struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewUserDirectory creates a new UserDirectory.
// It returns an error if the user store is nil.
func NewUserDirectory(users store.UserStore, log *slog.Logger) (*UserDirectory, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &UserDirectory{
		users:  users,
		logger: log.With(slog.String("component", "user_directory")),
	}, nil
}

// Resolve returns the local user for the given provider subject ID,
// creating one if none exists yet. The email and display-name hints come
// from the verified token (or the provider's session payload) and are only
// consulted when a new row is created; an existing row is returned as-is.
func (d *UserDirectory) Resolve(ctx context.Context, subjectID, emailHint string, displayNameHint *string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if subjectID == "" {
		return nil, domain.ErrEmptySubjectID
	}

	user, err := d.users.GetBySubjectID(ctx, subjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	email := emailHint
	if email == "" {
		email = subjectID + "@" + PlaceholderEmailDomain
	}

	user, err = domain.NewUser(subjectID, email, displayNameHint)
	if err != nil {
		return nil, err
	}

	log.Info("provisioning local user",
		slog.String("subject_id", subjectID),
		slog.String("user_id", user.ID.String()))

	err = d.users.Create(ctx, user)
	if err == nil {
		return user, nil
	}

	// Lost a provisioning race: another request inserted the row between
	// our read and write. The winner's row is authoritative.
	if errors.Is(err, store.ErrDuplicate) {
		existing, getErr := d.users.GetBySubjectID(ctx, subjectID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to re-read user after conflict: %w", getErr)
		}
		return existing, nil
	}

	return nil, fmt.Errorf("failed to create user: %w", err)
}
