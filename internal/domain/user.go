package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User validation errors
var (
	ErrEmptyUserID    = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptySubjectID = fmt.Errorf("%w: subject ID cannot be empty", ErrValidation)
	ErrEmptyEmail     = fmt.Errorf("%w: email cannot be empty", ErrValidation)
)

// User is the local record for an identity issued by the external
// identity provider. SubjectID is the provider's stable identifier and
// the join key between the provider account and local data; it is never
// reassigned after creation.
type User struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   string    `json:"firebase_uid"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser creates a new User for the given provider subject ID.
// It generates a new UUID for the local ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewUser(subjectID, email string, displayName *string) (*User, error) {
	user := &User{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.SubjectID == "" {
		return ErrEmptySubjectID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	return nil
}
