package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// SignupRequest holds the signup request parameters. The password rules
// are the identity provider's; the minimum here just rejects obviously
// unusable values before the round trip.
type SignupRequest struct {
	Email       string  `json:"email"                  validate:"required,email"`
	Password    string  `json:"password"               validate:"required,min=6,max=72"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
}

// LoginRequest holds the login request parameters.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned from successful signup and login requests.
// The token fields mirror the identity provider's session so clients can
// use them directly against the provider's token endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    string    `json:"expires_in"`
}

// UserResponse describes a local user.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse converts a domain user to its API representation.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

// CreateTaskRequest holds the parameters for creating a task.
// An omitted status defaults to "todo".
type CreateTaskRequest struct {
	Title       string     `json:"title"                 validate:"required,max=200"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest holds a partial update for an existing task.
// Omitted or null fields leave the stored values unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"       validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskResponse describes a single task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskResponse converts a domain task to its API representation.
// The owner is implied by the authenticated request and not repeated in
// the payload.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// TaskListResponse is a page of tasks.
type TaskListResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// NewTaskListResponse converts a page of domain tasks to the API
// representation. Tasks is never null, even for an empty page.
func NewTaskListResponse(tasks []*domain.Task, page, pageSize int) TaskListResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return TaskListResponse{
		Tasks:    out,
		Page:     page,
		PageSize: pageSize,
	}
}
