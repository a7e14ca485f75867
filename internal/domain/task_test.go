package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    TaskStatus
		wantErr bool
	}{
		{name: "todo", raw: "todo", want: TaskStatusTodo},
		{name: "in_progress", raw: "in_progress", want: TaskStatusInProgress},
		{name: "done", raw: "done", want: TaskStatusDone},
		{name: "empty", raw: "", wantErr: true},
		{name: "unknown_value", raw: "bogus", wantErr: true},
		{name: "wrong_case", raw: "Done", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTaskStatus(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTask(t *testing.T) {
	ownerID := uuid.New()
	desc := "some description"
	due := time.Now().UTC().Add(24 * time.Hour)

	task, err := NewTask(ownerID, "write report", &desc, TaskStatusTodo, &due)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, ownerID, task.OwnerID)
	assert.Equal(t, "write report", task.Title)
	assert.Equal(t, &desc, task.Description)
	assert.Equal(t, TaskStatusTodo, task.Status)
	assert.Equal(t, due, *task.DueDate)

	// Created and updated timestamps must be set to the same instant.
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestNewTask_ValidationFailures(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name    string
		ownerID uuid.UUID
		title   string
		status  TaskStatus
		wantErr error
	}{
		{
			name:    "missing_owner",
			ownerID: uuid.Nil,
			title:   "a task",
			status:  TaskStatusTodo,
			wantErr: ErrTaskOwnerEmpty,
		},
		{
			name:    "empty_title",
			ownerID: ownerID,
			title:   "",
			status:  TaskStatusTodo,
			wantErr: ErrTaskTitleEmpty,
		},
		{
			name:    "title_too_long",
			ownerID: ownerID,
			title:   strings.Repeat("x", MaxTitleLength+1),
			status:  TaskStatusTodo,
			wantErr: ErrTaskTitleTooLong,
		},
		{
			name:    "invalid_status",
			ownerID: ownerID,
			title:   "a task",
			status:  TaskStatus("bogus"),
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTask(tt.ownerID, tt.title, nil, tt.status, nil)
			assert.Nil(t, task)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTask_Validate_TitleAtBoundary(t *testing.T) {
	task, err := NewTask(uuid.New(), strings.Repeat("x", MaxTitleLength), nil, TaskStatusInProgress, nil)
	require.NoError(t, err)
	assert.NoError(t, task.Validate())
}
