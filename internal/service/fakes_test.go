package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// fakeUserStore is an in-memory store.UserStore with injectable failures.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by subject ID

	createErr error
	getErr    error

	// beforeCreate runs inside Create before the insert, letting tests
	// simulate a concurrent writer sneaking in between read and write.
	beforeCreate func()
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	if f.createErr != nil {
		return f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.SubjectID]; ok {
		return store.ErrSubjectExists
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	copied := *user
	f.users[user.SubjectID] = &copied
	return nil
}

func (f *fakeUserStore) GetBySubjectID(ctx context.Context, subjectID string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[subjectID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// fakeTaskStore is an in-memory store.TaskStore with injectable failures.
// Listing applies the full filter so service tests exercise real filter
// semantics without a database.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	createErr error
	updateErr error

	lastFilter *store.TaskFilter
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return f
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) List(ctx context.Context, ownerID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	captured := filter
	f.lastFilter = &captured

	matched := make([]*domain.Task, 0)
	for _, task := range f.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(task, filter.Search) {
			continue
		}
		if filter.DueAfter != nil && (task.DueDate == nil || task.DueDate.Before(*filter.DueAfter)) {
			continue
		}
		if filter.DueBefore != nil && (task.DueDate == nil || task.DueDate.After(*filter.DueBefore)) {
			continue
		}
		copied := *task
		matched = append(matched, &copied)
	}

	// Newest first, ties broken by ID descending.
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			a, b := matched[i], matched[j]
			if a.CreatedAt.Before(b.CreatedAt) ||
				(a.CreatedAt.Equal(b.CreatedAt) && a.ID.String() < b.ID.String()) {
				matched[i], matched[j] = b, a
			}
		}
	}

	if filter.Offset >= len(matched) {
		return []*domain.Task{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// matchesSearch mirrors the store's case-insensitive substring match over
// title or description.
func matchesSearch(task *domain.Task, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(task.Title), needle) {
		return true
	}
	return task.Description != nil && strings.Contains(strings.ToLower(*task.Description), needle)
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return store.ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, taskID)
	return nil
}
