package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service"
)

// TaskHandler handles task-related API requests. All routes it serves
// sit behind the auth middleware, so a user is always present on the
// context.
type TaskHandler struct {
	tasks service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
	}
}

// Create handles the POST /tasks endpoint.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), user.ID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles the GET /tasks endpoint.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	input, err := parseListQuery(r)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), user.ID, input)
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	page := input.Page
	if page == 0 {
		page = service.DefaultPage
	}
	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = service.DefaultPageSize
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks, page, pageSize))
}

// Get handles the GET /tasks/{id} endpoint.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), user.ID, taskID)
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles the PUT /tasks/{id} endpoint.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := ValidateRequest(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), user.ID, taskID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Complete handles the PATCH /tasks/{id}/complete endpoint.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.CompleteTask(r.Context(), user.ID, taskID)
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles the DELETE /tasks/{id} endpoint.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	taskID, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), user.ID, taskID); err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) respondTaskError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// parseTaskID extracts and validates the {id} route parameter, writing
// the error response itself on failure.
func parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	taskID, err := uuid.Parse(raw)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return taskID, true
}

// parseListQuery converts the recognized query parameters into a listing
// input. Unknown parameters are ignored; malformed values for recognized
// parameters are errors.
func parseListQuery(r *http.Request) (service.ListTasksInput, error) {
	q := r.URL.Query()

	input := service.ListTasksInput{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}

	if raw := q.Get("due_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return service.ListTasksInput{}, domain.NewValidationError(
				"due_before", "must be an RFC 3339 timestamp", domain.ErrValidation)
		}
		input.DueBefore = &t
	}

	if raw := q.Get("due_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return service.ListTasksInput{}, domain.NewValidationError(
				"due_after", "must be an RFC 3339 timestamp", domain.ErrValidation)
		}
		input.DueAfter = &t
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return service.ListTasksInput{}, domain.NewValidationError(
				"page", "must be an integer", domain.ErrValidation)
		}
		input.Page = page
	}

	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return service.ListTasksInput{}, domain.NewValidationError(
				"page_size", "must be an integer", domain.ErrValidation)
		}
		input.PageSize = size
	}

	return input, nil
}
