package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/realtime"
	"github.com/taskhive/taskhive/internal/store"
)

const (
	defaultTaskPageSize = 50
	maxTaskPageSize     = 200
)

// TaskHandler handles task API requests.
type TaskHandler struct {
	taskStore    store.TaskStore
	projectStore store.ProjectStore
	userStore    store.UserStore
	broadcaster  *realtime.Broadcaster
	validator    *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
// broadcaster may be nil, in which case no events are published.
func NewTaskHandler(
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	userStore store.UserStore,
	broadcaster *realtime.Broadcaster,
) *TaskHandler {
	return &TaskHandler{
		taskStore:    taskStore,
		projectStore: projectStore,
		userStore:    userStore,
		broadcaster:  broadcaster,
		validator:    validator.New(),
	}
}

func (h *TaskHandler) actor(r *http.Request, userID uuid.UUID) realtime.Actor {
	return resolveActor(r, h.userStore, userID)
}

func (h *TaskHandler) publish(event realtime.Event) {
	publishEvent(h.broadcaster, event)
}

func (h *TaskHandler) publishStats(r *http.Request, projectID uuid.UUID) {
	publishProjectStats(r, h.broadcaster, h.projectStore, projectID)
}

// requireMember writes an error response and returns false unless the user
// is a member of the project.
func (h *TaskHandler) requireMember(w http.ResponseWriter, r *http.Request, projectID, userID uuid.UUID) bool {
	ok, err := h.projectStore.IsMember(r.Context(), projectID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "You do not have access to this project")
		return false
	}
	return true
}

// getTaskForMember loads a task and verifies the caller belongs to its
// project. Writes an error response and returns false on failure.
func (h *TaskHandler) getTaskForMember(w http.ResponseWriter, r *http.Request, taskID, userID uuid.UUID) (*domain.Task, bool) {
	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	if !h.requireMember(w, r, task.ProjectID, userID) {
		return nil, false
	}
	return task, true
}

// Create handles POST /projects/{projectID}/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if !h.requireMember(w, r, projectID, userID) {
		return
	}

	task, err := domain.NewTask(projectID, userID, req.Title, req.Description, domain.TaskPriority(req.Priority))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	task.DueDate = req.DueDate

	var assignee *domain.User
	if req.AssignedTo != nil {
		assignee = h.memberUser(w, r, projectID, *req.AssignedTo)
		if assignee == nil {
			return
		}
		if err := task.AssignTo(assignee.ID); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	actor := h.actor(r, userID)
	h.publish(realtime.NewTaskCreatedEvent(task, actor))
	if assignee != nil && assignee.ID != userID {
		h.publish(realtime.NewNotificationEvent(assignee.ID, "task_assigned",
			"You were assigned to task \""+task.Title+"\"", &task.ID))
	}
	h.publishStats(r, projectID)

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// memberUser loads a user and verifies project membership, writing an error
// response and returning nil when the user cannot be assigned.
func (h *TaskHandler) memberUser(w http.ResponseWriter, r *http.Request, projectID, userID uuid.UUID) *domain.User {
	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil
	}

	ok, err := h.projectStore.IsMember(r.Context(), projectID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil
	}
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Assignee must be a member of the project")
		return nil
	}

	return user
}

// List handles GET /projects/{projectID}/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}
	if !h.requireMember(w, r, projectID, userID) {
		return
	}

	filter, err := taskFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter.ProjectID = &projectID

	tasks, err := h.taskStore.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Count: len(tasks),
	})
}

// MyTasks handles GET /tasks/my: all tasks assigned to the caller across
// projects, optionally narrowed by the same query filters as the project
// listing.
func (h *TaskHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	filter, err := taskFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter.AssignedTo = &userID

	tasks, err := h.taskStore.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Count: len(tasks),
	})
}

// Get handles GET /tasks/{taskID}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	task, ok := h.getTaskForMember(w, r, taskID, userID)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Update handles PUT /tasks/{taskID}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, ok := h.getTaskForMember(w, r, taskID, userID)
	if !ok {
		return
	}

	statusChanged := false
	changes := map[string]any{}
	if req.Title != nil {
		task.Title = *req.Title
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
		changes["description"] = *req.Description
	}
	if req.Status != nil {
		if err := task.UpdateStatus(domain.TaskStatus(*req.Status)); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		changes["status"] = *req.Status
		statusChanged = true
	}
	if req.Priority != nil {
		task.Priority = domain.TaskPriority(*req.Priority)
		changes["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
		changes["due_date"] = req.DueDate
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.publish(realtime.NewTaskUpdatedEvent(task, h.actor(r, userID), changes))
	if statusChanged {
		h.publishStats(r, task.ProjectID)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{taskID}. Allowed for the task's creator and
// the project owner.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if task.CreatedBy != userID {
		project, err := h.projectStore.GetByID(r.Context(), task.ProjectID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		if project.OwnerID != userID {
			HandleAPIError(w, r, domain.ErrUnauthorized, "Only the task creator or project owner can delete a task")
			return
		}
	}

	if err := h.taskStore.Delete(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.publish(realtime.NewTaskDeletedEvent(task, h.actor(r, userID)))
	h.publishStats(r, task.ProjectID)

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Task deleted successfully",
	})
}

// Assign handles POST /tasks/{taskID}/assign.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	var req AssignTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, ok := h.getTaskForMember(w, r, taskID, userID)
	if !ok {
		return
	}

	assignee := h.memberUser(w, r, task.ProjectID, req.UserID)
	if assignee == nil {
		return
	}

	if err := task.AssignTo(assignee.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.publish(realtime.NewTaskAssignedEvent(task, assignee, h.actor(r, userID)))
	if assignee.ID != userID {
		h.publish(realtime.NewNotificationEvent(assignee.ID, "task_assigned",
			"You were assigned to task \""+task.Title+"\"", &task.ID))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Unassign handles DELETE /tasks/{taskID}/assign.
func (h *TaskHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	task, ok := h.getTaskForMember(w, r, taskID, userID)
	if !ok {
		return
	}

	task.Unassign()
	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.publish(realtime.NewTaskUpdatedEvent(task, h.actor(r, userID), map[string]any{
		"assigned_to": nil,
	}))

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// taskFilterFromQuery parses the optional task listing filters from query
// parameters. Returns a validation error for unrecognized enum values or
// malformed UUIDs.
func taskFilterFromQuery(r *http.Request) (store.TaskFilter, error) {
	var filter store.TaskFilter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			return filter, domain.NewValidationError("status", "has invalid value", domain.ErrInvalidTaskStatus)
		}
		filter.Status = &status
	}

	if raw := q.Get("priority"); raw != "" {
		priority := domain.TaskPriority(raw)
		if !priority.IsValid() {
			return filter, domain.NewValidationError("priority", "has invalid value", domain.ErrInvalidTaskPriority)
		}
		filter.Priority = &priority
	}

	if raw := q.Get("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.NewValidationError("assigned_to", "has invalid format", domain.ErrInvalidID)
		}
		filter.AssignedTo = &id
	}

	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.NewValidationError("category_id", "has invalid format", domain.ErrInvalidID)
		}
		filter.CategoryID = &id
	}

	if raw := q.Get("created_by"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.NewValidationError("created_by", "has invalid format", domain.ErrInvalidID)
		}
		filter.CreatedBy = &id
	}

	if q.Get("overdue") == "true" {
		filter.Overdue = true
	}

	filter.Search = strings.TrimSpace(q.Get("search"))

	if raw := q.Get("sort"); raw != "" {
		if raw != "priority" && raw != "created" {
			return filter, domain.NewValidationError("sort", "has invalid value", domain.ErrValidation)
		}
		filter.SortByPriority = raw == "priority"
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filter, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation)
		}
		if n > maxTaskPageSize {
			n = maxTaskPageSize
		}
		filter.Limit = n
	}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filter, domain.NewValidationError("page", "must be a positive integer", domain.ErrValidation)
		}
		if filter.Limit == 0 {
			filter.Limit = defaultTaskPageSize
		}
		filter.Offset = (n - 1) * filter.Limit
	}

	return filter, nil
}
