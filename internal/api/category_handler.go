package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// CategoryHandler handles personal category API requests. Categories belong
// to a single user; attaching one to a task additionally requires membership
// of the task's project.
type CategoryHandler struct {
	categoryStore store.CategoryStore
	taskStore     store.TaskStore
	projectStore  store.ProjectStore
	validator     *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler with the given dependencies.
func NewCategoryHandler(
	categoryStore store.CategoryStore,
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
) *CategoryHandler {
	return &CategoryHandler{
		categoryStore: categoryStore,
		taskStore:     taskStore,
		projectStore:  projectStore,
		validator:     validator.New(),
	}
}

// ownedCategory loads a category and verifies the caller owns it. Writes an
// error response and returns false on failure.
func (h *CategoryHandler) ownedCategory(w http.ResponseWriter, r *http.Request, categoryID, userID uuid.UUID) (*domain.Category, bool) {
	category, err := h.categoryStore.GetByID(r.Context(), categoryID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	if category.UserID != userID {
		// Report not-found rather than forbidden so category ids of other
		// users cannot be probed.
		HandleAPIError(w, r, store.ErrCategoryNotFound, "")
		return nil, false
	}
	return category, true
}

// taskForMember loads a task and verifies the caller belongs to its project.
func (h *CategoryHandler) taskForMember(w http.ResponseWriter, r *http.Request, taskID, userID uuid.UUID) (*domain.Task, bool) {
	task, err := h.taskStore.GetByID(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	ok, err := h.projectStore.IsMember(r.Context(), task.ProjectID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "You do not have access to this project")
		return nil, false
	}

	return task, true
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	category, err := domain.NewCategory(userID, req.Name, req.Color)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.categoryStore.Create(r.Context(), category); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, category)
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	categories, err := h.categoryStore.ListForUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CategoryListResponse{
		Categories: categories,
		Count:      len(categories),
	})
}

// Update handles PUT /categories/{categoryID}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := handleUserIDAndPathUUID(w, r, "categoryID", nil)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	category, ok := h.ownedCategory(w, r, categoryID, userID)
	if !ok {
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	if err := h.categoryStore.Update(r.Context(), category); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, category)
}

// Delete handles DELETE /categories/{categoryID}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := handleUserIDAndPathUUID(w, r, "categoryID", nil)
	if !ok {
		return
	}
	if _, ok := h.ownedCategory(w, r, categoryID, userID); !ok {
		return
	}

	if err := h.categoryStore.Delete(r.Context(), categoryID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Category deleted successfully",
	})
}

// AssignToTask handles POST /tasks/{taskID}/categories.
func (h *CategoryHandler) AssignToTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	var req AssignCategoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if _, ok := h.taskForMember(w, r, taskID, userID); !ok {
		return
	}
	category, ok := h.ownedCategory(w, r, req.CategoryID, userID)
	if !ok {
		return
	}

	if err := h.categoryStore.AssignToTask(r.Context(), taskID, category.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, map[string]string{
		"message": "Category assigned to task",
	})
}

// RemoveFromTask handles DELETE /tasks/{taskID}/categories/{categoryID}.
func (h *CategoryHandler) RemoveFromTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	categoryID, err := getPathUUID(r, "categoryID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if _, ok := h.taskForMember(w, r, taskID, userID); !ok {
		return
	}
	if _, ok := h.ownedCategory(w, r, categoryID, userID); !ok {
		return
	}

	if err := h.categoryStore.RemoveFromTask(r.Context(), taskID, categoryID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Category removed from task",
	})
}

// ListForTask handles GET /tasks/{taskID}/categories. Returns only the
// caller's categories; other members' labels on the same task stay private.
func (h *CategoryHandler) ListForTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}
	if _, ok := h.taskForMember(w, r, taskID, userID); !ok {
		return
	}

	categories, err := h.categoryStore.ListForTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	mine := categories[:0]
	for _, c := range categories {
		if c.UserID == userID {
			mine = append(mine, c)
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CategoryListResponse{
		Categories: mine,
		Count:      len(mine),
	})
}
