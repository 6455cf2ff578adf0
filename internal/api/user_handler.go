package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// UserHandler handles user directory and dashboard API requests.
type UserHandler struct {
	userStore    store.UserStore
	taskStore    store.TaskStore
	projectStore store.ProjectStore
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(
	userStore store.UserStore,
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
) *UserHandler {
	return &UserHandler{
		userStore:    userStore,
		taskStore:    taskStore,
		projectStore: projectStore,
	}
}

// Search handles GET /users/search?q=<query>. Used to find users to add to
// projects or assign to tasks.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Search query must be at least 2 characters")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n > maxSearchLimit {
			n = maxSearchLimit
		}
		limit = n
	}

	users, err := h.userStore.Search(r.Context(), query, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UserListResponse{
		Users: users,
		Count: len(users),
	})
}

// Get handles GET /users/{userID}: another user's public profile. Deactivated
// accounts are indistinguishable from missing ones.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, targetID, ok := handleUserIDAndPathUUID(w, r, "userID", nil)
	if !ok {
		return
	}

	user, err := h.userStore.GetByID(r.Context(), targetID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !user.IsActive {
		HandleAPIError(w, r, store.ErrUserNotFound, "User not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Dashboard handles GET /dashboard: the caller's task statistics, their
// projects, and their overdue assigned tasks.
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	stats, err := h.taskStore.GetUserStats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	projects, err := h.projectStore.ListForUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	overdue, err := h.taskStore.List(r.Context(), store.TaskFilter{
		AssignedTo: &userID,
		Overdue:    true,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DashboardResponse{
		TaskStats: stats,
		Projects:  projects,
		Overdue:   overdue,
	})
}
