package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/realtime"
	"github.com/taskhive/taskhive/internal/store"
)

// ProjectHandler handles project and membership API requests.
type ProjectHandler struct {
	projectStore store.ProjectStore
	userStore    store.UserStore
	broadcaster  *realtime.Broadcaster
	validator    *validator.Validate
}

// NewProjectHandler creates a new ProjectHandler with the given dependencies.
// broadcaster may be nil, in which case no events are published.
func NewProjectHandler(
	projectStore store.ProjectStore,
	userStore store.UserStore,
	broadcaster *realtime.Broadcaster,
) *ProjectHandler {
	return &ProjectHandler{
		projectStore: projectStore,
		userStore:    userStore,
		broadcaster:  broadcaster,
		validator:    validator.New(),
	}
}

func (h *ProjectHandler) actor(r *http.Request, userID uuid.UUID) realtime.Actor {
	return resolveActor(r, h.userStore, userID)
}

func (h *ProjectHandler) publish(event realtime.Event) {
	publishEvent(h.broadcaster, event)
}

// requireMember writes an error response and returns false unless the user
// is a member of the project.
func (h *ProjectHandler) requireMember(w http.ResponseWriter, r *http.Request, projectID, userID uuid.UUID) bool {
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

// requireOwner writes an error response and returns false unless the user
// owns the project. Returns the project on success.
func (h *ProjectHandler) requireOwner(w http.ResponseWriter, r *http.Request, projectID, userID uuid.UUID) (*domain.Project, bool) {
	project, err := h.projectStore.GetByID(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	if project.OwnerID != userID {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Only the project owner can do this")
		return nil, false
	}
	return project, true
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	project, err := domain.NewProject(userID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.projectStore.Create(r.Context(), project); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, project)
}

// List handles GET /projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	projects, err := h.projectStore.ListForUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProjectListResponse{
		Projects: projects,
		Count:    len(projects),
	})
}

// Get handles GET /projects/{projectID}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}
	if !h.requireMember(w, r, projectID, userID) {
		return
	}

	project, err := h.projectStore.GetByID(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// Update handles PUT /projects/{projectID}. Owner only.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	project, ok := h.requireOwner(w, r, projectID, userID)
	if !ok {
		return
	}

	changes := map[string]any{}
	if req.Name != nil {
		project.Name = *req.Name
		changes["name"] = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
		changes["description"] = *req.Description
	}
	if req.Status != nil {
		project.Status = domain.ProjectStatus(*req.Status)
		changes["status"] = *req.Status
	}

	if err := h.projectStore.Update(r.Context(), project); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.publish(realtime.NewProjectUpdatedEvent(project, h.actor(r, userID), changes))

	shared.RespondWithJSON(w, r, http.StatusOK, project)
}

// Delete handles DELETE /projects/{projectID}. Owner only.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}
	if _, ok := h.requireOwner(w, r, projectID, userID); !ok {
		return
	}

	if err := h.projectStore.Delete(r.Context(), projectID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Project deleted successfully",
	})
}

// AddMember handles POST /projects/{projectID}/members. Owner only.
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	project, ok := h.requireOwner(w, r, projectID, userID)
	if !ok {
		return
	}

	newMember, err := h.userStore.GetByID(r.Context(), req.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	member, err := domain.NewProjectMember(projectID, newMember.ID, domain.ProjectRoleMember)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.projectStore.AddMember(r.Context(), member); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.publish(realtime.NewProjectMemberAddedEvent(project, newMember, h.actor(r, userID)))

	shared.RespondWithJSON(w, r, http.StatusCreated, member)
}

// RemoveMember handles DELETE /projects/{projectID}/members/{userID}.
// The owner can remove anyone but themselves; members can remove themselves
// (leave the project).
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}

	memberID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	project, err := h.projectStore.GetByID(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if memberID == project.OwnerID {
		HandleAPIError(w, r, domain.ErrUnauthorized, "The project owner cannot be removed")
		return
	}
	if userID != project.OwnerID && userID != memberID {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Only the project owner can remove other members")
		return
	}

	if err := h.projectStore.RemoveMember(r.Context(), projectID, memberID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if userID != memberID {
		h.publish(realtime.NewNotificationEvent(memberID, "removed_from_project",
			"You were removed from project \""+project.Name+"\"", nil))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Member removed successfully",
	})
}

// ListMembers handles GET /projects/{projectID}/members.
func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}
	if !h.requireMember(w, r, projectID, userID) {
		return
	}

	members, err := h.projectStore.ListMembers(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MemberListResponse{
		Members: members,
		Count:   len(members),
	})
}

// Stats handles GET /projects/{projectID}/stats.
func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "projectID", nil)
	if !ok {
		return
	}
	if !h.requireMember(w, r, projectID, userID) {
		return
	}

	stats, err := h.projectStore.GetStats(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
