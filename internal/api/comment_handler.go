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

// CommentHandler handles task comment API requests.
type CommentHandler struct {
	commentStore store.CommentStore
	taskStore    store.TaskStore
	projectStore store.ProjectStore
	userStore    store.UserStore
	broadcaster  *realtime.Broadcaster
	validator    *validator.Validate
}

// NewCommentHandler creates a new CommentHandler with the given dependencies.
// broadcaster may be nil, in which case no events are published.
func NewCommentHandler(
	commentStore store.CommentStore,
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	userStore store.UserStore,
	broadcaster *realtime.Broadcaster,
) *CommentHandler {
	return &CommentHandler{
		commentStore: commentStore,
		taskStore:    taskStore,
		projectStore: projectStore,
		userStore:    userStore,
		broadcaster:  broadcaster,
		validator:    validator.New(),
	}
}

func (h *CommentHandler) publish(event realtime.Event) {
	publishEvent(h.broadcaster, event)
}

// taskForMember loads a task and verifies the caller belongs to its project.
func (h *CommentHandler) taskForMember(w http.ResponseWriter, r *http.Request, taskID, userID uuid.UUID) (*domain.Task, bool) {
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

// List handles GET /tasks/{taskID}/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}
	if _, ok := h.taskForMember(w, r, taskID, userID); !ok {
		return
	}

	comments, err := h.commentStore.ListForTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CommentListResponse{
		Comments: comments,
		Count:    len(comments),
	})
}

// Create handles POST /tasks/{taskID}/comments.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, ok := h.taskForMember(w, r, taskID, userID)
	if !ok {
		return
	}

	comment, err := domain.NewTaskComment(taskID, userID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.commentStore.Create(r.Context(), comment); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	actor := resolveActor(r, h.userStore, userID)
	h.publish(realtime.NewCommentAddedEvent(comment, task, actor))
	if task.AssignedTo != nil && *task.AssignedTo != userID {
		h.publish(realtime.NewNotificationEvent(*task.AssignedTo, "comment_added",
			"New comment on task \""+task.Title+"\"", &task.ID))
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, comment)
}

// Update handles PUT /comments/{commentID}. Author only.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := handleUserIDAndPathUUID(w, r, "commentID", nil)
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	comment, err := h.commentStore.GetByID(r.Context(), commentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if comment.AuthorID != userID {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Only the comment author can edit it")
		return
	}

	if err := comment.Edit(req.Content); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.commentStore.Update(r.Context(), comment); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, comment)
}

// Delete handles DELETE /comments/{commentID}. Allowed for the author and
// the project owner.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := handleUserIDAndPathUUID(w, r, "commentID", nil)
	if !ok {
		return
	}

	comment, err := h.commentStore.GetByID(r.Context(), commentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if comment.AuthorID != userID {
		task, err := h.taskStore.GetByID(r.Context(), comment.TaskID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		project, err := h.projectStore.GetByID(r.Context(), task.ProjectID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		if project.OwnerID != userID {
			HandleAPIError(w, r, domain.ErrUnauthorized, "Only the comment author or project owner can delete it")
			return
		}
	}

	if err := h.commentStore.Delete(r.Context(), commentID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Comment deleted successfully",
	})
}
