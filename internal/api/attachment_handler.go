package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/files"
	"github.com/taskhive/taskhive/internal/platform/logger"
	"github.com/taskhive/taskhive/internal/realtime"
	"github.com/taskhive/taskhive/internal/redact"
	"github.com/taskhive/taskhive/internal/store"
)

// AttachmentHandler handles task attachment API requests. Metadata lives in
// the attachment store; bytes live in the blob store.
type AttachmentHandler struct {
	attachmentStore store.AttachmentStore
	taskStore       store.TaskStore
	projectStore    store.ProjectStore
	userStore       store.UserStore
	blobs           *files.DiskStore
	broadcaster     *realtime.Broadcaster
}

// NewAttachmentHandler creates a new AttachmentHandler with the given
// dependencies. broadcaster may be nil.
func NewAttachmentHandler(
	attachmentStore store.AttachmentStore,
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	userStore store.UserStore,
	blobs *files.DiskStore,
	broadcaster *realtime.Broadcaster,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentStore: attachmentStore,
		taskStore:       taskStore,
		projectStore:    projectStore,
		userStore:       userStore,
		blobs:           blobs,
		broadcaster:     broadcaster,
	}
}

// taskForMember loads a task and verifies the caller belongs to its project.
func (h *AttachmentHandler) taskForMember(w http.ResponseWriter, r *http.Request, taskID, userID uuid.UUID) (*domain.Task, bool) {
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

// Upload handles POST /tasks/{taskID}/attachments. Expects a multipart form
// with the file under the "file" field.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}

	task, ok := h.taskForMember(w, r, taskID, userID)
	if !ok {
		return
	}

	// Cap the whole request body, not just the file part.
	r.Body = http.MaxBytesReader(w, r.Body, h.blobs.MaxBytes()+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "File exceeds the maximum allowed size")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing or invalid file field")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warn("failed to close uploaded file", slog.String("error", redact.Error(err)))
		}
	}()

	saved, err := h.blobs.Save(header.Filename, file)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	attachment, err := domain.NewAttachment(
		task.ID, userID,
		saved.FileName, sanitizeFilename(header),
		saved.Path, saved.MimeType, saved.Size,
	)
	if err != nil {
		h.discardBlob(r, saved.Path)
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.attachmentStore.Create(r.Context(), attachment); err != nil {
		h.discardBlob(r, saved.Path)
		HandleAPIError(w, r, err, "")
		return
	}

	if h.broadcaster != nil && task.AssignedTo != nil && *task.AssignedTo != userID {
		h.broadcaster.Publish(realtime.NewNotificationEvent(*task.AssignedTo, "attachment_added",
			"New attachment on task \""+task.Title+"\"", &task.ID))
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, attachment)
}

// discardBlob removes an orphaned file after a failed upload.
func (h *AttachmentHandler) discardBlob(r *http.Request, path string) {
	if err := h.blobs.Remove(path); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("failed to remove orphaned upload", slog.String("error", redact.Error(err)))
	}
}

// List handles GET /tasks/{taskID}/attachments.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID", nil)
	if !ok {
		return
	}
	if _, ok := h.taskForMember(w, r, taskID, userID); !ok {
		return
	}

	attachments, err := h.attachmentStore.ListForTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AttachmentListResponse{
		Attachments: attachments,
		Count:       len(attachments),
	})
}

// Download handles GET /attachments/{attachmentID}/download.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, attachmentID, ok := handleUserIDAndPathUUID(w, r, "attachmentID", nil)
	if !ok {
		return
	}

	attachment, err := h.attachmentStore.GetByID(r.Context(), attachmentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if _, ok := h.taskForMember(w, r, attachment.TaskID, userID); !ok {
		return
	}

	f, err := h.blobs.Open(attachment.FilePath)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("attachment file missing from blob store",
				slog.String("attachment_id", attachment.ID.String()),
				slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusNotFound, "Attachment file not found")
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", attachment.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.FileSize, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachment.OriginalFileName+`"`)
	http.ServeContent(w, r, attachment.OriginalFileName, attachment.CreatedAt, f)
}

// Delete handles DELETE /attachments/{attachmentID}. Allowed for the
// uploader and the project owner. The record is removed first; a leftover
// blob is logged, not surfaced.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, attachmentID, ok := handleUserIDAndPathUUID(w, r, "attachmentID", nil)
	if !ok {
		return
	}

	attachment, err := h.attachmentStore.GetByID(r.Context(), attachmentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, ok := h.taskForMember(w, r, attachment.TaskID, userID)
	if !ok {
		return
	}

	if attachment.UploadedBy != userID {
		project, err := h.projectStore.GetByID(r.Context(), task.ProjectID)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		if project.OwnerID != userID {
			HandleAPIError(w, r, domain.ErrUnauthorized, "Only the uploader or project owner can delete an attachment")
			return
		}
	}

	if err := h.attachmentStore.Delete(r.Context(), attachmentID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.discardBlob(r, attachment.FilePath)

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"message": "Attachment deleted successfully",
	})
}

// sanitizeFilename strips any path components a client smuggled into the
// multipart file name.
func sanitizeFilename(header *multipart.FileHeader) string {
	name := header.Filename
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' || name[i] == '\\' {
			return name[i+1:]
		}
	}
	return name
}
