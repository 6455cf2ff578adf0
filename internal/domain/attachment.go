package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common attachment validation errors
var (
	ErrEmptyAttachmentID       = errors.New("attachment ID cannot be empty")
	ErrEmptyAttachmentFileName = errors.New("attachment file name cannot be empty")
	ErrEmptyAttachmentPath     = errors.New("attachment file path cannot be empty")
	ErrEmptyAttachmentTaskID   = errors.New("attachment task ID cannot be empty")
	ErrEmptyAttachmentUploader = errors.New("attachment uploader ID cannot be empty")
	ErrInvalidAttachmentSize   = errors.New("attachment size must be positive")
)

// Attachment is a file uploaded against a task. FileName is the stored name
// on disk; OriginalFileName is what the uploader called it.
type Attachment struct {
	ID               uuid.UUID `json:"id"`
	FileName         string    `json:"file_name"`
	OriginalFileName string    `json:"original_file_name"`
	FilePath         string    `json:"-"` // Server-local path, never exposed to clients
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	TaskID           uuid.UUID `json:"task_id"`
	UploadedBy       uuid.UUID `json:"uploaded_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewAttachment creates a new Attachment record for a stored file.
// Returns an error if validation fails.
func NewAttachment(taskID, uploadedBy uuid.UUID, fileName, originalFileName, filePath, mimeType string, fileSize int64) (*Attachment, error) {
	attachment := &Attachment{
		ID:               uuid.New(),
		FileName:         fileName,
		OriginalFileName: originalFileName,
		FilePath:         filePath,
		FileSize:         fileSize,
		MimeType:         mimeType,
		TaskID:           taskID,
		UploadedBy:       uploadedBy,
		CreatedAt:        time.Now().UTC(),
	}

	if err := attachment.Validate(); err != nil {
		return nil, err
	}

	return attachment, nil
}

// Validate checks if the Attachment has valid data.
func (a *Attachment) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAttachmentID
	}
	if a.FileName == "" || a.OriginalFileName == "" {
		return ErrEmptyAttachmentFileName
	}
	if a.FilePath == "" {
		return ErrEmptyAttachmentPath
	}
	if a.TaskID == uuid.Nil {
		return ErrEmptyAttachmentTaskID
	}
	if a.UploadedBy == uuid.Nil {
		return ErrEmptyAttachmentUploader
	}
	if a.FileSize <= 0 {
		return ErrInvalidAttachmentSize
	}
	return nil
}
