package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
)

// AttachmentStore defines the interface for attachment metadata persistence.
// The file bytes themselves live in blob storage; this store tracks only
// their records.
type AttachmentStore interface {
	// Create saves a new attachment record.
	// Returns ErrForeignKeyViolation if the task or uploader does not exist.
	Create(ctx context.Context, attachment *domain.Attachment) error

	// GetByID retrieves an attachment by its unique ID.
	// Returns ErrAttachmentNotFound if the attachment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)

	// ListForTask returns all attachments on a task, newest first.
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error)

	// Delete removes an attachment record. The caller is responsible for
	// removing the stored file.
	// Returns ErrAttachmentNotFound if the attachment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new AttachmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AttachmentStore
}
