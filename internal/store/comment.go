package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
)

// CommentStore defines the interface for task comment persistence.
type CommentStore interface {
	// Create saves a new comment.
	// Returns ErrForeignKeyViolation if the task or author does not exist.
	Create(ctx context.Context, comment *domain.TaskComment) error

	// GetByID retrieves a comment by its unique ID.
	// Returns ErrCommentNotFound if the comment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskComment, error)

	// ListForTask returns all comments on a task, oldest first.
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskComment, error)

	// Update modifies an existing comment's content and edited flag.
	// Returns ErrCommentNotFound if the comment does not exist.
	Update(ctx context.Context, comment *domain.TaskComment) error

	// Delete removes a comment.
	// Returns ErrCommentNotFound if the comment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CommentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CommentStore
}
