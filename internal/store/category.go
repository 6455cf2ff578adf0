package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
)

// CategoryStore defines the interface for category persistence, including
// the task-category assignment table.
type CategoryStore interface {
	// Create saves a new category.
	// Returns ErrCategoryExists if the user already has one with that name.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique ID.
	// Returns ErrCategoryNotFound if the category does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// ListForUser returns all of a user's categories ordered by name.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error)

	// Update modifies an existing category.
	// Returns ErrCategoryNotFound if the category does not exist.
	// Returns ErrCategoryExists on a name conflict.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category and its task assignments.
	// Returns ErrCategoryNotFound if the category does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AssignToTask links a category to a task. Assigning an already-assigned
	// pair is a no-op.
	// Returns ErrForeignKeyViolation if the task or category does not exist.
	AssignToTask(ctx context.Context, taskID, categoryID uuid.UUID) error

	// RemoveFromTask unlinks a category from a task.
	RemoveFromTask(ctx context.Context, taskID, categoryID uuid.UUID) error

	// ListForTask returns the categories assigned to a task.
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Category, error)

	// WithTx returns a new CategoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CategoryStore
}
