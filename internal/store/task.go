package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
)

// TaskFilter narrows task listings. Nil and zero fields are ignored.
type TaskFilter struct {
	ProjectID  *uuid.UUID
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssignedTo *uuid.UUID
	CreatedBy  *uuid.UUID
	CategoryID *uuid.UUID
	Overdue    bool

	// Search matches case-insensitively against title and description.
	Search string

	// SortByPriority orders critical first instead of newest first.
	SortByPriority bool

	// Limit and Offset paginate the listing. Limit 0 means no limit.
	Limit  int
	Offset int
}

// UserTaskStats summarizes the tasks assigned to or created by a user.
type UserTaskStats struct {
	TotalAssigned int `json:"total_assigned"`
	TotalCreated  int `json:"total_created"`
	Completed     int `json:"completed"`
	InProgress    int `json:"in_progress"`
	Pending       int `json:"pending"`
	Overdue       int `json:"overdue"`
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrForeignKeyViolation if the project or assignee does not exist.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns tasks matching the filter, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update modifies an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	// Returns ErrForeignKeyViolation if the new assignee does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task and its comments and attachments.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetUserStats computes task counts for a user's dashboard.
	GetUserStats(ctx context.Context, userID uuid.UUID) (*UserTaskStats, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
