package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
)

// ProjectStats summarizes the tasks of a single project. Progress is the
// share of completed tasks, rounded to one decimal place, 0 when the
// project has no tasks.
type ProjectStats struct {
	ProjectID       uuid.UUID `json:"project_id"`
	TotalTasks      int       `json:"total_tasks"`
	CompletedTasks  int       `json:"completed_tasks"`
	InProgressTasks int       `json:"in_progress_tasks"`
	PendingTasks    int       `json:"pending_tasks"`
	Progress        float64   `json:"progress_percentage"`
}

// ProjectStore defines the interface for project and membership persistence.
type ProjectStore interface {
	// Create saves a new project and records its owner as a member.
	// Returns validation errors from the domain Project if data is invalid.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// ListForUser returns all projects the user owns or is a member of,
	// newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)

	// Update modifies an existing project's details.
	// Returns ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes a project and, via cascading constraints, its tasks,
	// memberships, comments, and attachments.
	// Returns ErrProjectNotFound if the project does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddMember records a user as a member of a project.
	// Returns ErrMemberExists if the membership already exists.
	// Returns ErrForeignKeyViolation if the project or user does not exist.
	AddMember(ctx context.Context, member *domain.ProjectMember) error

	// RemoveMember deletes a membership row.
	// Returns ErrMemberNotFound if the user is not a member.
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error

	// ListMembers returns all members of a project with their roles.
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error)

	// IsMember reports whether the user is a member of the project.
	// Owners are members too.
	IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)

	// MemberIDs returns the user IDs of all members of a project.
	MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)

	// GetStats computes task counts and progress for a project.
	GetStats(ctx context.Context, projectID uuid.UUID) (*ProjectStats, error)

	// WithTx returns a new ProjectStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
