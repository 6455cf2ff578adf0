package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

// Project status constants
const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusInactive  ProjectStatus = "inactive"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Project member role constants. Owners are tracked both on the project row
// and as a member row so that membership queries stay uniform.
const (
	ProjectRoleOwner  = "owner"
	ProjectRoleMember = "member"
)

// Common project validation errors
var (
	ErrEmptyProjectID      = errors.New("project ID cannot be empty")
	ErrEmptyProjectName    = errors.New("project name cannot be empty")
	ErrProjectNameTooLong  = errors.New("project name must be at most 100 characters long")
	ErrEmptyProjectOwnerID = errors.New("project owner ID cannot be empty")
	ErrEmptyMemberUserID   = errors.New("member user ID cannot be empty")
	ErrInvalidMemberRole   = errors.New("invalid project member role")
)

// Project represents a collection of tasks shared by a set of member users.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject creates a new active Project owned by the given user.
// Returns an error if validation fails.
func NewProject(ownerID uuid.UUID, name, description string) (*Project, error) {
	now := time.Now().UTC()
	project := &Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Status:      ProjectStatusActive,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	if len(p.Name) > 100 {
		return ErrProjectNameTooLong
	}
	if p.OwnerID == uuid.Nil {
		return ErrEmptyProjectOwnerID
	}
	if !p.Status.IsValid() {
		return ErrInvalidProjectStatus
	}
	return nil
}

// IsValid checks if the project status is one of the predefined valid statuses.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusInactive, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

// ProjectMember links a user to a project with a role.
type ProjectMember struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// NewProjectMember creates a membership row for the given project and user.
func NewProjectMember(projectID, userID uuid.UUID, role string) (*ProjectMember, error) {
	member := &ProjectMember{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now().UTC(),
	}

	if err := member.Validate(); err != nil {
		return nil, err
	}

	return member, nil
}

// Validate checks if the ProjectMember has valid data.
func (m *ProjectMember) Validate() error {
	if m.ID == uuid.Nil {
		return ErrInvalidID
	}
	if m.ProjectID == uuid.Nil {
		return ErrEmptyProjectID
	}
	if m.UserID == uuid.Nil {
		return ErrEmptyMemberUserID
	}
	if m.Role != ProjectRoleOwner && m.Role != ProjectRoleMember {
		return ErrInvalidMemberRole
	}
	return nil
}
