package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=80"`
	Email     string `json:"email"      validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name"  validate:"required,max=50"`
	Password  string `json:"password"   validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT used for API authorization. The JSON field is
	// named "token" for compatibility with existing clients.
	AccessToken string `json:"token"`

	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires.
	ExpiresAt string `json:"expires_at,omitempty"`

	User *domain.User `json:"user,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// UpdateProfileRequest defines the payload for profile updates. Nil fields
// are left unchanged.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,min=1,max=50"`
}

// ChangePasswordRequest defines the payload for the password change endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=12,max=72"`
}

// CreateProjectRequest defines the payload for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateProjectRequest defines the payload for updating a project. Nil
// fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string `json:"status,omitempty"      validate:"omitempty,oneof=active inactive completed archived"`
}

// AddMemberRequest defines the payload for adding a project member.
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// ProjectListResponse wraps the projects visible to the caller.
type ProjectListResponse struct {
	Projects []*domain.Project `json:"projects"`
	Count    int               `json:"count"`
}

// MemberListResponse wraps a project's membership roster.
type MemberListResponse struct {
	Members []*domain.ProjectMember `json:"members"`
	Count   int                     `json:"count"`
}

// CreateTaskRequest defines the payload for creating a task in a project.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high critical"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest defines the payload for updating a task. Nil fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *string    `json:"status,omitempty"      validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    *string    `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// AssignTaskRequest defines the payload for assigning a task to a user.
type AssignTaskRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// TaskListResponse wraps a filtered task listing.
type TaskListResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Count int            `json:"count"`
}

// CreateCategoryRequest defines the payload for creating a category.
type CreateCategoryRequest struct {
	Name  string `json:"name"  validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateCategoryRequest defines the payload for updating a category.
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"  validate:"omitempty,min=1,max=50"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// AssignCategoryRequest defines the payload for attaching a category to a task.
type AssignCategoryRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
}

// CategoryListResponse wraps the caller's categories.
type CategoryListResponse struct {
	Categories []*domain.Category `json:"categories"`
	Count      int                `json:"count"`
}

// CreateCommentRequest defines the payload for commenting on a task.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// UpdateCommentRequest defines the payload for editing a comment.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// CommentListResponse wraps a task's comments.
type CommentListResponse struct {
	Comments []*domain.TaskComment `json:"comments"`
	Count    int                   `json:"count"`
}

// AttachmentListResponse wraps a task's attachments.
type AttachmentListResponse struct {
	Attachments []*domain.Attachment `json:"attachments"`
	Count       int                  `json:"count"`
}

// UserListResponse wraps a user search result.
type UserListResponse struct {
	Users []*domain.User `json:"users"`
	Count int            `json:"count"`
}

// DashboardResponse aggregates the caller's task statistics and projects.
type DashboardResponse struct {
	TaskStats *store.UserTaskStats `json:"task_stats"`
	Projects  []*domain.Project    `json:"projects"`
	Overdue   []*domain.Task       `json:"overdue_tasks"`
}
