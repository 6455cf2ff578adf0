package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common comment validation errors
var (
	ErrEmptyCommentID       = errors.New("comment ID cannot be empty")
	ErrEmptyCommentTaskID   = errors.New("comment task ID cannot be empty")
	ErrEmptyCommentAuthorID = errors.New("comment author ID cannot be empty")
	ErrCommentTooLong       = errors.New("comment must be at most 2000 characters long")
)

// TaskComment is a user-authored comment on a task.
type TaskComment struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	IsEdited  bool      `json:"is_edited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTaskComment creates a new comment on the given task.
// Returns an error if validation fails.
func NewTaskComment(taskID, authorID uuid.UUID, content string) (*TaskComment, error) {
	now := time.Now().UTC()
	comment := &TaskComment{
		ID:        uuid.New(),
		Content:   content,
		TaskID:    taskID,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the TaskComment has valid data.
func (c *TaskComment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCommentID
	}
	if c.TaskID == uuid.Nil {
		return ErrEmptyCommentTaskID
	}
	if c.AuthorID == uuid.Nil {
		return ErrEmptyCommentAuthorID
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	if len(c.Content) > 2000 {
		return ErrCommentTooLong
	}
	return nil
}

// Edit replaces the comment content and marks the comment as edited.
func (c *TaskComment) Edit(content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	if len(content) > 2000 {
		return ErrCommentTooLong
	}
	c.Content = content
	c.IsEdited = true
	c.UpdatedAt = time.Now().UTC()
	return nil
}
