package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidProjectStatus is returned when a project status is not valid.
	ErrInvalidProjectStatus = errors.New("invalid project status")

	// ErrInvalidTaskStatus is returned when a task status is not valid.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority is returned when a task priority is not valid.
	ErrInvalidTaskPriority = errors.New("invalid task priority")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// validationSentinels lists every sentinel an entity Validate method can
// return, so callers can classify an error without enumerating them.
var validationSentinels = []error{
	ErrValidation,
	ErrInvalidID,
	ErrInvalidEmail,
	ErrInvalidPassword,
	ErrEmptyContent,
	ErrInvalidProjectStatus,
	ErrInvalidTaskStatus,
	ErrInvalidTaskPriority,
	ErrEmptyUserID,
	ErrEmptyUsername,
	ErrUsernameTooLong,
	ErrEmptyEmail,
	ErrEmptyName,
	ErrPasswordTooShort,
	ErrPasswordTooLong,
	ErrEmptyPassword,
	ErrEmptyHashedPassword,
	ErrEmptyProjectID,
	ErrEmptyProjectName,
	ErrProjectNameTooLong,
	ErrEmptyProjectOwnerID,
	ErrEmptyMemberUserID,
	ErrInvalidMemberRole,
	ErrEmptyTaskID,
	ErrEmptyTaskTitle,
	ErrTaskTitleTooLong,
	ErrEmptyTaskProjectID,
	ErrEmptyTaskCreatorID,
	ErrEmptyCategoryID,
	ErrEmptyCategoryName,
	ErrCategoryNameTooLong,
	ErrEmptyCategoryUserID,
	ErrInvalidCategoryColor,
	ErrEmptyCommentID,
	ErrEmptyCommentTaskID,
	ErrEmptyCommentAuthorID,
	ErrCommentTooLong,
	ErrEmptyAttachmentID,
	ErrEmptyAttachmentFileName,
	ErrEmptyAttachmentPath,
	ErrEmptyAttachmentTaskID,
	ErrEmptyAttachmentUploader,
	ErrInvalidAttachmentSize,
}

// IsValidationError reports whether err is, or wraps, one of the domain
// validation sentinels. Validation messages are safe to show to clients.
func IsValidationError(err error) bool {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// ValidationError carries the field that failed validation alongside the
// sentinel it wraps, so the API layer can report a precise message.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel to support errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping the given sentinel.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
