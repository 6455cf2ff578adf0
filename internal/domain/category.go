package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Common category validation errors
var (
	ErrEmptyCategoryID     = errors.New("category ID cannot be empty")
	ErrEmptyCategoryName   = errors.New("category name cannot be empty")
	ErrCategoryNameTooLong = errors.New("category name must be at most 50 characters long")
	ErrEmptyCategoryUserID = errors.New("category user ID cannot be empty")
	ErrInvalidCategoryColor = errors.New("category color must be a hex color like #007bff")
)

// DefaultCategoryColor is used when no color is supplied.
const DefaultCategoryColor = "#007bff"

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category is a personal label a user can attach to tasks.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCategory creates a new Category for the given user. An empty color falls
// back to DefaultCategoryColor.
func NewCategory(userID uuid.UUID, name, color string) (*Category, error) {
	if color == "" {
		color = DefaultCategoryColor
	}

	now := time.Now().UTC()
	category := &Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	return category, nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCategoryID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptyCategoryUserID
	}
	if c.Name == "" {
		return ErrEmptyCategoryName
	}
	if len(c.Name) > 50 {
		return ErrCategoryNameTooLong
	}
	if !hexColorPattern.MatchString(c.Color) {
		return ErrInvalidCategoryColor
	}
	return nil
}
