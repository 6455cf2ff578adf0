package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// MockCommentStore implements store.CommentStore for testing
type MockCommentStore struct {
	// Function fields for customizable behavior
	CreateFn  func(ctx context.Context, comment *domain.TaskComment) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.TaskComment, error)
	UpdateFn  func(ctx context.Context, comment *domain.TaskComment) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation
	Comments map[uuid.UUID]*domain.TaskComment
}

// NewMockCommentStore creates a new mock store with initialized defaults
func NewMockCommentStore() *MockCommentStore {
	return &MockCommentStore{
		Comments: make(map[uuid.UUID]*domain.TaskComment),
	}
}

// Add stores a comment directly. Test setup helper.
func (m *MockCommentStore) Add(comment *domain.TaskComment) *MockCommentStore {
	m.Comments[comment.ID] = comment
	return m
}

// Create implements the CommentStore interface
func (m *MockCommentStore) Create(ctx context.Context, comment *domain.TaskComment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, comment)
	}
	m.Comments[comment.ID] = comment
	return nil
}

// GetByID implements the CommentStore interface
func (m *MockCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskComment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	comment, ok := m.Comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	return comment, nil
}

// ListForTask implements the CommentStore interface
func (m *MockCommentStore) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskComment, error) {
	var comments []*domain.TaskComment
	for _, comment := range m.Comments {
		if comment.TaskID == taskID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// Update implements the CommentStore interface
func (m *MockCommentStore) Update(ctx context.Context, comment *domain.TaskComment) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, comment)
	}

	if _, ok := m.Comments[comment.ID]; !ok {
		return store.ErrCommentNotFound
	}
	m.Comments[comment.ID] = comment
	return nil
}

// Delete implements the CommentStore interface
func (m *MockCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, ok := m.Comments[id]; !ok {
		return store.ErrCommentNotFound
	}
	delete(m.Comments, id)
	return nil
}

// WithTx implements the CommentStore interface for transaction support
func (m *MockCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return m
}
