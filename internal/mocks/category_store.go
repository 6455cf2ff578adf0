package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// MockCategoryStore implements store.CategoryStore for testing
type MockCategoryStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, category *domain.Category) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	UpdateFn       func(ctx context.Context, category *domain.Category) error
	DeleteFn       func(ctx context.Context, id uuid.UUID) error
	AssignToTaskFn func(ctx context.Context, taskID, categoryID uuid.UUID) error

	// Data for default implementation
	Categories  map[uuid.UUID]*domain.Category
	Assignments map[uuid.UUID][]uuid.UUID // task id -> category ids
}

// NewMockCategoryStore creates a new mock store with initialized defaults
func NewMockCategoryStore() *MockCategoryStore {
	return &MockCategoryStore{
		Categories:  make(map[uuid.UUID]*domain.Category),
		Assignments: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Add stores a category directly. Test setup helper.
func (m *MockCategoryStore) Add(category *domain.Category) *MockCategoryStore {
	m.Categories[category.ID] = category
	return m
}

// Create implements the CategoryStore interface
func (m *MockCategoryStore) Create(ctx context.Context, category *domain.Category) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, category)
	}

	for _, existing := range m.Categories {
		if existing.UserID == category.UserID && existing.Name == category.Name {
			return store.ErrCategoryExists
		}
	}
	m.Categories[category.ID] = category
	return nil
}

// GetByID implements the CategoryStore interface
func (m *MockCategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	category, ok := m.Categories[id]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	return category, nil
}

// ListForUser implements the CategoryStore interface
func (m *MockCategoryStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, category := range m.Categories {
		if category.UserID == userID {
			categories = append(categories, category)
		}
	}
	return categories, nil
}

// Update implements the CategoryStore interface
func (m *MockCategoryStore) Update(ctx context.Context, category *domain.Category) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, category)
	}

	if _, ok := m.Categories[category.ID]; !ok {
		return store.ErrCategoryNotFound
	}
	m.Categories[category.ID] = category
	return nil
}

// Delete implements the CategoryStore interface
func (m *MockCategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, ok := m.Categories[id]; !ok {
		return store.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	for taskID := range m.Assignments {
		m.removeAssignment(taskID, id)
	}
	return nil
}

// AssignToTask implements the CategoryStore interface
func (m *MockCategoryStore) AssignToTask(ctx context.Context, taskID, categoryID uuid.UUID) error {
	if m.AssignToTaskFn != nil {
		return m.AssignToTaskFn(ctx, taskID, categoryID)
	}

	for _, id := range m.Assignments[taskID] {
		if id == categoryID {
			return nil
		}
	}
	m.Assignments[taskID] = append(m.Assignments[taskID], categoryID)
	return nil
}

// RemoveFromTask implements the CategoryStore interface
func (m *MockCategoryStore) RemoveFromTask(ctx context.Context, taskID, categoryID uuid.UUID) error {
	m.removeAssignment(taskID, categoryID)
	return nil
}

func (m *MockCategoryStore) removeAssignment(taskID, categoryID uuid.UUID) {
	ids := m.Assignments[taskID]
	for i, id := range ids {
		if id == categoryID {
			m.Assignments[taskID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

// ListForTask implements the CategoryStore interface
func (m *MockCategoryStore) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, id := range m.Assignments[taskID] {
		if category, ok := m.Categories[id]; ok {
			categories = append(categories, category)
		}
	}
	return categories, nil
}

// WithTx implements the CategoryStore interface for transaction support
func (m *MockCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return m
}
