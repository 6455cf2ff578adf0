package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// MockAttachmentStore implements store.AttachmentStore for testing
type MockAttachmentStore struct {
	// Function fields for customizable behavior
	CreateFn  func(ctx context.Context, attachment *domain.Attachment) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation
	Attachments map[uuid.UUID]*domain.Attachment
}

// NewMockAttachmentStore creates a new mock store with initialized defaults
func NewMockAttachmentStore() *MockAttachmentStore {
	return &MockAttachmentStore{
		Attachments: make(map[uuid.UUID]*domain.Attachment),
	}
}

// Add stores an attachment directly. Test setup helper.
func (m *MockAttachmentStore) Add(attachment *domain.Attachment) *MockAttachmentStore {
	m.Attachments[attachment.ID] = attachment
	return m
}

// Create implements the AttachmentStore interface
func (m *MockAttachmentStore) Create(ctx context.Context, attachment *domain.Attachment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, attachment)
	}
	m.Attachments[attachment.ID] = attachment
	return nil
}

// GetByID implements the AttachmentStore interface
func (m *MockAttachmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	attachment, ok := m.Attachments[id]
	if !ok {
		return nil, store.ErrAttachmentNotFound
	}
	return attachment, nil
}

// ListForTask implements the AttachmentStore interface
func (m *MockAttachmentStore) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	for _, attachment := range m.Attachments {
		if attachment.TaskID == taskID {
			attachments = append(attachments, attachment)
		}
	}
	sort.Slice(attachments, func(i, j int) bool {
		return attachments[i].CreatedAt.After(attachments[j].CreatedAt)
	})
	return attachments, nil
}

// Delete implements the AttachmentStore interface
func (m *MockAttachmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, ok := m.Attachments[id]; !ok {
		return store.ErrAttachmentNotFound
	}
	delete(m.Attachments, id)
	return nil
}

// WithTx implements the AttachmentStore interface for transaction support
func (m *MockAttachmentStore) WithTx(tx *sql.Tx) store.AttachmentStore {
	return m
}
