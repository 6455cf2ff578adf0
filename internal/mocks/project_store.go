package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// MockProjectStore implements store.ProjectStore for testing
type MockProjectStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, project *domain.Project) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	ListForUserFn  func(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)
	UpdateFn       func(ctx context.Context, project *domain.Project) error
	DeleteFn       func(ctx context.Context, id uuid.UUID) error
	AddMemberFn    func(ctx context.Context, member *domain.ProjectMember) error
	RemoveMemberFn func(ctx context.Context, projectID, userID uuid.UUID) error
	IsMemberFn     func(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	GetStatsFn     func(ctx context.Context, projectID uuid.UUID) (*store.ProjectStats, error)

	// Data for default implementation
	Projects map[uuid.UUID]*domain.Project
	Members  map[uuid.UUID][]*domain.ProjectMember // project id -> members

	// Stats returned by the default GetStats implementation
	Stats *store.ProjectStats
}

// NewMockProjectStore creates a new mock store with initialized defaults
func NewMockProjectStore() *MockProjectStore {
	return &MockProjectStore{
		Projects: make(map[uuid.UUID]*domain.Project),
		Members:  make(map[uuid.UUID][]*domain.ProjectMember),
	}
}

// AddProject stores a project and its owner membership. Test setup helper.
func (m *MockProjectStore) AddProject(project *domain.Project) *MockProjectStore {
	m.Projects[project.ID] = project
	member, _ := domain.NewProjectMember(project.ID, project.OwnerID, domain.ProjectRoleOwner)
	m.Members[project.ID] = append(m.Members[project.ID], member)
	return m
}

// AddMemberUser records a plain membership. Test setup helper.
func (m *MockProjectStore) AddMemberUser(projectID, userID uuid.UUID) *MockProjectStore {
	member, _ := domain.NewProjectMember(projectID, userID, domain.ProjectRoleMember)
	m.Members[projectID] = append(m.Members[projectID], member)
	return m
}

// Create implements the ProjectStore interface
func (m *MockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, project)
	}
	m.AddProject(project)
	return nil
}

// GetByID implements the ProjectStore interface
func (m *MockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	project, ok := m.Projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	return project, nil
}

// ListForUser implements the ProjectStore interface
func (m *MockProjectStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID)
	}

	var projects []*domain.Project
	for projectID, members := range m.Members {
		for _, member := range members {
			if member.UserID == userID {
				if project, ok := m.Projects[projectID]; ok {
					projects = append(projects, project)
				}
				break
			}
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// Update implements the ProjectStore interface
func (m *MockProjectStore) Update(ctx context.Context, project *domain.Project) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, project)
	}

	if _, ok := m.Projects[project.ID]; !ok {
		return store.ErrProjectNotFound
	}
	m.Projects[project.ID] = project
	return nil
}

// Delete implements the ProjectStore interface
func (m *MockProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, ok := m.Projects[id]; !ok {
		return store.ErrProjectNotFound
	}
	delete(m.Projects, id)
	delete(m.Members, id)
	return nil
}

// AddMember implements the ProjectStore interface
func (m *MockProjectStore) AddMember(ctx context.Context, member *domain.ProjectMember) error {
	if m.AddMemberFn != nil {
		return m.AddMemberFn(ctx, member)
	}

	for _, existing := range m.Members[member.ProjectID] {
		if existing.UserID == member.UserID {
			return store.ErrMemberExists
		}
	}
	m.Members[member.ProjectID] = append(m.Members[member.ProjectID], member)
	return nil
}

// RemoveMember implements the ProjectStore interface
func (m *MockProjectStore) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	if m.RemoveMemberFn != nil {
		return m.RemoveMemberFn(ctx, projectID, userID)
	}

	members := m.Members[projectID]
	for i, member := range members {
		if member.UserID == userID {
			m.Members[projectID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return store.ErrMemberNotFound
}

// ListMembers implements the ProjectStore interface
func (m *MockProjectStore) ListMembers(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error) {
	return m.Members[projectID], nil
}

// IsMember implements the ProjectStore interface
func (m *MockProjectStore) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	if m.IsMemberFn != nil {
		return m.IsMemberFn(ctx, projectID, userID)
	}

	for _, member := range m.Members[projectID] {
		if member.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// MemberIDs implements the ProjectStore interface
func (m *MockProjectStore) MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, member := range m.Members[projectID] {
		ids = append(ids, member.UserID)
	}
	return ids, nil
}

// GetStats implements the ProjectStore interface
func (m *MockProjectStore) GetStats(ctx context.Context, projectID uuid.UUID) (*store.ProjectStats, error) {
	if m.GetStatsFn != nil {
		return m.GetStatsFn(ctx, projectID)
	}
	if m.Stats != nil {
		return m.Stats, nil
	}
	return &store.ProjectStats{ProjectID: projectID}, nil
}

// WithTx implements the ProjectStore interface for transaction support
func (m *MockProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return m
}
