package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, task *domain.Task) error
	GetByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn         func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateFn       func(ctx context.Context, task *domain.Task) error
	DeleteFn       func(ctx context.Context, id uuid.UUID) error
	GetUserStatsFn func(ctx context.Context, userID uuid.UUID) (*store.UserTaskStats, error)

	// Data for default implementation
	Tasks map[uuid.UUID]*domain.Task

	// UserStats returned by the default GetUserStats implementation
	UserStats *store.UserTaskStats
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Add stores a task directly. Test setup helper.
func (m *MockTaskStore) Add(task *domain.Task) *MockTaskStore {
	m.Tasks[task.ID] = task
	return m
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	task, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	var tasks []*domain.Task
	for _, task := range m.Tasks {
		if matchesFilter(task, filter) {
			tasks = append(tasks, task)
		}
	}
	if filter.SortByPriority {
		sort.Slice(tasks, func(i, j int) bool {
			ri, rj := priorityRank(tasks[i].Priority), priorityRank(tasks[j].Priority)
			if ri != rj {
				return ri < rj
			}
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	} else {
		sort.Slice(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return []*domain.Task{}, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tasks) {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

func priorityRank(p domain.TaskPriority) int {
	switch p {
	case domain.TaskPriorityCritical:
		return 0
	case domain.TaskPriorityHigh:
		return 1
	case domain.TaskPriorityMedium:
		return 2
	default:
		return 3
	}
}

func matchesFilter(task *domain.Task, filter store.TaskFilter) bool {
	if filter.ProjectID != nil && task.ProjectID != *filter.ProjectID {
		return false
	}
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	if filter.AssignedTo != nil && (task.AssignedTo == nil || *task.AssignedTo != *filter.AssignedTo) {
		return false
	}
	if filter.CreatedBy != nil && task.CreatedBy != *filter.CreatedBy {
		return false
	}
	if filter.Overdue && !task.IsOverdue() {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(task.Title), needle) &&
			!strings.Contains(strings.ToLower(task.Description), needle) {
			return false
		}
	}
	// CategoryID filtering needs the join table; tests use ListFn for that.
	return true
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	if _, ok := m.Tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	m.Tasks[task.ID] = task
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, ok := m.Tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// GetUserStats implements the TaskStore interface
func (m *MockTaskStore) GetUserStats(ctx context.Context, userID uuid.UUID) (*store.UserTaskStats, error) {
	if m.GetUserStatsFn != nil {
		return m.GetUserStatsFn(ctx, userID)
	}
	if m.UserStats != nil {
		return m.UserStats, nil
	}
	return &store.UserTaskStats{}, nil
}

// WithTx implements the TaskStore interface for transaction support
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
