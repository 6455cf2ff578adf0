package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

func newTaskStore(t *testing.T) (*PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresTaskStore(db, nil), mock
}

func taskRows(task *domain.Task) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "status", "priority", "project_id",
		"assigned_to", "created_by", "due_date", "created_at", "updated_at",
	}).AddRow(
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.ProjectID, task.AssignedTo, task.CreatedBy, task.DueDate,
		task.CreatedAt, task.UpdatedAt,
	)
}

func testTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(uuid.New(), uuid.New(), "Write docs", "", domain.TaskPriorityMedium)
	require.NoError(t, err)
	return task
}

func TestTaskStoreCreate(t *testing.T) {
	taskStore, mock := newTaskStore(t)
	task := testTask(t)

	mock.ExpectExec("INSERT INTO tasks").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, taskStore.Create(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreCreate_MissingProject(t *testing.T) {
	taskStore, mock := newTaskStore(t)
	task := testTask(t)

	mock.ExpectExec("INSERT INTO tasks").
		WillReturnError(pgError(foreignKeyViolationCode, "tasks_project_id_fkey"))

	err := taskStore.Create(context.Background(), task)

	assert.ErrorIs(t, err, store.ErrForeignKeyViolation)
}

func TestTaskStoreGetByID_NotFound(t *testing.T) {
	taskStore, mock := newTaskStore(t)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := taskStore.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreList_Filters(t *testing.T) {
	taskStore, mock := newTaskStore(t)

	projectID := uuid.New()
	status := domain.TaskStatusPending
	task := testTask(t)

	// Both filters should land in the query as positional args.
	mock.ExpectQuery("SELECT (.+) FROM tasks t WHERE t.project_id = \\$1 AND t.status = \\$2").
		WithArgs(projectID, status).
		WillReturnRows(taskRows(task))

	tasks, err := taskStore.List(context.Background(), store.TaskFilter{
		ProjectID: &projectID,
		Status:    &status,
	})

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
}

func TestTaskStoreList_Empty(t *testing.T) {
	taskStore, mock := newTaskStore(t)

	mock.ExpectQuery("SELECT (.+) FROM tasks t").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "status", "priority", "project_id",
			"assigned_to", "created_by", "due_date", "created_at", "updated_at",
		}))

	tasks, err := taskStore.List(context.Background(), store.TaskFilter{})

	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskStoreUpdate_NotFound(t *testing.T) {
	taskStore, mock := newTaskStore(t)
	task := testTask(t)

	mock.ExpectExec("UPDATE tasks").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := taskStore.Update(context.Background(), task)

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreDelete(t *testing.T) {
	taskStore, mock := newTaskStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM tasks").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, taskStore.Delete(context.Background(), id))
}

func TestTaskStoreGetUserStats(t *testing.T) {
	taskStore, mock := newTaskStore(t)
	userID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"assigned", "created", "completed", "in_progress", "pending", "overdue",
		}).AddRow(5, 3, 2, 1, 2, 1))

	stats, err := taskStore.GetUserStats(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalAssigned)
	assert.Equal(t, 3, stats.TotalCreated)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Overdue)
}
