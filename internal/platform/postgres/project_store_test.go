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

func newProjectStore(t *testing.T) (*PostgresProjectStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresProjectStore(db, nil), mock
}

func TestProjectStoreCreate_AddsOwnerMembership(t *testing.T) {
	projectStore, mock := newProjectStore(t)

	project, err := domain.NewProject(uuid.New(), "Launch", "")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO projects").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO project_members").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, projectStore.Create(context.Background(), project))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectStoreAddMember_Duplicate(t *testing.T) {
	projectStore, mock := newProjectStore(t)

	member, err := domain.NewProjectMember(uuid.New(), uuid.New(), domain.ProjectRoleMember)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO project_members").
		WillReturnError(pgError(uniqueViolationCode, "unique_project_member"))

	err = projectStore.AddMember(context.Background(), member)

	assert.ErrorIs(t, err, store.ErrMemberExists)
}

func TestProjectStoreRemoveMember_NotFound(t *testing.T) {
	projectStore, mock := newProjectStore(t)

	mock.ExpectExec("DELETE FROM project_members").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := projectStore.RemoveMember(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, store.ErrMemberNotFound)
}

func TestProjectStoreIsMember(t *testing.T) {
	projectStore, mock := newProjectStore(t)

	projectID, userID := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(projectID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := projectStore.IsMember(context.Background(), projectID, userID)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProjectStoreGetStats(t *testing.T) {
	projectStore, mock := newProjectStore(t)
	projectID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "completed", "in_progress", "pending",
		}).AddRow(3, 1, 1, 1))

	stats, err := projectStore.GetStats(context.Background(), projectID)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.InDelta(t, 33.3, stats.Progress, 0.01)
}

func TestProjectStoreGetStats_NoTasks(t *testing.T) {
	projectStore, mock := newProjectStore(t)
	projectID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "completed", "in_progress", "pending",
		}).AddRow(0, 0, 0, 0))

	stats, err := projectStore.GetStats(context.Background(), projectID)

	require.NoError(t, err)
	assert.Zero(t, stats.Progress)
}

func TestProjectStoreGetByID_NotFound(t *testing.T) {
	projectStore, mock := newProjectStore(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM projects").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := projectStore.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}
