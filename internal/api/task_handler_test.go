package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/mocks"
	"github.com/taskhive/taskhive/internal/store"
)

type taskHandlerFixture struct {
	handler      *TaskHandler
	taskStore    *mocks.MockTaskStore
	projectStore *mocks.MockProjectStore
	userStore    *mocks.MockUserStore
	owner        *domain.User
	member       *domain.User
	stranger     *domain.User
	project      *domain.Project
}

func newTaskHandlerFixture(t *testing.T) *taskHandlerFixture {
	t.Helper()

	owner := newTestUser(t, "owner")
	member := newTestUser(t, "member")
	stranger := newTestUser(t, "stranger")
	project := newTestProject(t, owner.ID)

	taskStore := mocks.NewMockTaskStore()
	projectStore := mocks.NewMockProjectStore().AddProject(project).AddMemberUser(project.ID, member.ID)
	userStore := mocks.NewMockUserStore().Add(owner).Add(member).Add(stranger)

	return &taskHandlerFixture{
		handler:      NewTaskHandler(taskStore, projectStore, userStore, nil),
		taskStore:    taskStore,
		projectStore: projectStore,
		userStore:    userStore,
		owner:        owner,
		member:       member,
		stranger:     stranger,
		project:      project,
	}
}

func TestTaskHandlerCreate(t *testing.T) {
	t.Run("defaults to pending and medium priority", func(t *testing.T) {
		f := newTaskHandlerFixture(t)

		req := newAuthedRequest(t, http.MethodPost, "/api/projects/"+f.project.ID.String()+"/tasks",
			CreateTaskRequest{Title: "Write docs"}, f.member.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var task domain.Task
		decodeBody(t, rec, &task)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Equal(t, f.member.ID, task.CreatedBy)
		assert.Nil(t, task.AssignedTo)
	})

	t.Run("with assignee and due date", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

		req := newAuthedRequest(t, http.MethodPost, "/api/projects/"+f.project.ID.String()+"/tasks",
			CreateTaskRequest{
				Title:      "Review design",
				Priority:   "high",
				AssignedTo: &f.member.ID,
				DueDate:    &due,
			}, f.owner.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var task domain.Task
		decodeBody(t, rec, &task)
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, f.member.ID, *task.AssignedTo)
		assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
		require.NotNil(t, task.DueDate)
		assert.True(t, task.DueDate.Equal(due))
	})

	t.Run("assignee outside the project", func(t *testing.T) {
		f := newTaskHandlerFixture(t)

		req := newAuthedRequest(t, http.MethodPost, "/api/projects/"+f.project.ID.String()+"/tasks",
			CreateTaskRequest{Title: "Review design", AssignedTo: &f.stranger.ID}, f.owner.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Create(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Assignee must be a member of the project", errorMessage(t, rec))
		assert.Empty(t, f.taskStore.Tasks, "task should not be stored")
	})

	t.Run("non-member cannot create", func(t *testing.T) {
		f := newTaskHandlerFixture(t)

		req := newAuthedRequest(t, http.MethodPost, "/api/projects/"+f.project.ID.String()+"/tasks",
			CreateTaskRequest{Title: "Sneaky"}, f.stranger.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Create(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid priority", func(t *testing.T) {
		f := newTaskHandlerFixture(t)

		req := newAuthedRequest(t, http.MethodPost, "/api/projects/"+f.project.ID.String()+"/tasks",
			CreateTaskRequest{Title: "Bad", Priority: "urgent"}, f.member.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandlerList(t *testing.T) {
	f := newTaskHandlerFixture(t)

	pending := newTestTask(t, f.project.ID, f.owner.ID)
	completed := newTestTask(t, f.project.ID, f.owner.ID)
	require.NoError(t, completed.UpdateStatus(domain.TaskStatusCompleted))
	f.taskStore.Add(pending).Add(completed)

	t.Run("all project tasks", func(t *testing.T) {
		req := newAuthedRequest(t, http.MethodGet, "/api/projects/"+f.project.ID.String()+"/tasks", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TaskListResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("filtered by status", func(t *testing.T) {
		req := newAuthedRequest(t, http.MethodGet,
			"/api/projects/"+f.project.ID.String()+"/tasks?status=completed", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TaskListResponse
		decodeBody(t, rec, &resp)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, completed.ID, resp.Tasks[0].ID)
	})

	t.Run("search matches the title", func(t *testing.T) {
		req := newAuthedRequest(t, http.MethodGet,
			"/api/projects/"+f.project.ID.String()+"/tasks?search=LAUNCH", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TaskListResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, 2, resp.Count, "case-insensitive match on both fixture titles")
	})

	t.Run("paginated", func(t *testing.T) {
		req := newAuthedRequest(t, http.MethodGet,
			"/api/projects/"+f.project.ID.String()+"/tasks?limit=1", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.List(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TaskListResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		req := newAuthedRequest(t, http.MethodGet,
			"/api/projects/"+f.project.ID.String()+"/tasks?status=done", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.List(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-member forbidden", func(t *testing.T) {
		req := newAuthedRequest(t, http.MethodGet, "/api/projects/"+f.project.ID.String()+"/tasks", nil, f.stranger.ID)
		req = withPathParams(req, map[string]string{"projectID": f.project.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.List(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTaskHandlerMyTasks(t *testing.T) {
	f := newTaskHandlerFixture(t)

	mine := newTestTask(t, f.project.ID, f.owner.ID)
	require.NoError(t, mine.AssignTo(f.member.ID))
	unassigned := newTestTask(t, f.project.ID, f.owner.ID)
	f.taskStore.Add(mine).Add(unassigned)

	req := newAuthedRequest(t, http.MethodGet, "/api/tasks/my", nil, f.member.ID)
	rec := httptest.NewRecorder()
	f.handler.MyTasks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TaskListResponse
	decodeBody(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, mine.ID, resp.Tasks[0].ID)
}

func TestTaskHandlerUpdate(t *testing.T) {
	t.Run("status and priority", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		task := newTestTask(t, f.project.ID, f.owner.ID)
		f.taskStore.Add(task)

		status := "in_progress"
		priority := "critical"
		req := newAuthedRequest(t, http.MethodPut, "/api/tasks/"+task.ID.String(),
			UpdateTaskRequest{Status: &status, Priority: &priority}, f.member.ID)
		req = withPathParams(req, map[string]string{"taskID": task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Update(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got domain.Task
		decodeBody(t, rec, &got)
		assert.Equal(t, domain.TaskStatusInProgress, got.Status)
		assert.Equal(t, domain.TaskPriorityCritical, got.Priority)
	})

	t.Run("unknown task", func(t *testing.T) {
		f := newTaskHandlerFixture(t)

		title := "New title"
		id := uuid.New()
		req := newAuthedRequest(t, http.MethodPut, "/api/tasks/"+id.String(),
			UpdateTaskRequest{Title: &title}, f.member.ID)
		req = withPathParams(req, map[string]string{"taskID": id.String()})
		rec := httptest.NewRecorder()
		f.handler.Update(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Task not found", errorMessage(t, rec))
	})

	t.Run("invalid status value", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		task := newTestTask(t, f.project.ID, f.owner.ID)
		f.taskStore.Add(task)

		status := "done"
		req := newAuthedRequest(t, http.MethodPut, "/api/tasks/"+task.ID.String(),
			UpdateTaskRequest{Status: &status}, f.member.ID)
		req = withPathParams(req, map[string]string{"taskID": task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Update(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandlerDelete(t *testing.T) {
	deleteTask := func(f *taskHandlerFixture, task *domain.Task, callerID uuid.UUID) *httptest.ResponseRecorder {
		req := newAuthedRequest(t, http.MethodDelete, "/api/tasks/"+task.ID.String(), nil, callerID)
		req = withPathParams(req, map[string]string{"taskID": task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Delete(rec, req)
		return rec
	}

	t.Run("creator deletes", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		task := newTestTask(t, f.project.ID, f.member.ID)
		f.taskStore.Add(task)

		rec := deleteTask(f, task, f.member.ID)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, f.taskStore.Tasks)
	})

	t.Run("project owner deletes someone else's task", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		task := newTestTask(t, f.project.ID, f.member.ID)
		f.taskStore.Add(task)

		rec := deleteTask(f, task, f.owner.ID)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other member cannot delete", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		other := newTestUser(t, "other")
		f.projectStore.AddMemberUser(f.project.ID, other.ID)
		task := newTestTask(t, f.project.ID, f.member.ID)
		f.taskStore.Add(task)

		rec := deleteTask(f, task, other.ID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Only the task creator or project owner can delete a task", errorMessage(t, rec))
	})
}

func TestTaskHandlerAssign(t *testing.T) {
	assign := func(f *taskHandlerFixture, task *domain.Task, callerID, assigneeID uuid.UUID) *httptest.ResponseRecorder {
		req := newAuthedRequest(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/assign",
			AssignTaskRequest{UserID: assigneeID}, callerID)
		req = withPathParams(req, map[string]string{"taskID": task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Assign(rec, req)
		return rec
	}

	t.Run("assign to member", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		task := newTestTask(t, f.project.ID, f.owner.ID)
		f.taskStore.Add(task)

		rec := assign(f, task, f.owner.ID, f.member.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got domain.Task
		decodeBody(t, rec, &got)
		require.NotNil(t, got.AssignedTo)
		assert.Equal(t, f.member.ID, *got.AssignedTo)
	})

	t.Run("assignee outside the project", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		task := newTestTask(t, f.project.ID, f.owner.ID)
		f.taskStore.Add(task)

		rec := assign(f, task, f.owner.ID, f.stranger.ID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Assignee must be a member of the project", errorMessage(t, rec))
	})

	t.Run("unknown assignee", func(t *testing.T) {
		f := newTaskHandlerFixture(t)
		task := newTestTask(t, f.project.ID, f.owner.ID)
		f.taskStore.Add(task)

		rec := assign(f, task, f.owner.ID, uuid.New())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTaskHandlerUnassign(t *testing.T) {
	f := newTaskHandlerFixture(t)
	task := newTestTask(t, f.project.ID, f.owner.ID)
	require.NoError(t, task.AssignTo(f.member.ID))
	f.taskStore.Add(task)

	req := newAuthedRequest(t, http.MethodDelete, "/api/tasks/"+task.ID.String()+"/assign", nil, f.member.ID)
	req = withPathParams(req, map[string]string{"taskID": task.ID.String()})
	rec := httptest.NewRecorder()
	f.handler.Unassign(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Task
	decodeBody(t, rec, &got)
	assert.Nil(t, got.AssignedTo)
}

func TestTaskFilterFromQuery(t *testing.T) {
	t.Run("full set", func(t *testing.T) {
		assignee := uuid.New()
		category := uuid.New()
		creator := uuid.New()
		req := httptest.NewRequest(http.MethodGet,
			"/api/tasks/my?status=pending&priority=high&assigned_to="+assignee.String()+
				"&category_id="+category.String()+"&created_by="+creator.String()+
				"&overdue=true&search=launch&sort=priority&limit=25&page=3", nil)

		filter, err := taskFilterFromQuery(req)
		require.NoError(t, err)
		require.NotNil(t, filter.Status)
		assert.Equal(t, domain.TaskStatusPending, *filter.Status)
		require.NotNil(t, filter.Priority)
		assert.Equal(t, domain.TaskPriorityHigh, *filter.Priority)
		require.NotNil(t, filter.AssignedTo)
		assert.Equal(t, assignee, *filter.AssignedTo)
		require.NotNil(t, filter.CategoryID)
		assert.Equal(t, category, *filter.CategoryID)
		require.NotNil(t, filter.CreatedBy)
		assert.Equal(t, creator, *filter.CreatedBy)
		assert.True(t, filter.Overdue)
		assert.Equal(t, "launch", filter.Search)
		assert.True(t, filter.SortByPriority)
		assert.Equal(t, 25, filter.Limit)
		assert.Equal(t, 50, filter.Offset)
	})

	t.Run("empty query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/my", nil)
		filter, err := taskFilterFromQuery(req)
		require.NoError(t, err)
		assert.Equal(t, store.TaskFilter{}, filter)
	})

	t.Run("bad uuid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/my?assigned_to=not-a-uuid", nil)
		_, err := taskFilterFromQuery(req)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("bad priority", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/my?priority=urgent", nil)
		_, err := taskFilterFromQuery(req)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("bad sort", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/my?sort=alphabetical", nil)
		_, err := taskFilterFromQuery(req)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("bad limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/my?limit=-1", nil)
		_, err := taskFilterFromQuery(req)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("page without limit gets the default page size", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/my?page=2", nil)
		filter, err := taskFilterFromQuery(req)
		require.NoError(t, err)
		assert.Equal(t, defaultTaskPageSize, filter.Limit)
		assert.Equal(t, defaultTaskPageSize, filter.Offset)
	})

	t.Run("limit clamped to maximum", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/my?limit=10000", nil)
		filter, err := taskFilterFromQuery(req)
		require.NoError(t, err)
		assert.Equal(t, maxTaskPageSize, filter.Limit)
	})
}
