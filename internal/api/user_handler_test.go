package api

import (
	"context"
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

func TestUserHandlerSearch(t *testing.T) {
	caller := newTestUser(t, "caller")
	grace := newTestUser(t, "grace")
	inactive := newTestUser(t, "gracie")
	inactive.IsActive = false
	userStore := mocks.NewMockUserStore().Add(caller).Add(grace).Add(inactive)
	handler := NewUserHandler(userStore, mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

	search := func(query string) *httptest.ResponseRecorder {
		req := newAuthedRequest(t, http.MethodGet, "/api/users/search?"+query, nil, caller.ID)
		rec := httptest.NewRecorder()
		handler.Search(rec, req)
		return rec
	}

	t.Run("matches by username", func(t *testing.T) {
		rec := search("q=grace")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp UserListResponse
		decodeBody(t, rec, &resp)
		require.Equal(t, 1, resp.Count, "inactive users are excluded")
		assert.Equal(t, grace.ID, resp.Users[0].ID)
	})

	t.Run("query too short", func(t *testing.T) {
		rec := search("q=g")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Search query must be at least 2 characters", errorMessage(t, rec))
	})

	t.Run("missing query", func(t *testing.T) {
		rec := search("")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := search("q=grace&limit=zero")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid limit", errorMessage(t, rec))
	})

	t.Run("limit clamped to maximum", func(t *testing.T) {
		var captured int
		userStore.SearchFn = func(_ context.Context, _ string, limit int) ([]*domain.User, error) {
			captured = limit
			return nil, nil
		}
		defer func() { userStore.SearchFn = nil }()

		rec := search("q=grace&limit=500")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, maxSearchLimit, captured)
	})

	t.Run("default limit", func(t *testing.T) {
		var captured int
		userStore.SearchFn = func(_ context.Context, _ string, limit int) ([]*domain.User, error) {
			captured = limit
			return nil, nil
		}
		defer func() { userStore.SearchFn = nil }()

		rec := search("q=grace")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, defaultSearchLimit, captured)
	})
}

func TestUserHandlerGet(t *testing.T) {
	caller := newTestUser(t, "caller")
	target := newTestUser(t, "target")
	inactive := newTestUser(t, "gone")
	inactive.IsActive = false
	userStore := mocks.NewMockUserStore().Add(caller).Add(target).Add(inactive)
	handler := NewUserHandler(userStore, mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

	getUser := func(id string) *httptest.ResponseRecorder {
		req := newAuthedRequest(t, http.MethodGet, "/api/users/"+id, nil, caller.ID)
		req = withPathParams(req, map[string]string{"userID": id})
		rec := httptest.NewRecorder()
		handler.Get(rec, req)
		return rec
	}

	t.Run("public profile", func(t *testing.T) {
		rec := getUser(target.ID.String())
		require.Equal(t, http.StatusOK, rec.Code)

		var resp domain.User
		decodeBody(t, rec, &resp)
		assert.Equal(t, target.ID, resp.ID)
		assert.Equal(t, "target", resp.Username)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := getUser(uuid.New().String())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deactivated account reads as missing", func(t *testing.T) {
		rec := getUser(inactive.ID.String())
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", errorMessage(t, rec))
	})
}

func TestUserHandlerDashboard(t *testing.T) {
	user := newTestUser(t, "worker")
	project := newTestProject(t, user.ID)

	overdueTask := newTestTask(t, project.ID, user.ID)
	require.NoError(t, overdueTask.AssignTo(user.ID))
	past := time.Now().Add(-24 * time.Hour).UTC()
	overdueTask.DueDate = &past

	onTimeTask := newTestTask(t, project.ID, user.ID)
	require.NoError(t, onTimeTask.AssignTo(user.ID))

	taskStore := mocks.NewMockTaskStore().Add(overdueTask).Add(onTimeTask)
	taskStore.UserStats = &store.UserTaskStats{
		TotalAssigned: 2,
		TotalCreated:  2,
		Pending:       2,
		Overdue:       1,
	}
	projectStore := mocks.NewMockProjectStore().AddProject(project)
	handler := NewUserHandler(mocks.NewMockUserStore().Add(user), taskStore, projectStore)

	req := newAuthedRequest(t, http.MethodGet, "/api/dashboard", nil, user.ID)
	rec := httptest.NewRecorder()
	handler.Dashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DashboardResponse
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.TaskStats)
	assert.Equal(t, 2, resp.TaskStats.TotalAssigned)
	assert.Equal(t, 1, resp.TaskStats.Overdue)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, project.ID, resp.Projects[0].ID)
	require.Len(t, resp.Overdue, 1)
	assert.Equal(t, overdueTask.ID, resp.Overdue[0].ID)
}

func TestUserHandlerDashboardUnauthenticated(t *testing.T) {
	handler := NewUserHandler(mocks.NewMockUserStore(), mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

	req := newAuthedRequest(t, http.MethodGet, "/api/dashboard", nil, uuid.Nil)
	rec := httptest.NewRecorder()
	handler.Dashboard(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
