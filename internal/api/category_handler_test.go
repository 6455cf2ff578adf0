package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/mocks"
)

func newTestCategory(t *testing.T, userID uuid.UUID, name string) *domain.Category {
	t.Helper()
	category, err := domain.NewCategory(userID, name, "#ff8800")
	require.NoError(t, err)
	return category
}

func TestCategoryHandlerCreate(t *testing.T) {
	userID := uuid.New()

	t.Run("success with default color", func(t *testing.T) {
		categoryStore := mocks.NewMockCategoryStore()
		handler := NewCategoryHandler(categoryStore, mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

		req := newAuthedRequest(t, http.MethodPost, "/api/categories", CreateCategoryRequest{Name: "Urgent"}, userID)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var category domain.Category
		decodeBody(t, rec, &category)
		assert.Equal(t, "Urgent", category.Name)
		assert.Equal(t, userID, category.UserID)
		assert.Equal(t, domain.DefaultCategoryColor, category.Color)
	})

	t.Run("duplicate name for the same user", func(t *testing.T) {
		categoryStore := mocks.NewMockCategoryStore().Add(newTestCategory(t, userID, "Urgent"))
		handler := NewCategoryHandler(categoryStore, mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

		req := newAuthedRequest(t, http.MethodPost, "/api/categories", CreateCategoryRequest{Name: "Urgent"}, userID)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "A category with that name already exists", errorMessage(t, rec))
	})

	t.Run("bad color", func(t *testing.T) {
		handler := NewCategoryHandler(mocks.NewMockCategoryStore(), mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

		req := newAuthedRequest(t, http.MethodPost, "/api/categories",
			CreateCategoryRequest{Name: "Urgent", Color: "red"}, userID)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCategoryHandlerList(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()
	categoryStore := mocks.NewMockCategoryStore().
		Add(newTestCategory(t, userID, "Urgent")).
		Add(newTestCategory(t, otherID, "Private"))
	handler := NewCategoryHandler(categoryStore, mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

	req := newAuthedRequest(t, http.MethodGet, "/api/categories", nil, userID)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategoryListResponse
	decodeBody(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Urgent", resp.Categories[0].Name)
}

func TestCategoryHandlerUpdate(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()

	update := func(handler *CategoryHandler, categoryID, callerID uuid.UUID, body UpdateCategoryRequest) *httptest.ResponseRecorder {
		req := newAuthedRequest(t, http.MethodPut, "/api/categories/"+categoryID.String(), body, callerID)
		req = withPathParams(req, map[string]string{"categoryID": categoryID.String()})
		rec := httptest.NewRecorder()
		handler.Update(rec, req)
		return rec
	}

	t.Run("owner renames", func(t *testing.T) {
		category := newTestCategory(t, userID, "Urgent")
		handler := NewCategoryHandler(mocks.NewMockCategoryStore().Add(category), mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

		name := "Important"
		rec := update(handler, category.ID, userID, UpdateCategoryRequest{Name: &name})
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Category
		decodeBody(t, rec, &got)
		assert.Equal(t, "Important", got.Name)
	})

	t.Run("another user's category reads as not found", func(t *testing.T) {
		category := newTestCategory(t, otherID, "Private")
		handler := NewCategoryHandler(mocks.NewMockCategoryStore().Add(category), mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

		name := "Hijacked"
		rec := update(handler, category.ID, userID, UpdateCategoryRequest{Name: &name})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Category not found", errorMessage(t, rec))
	})
}

func TestCategoryHandlerDelete(t *testing.T) {
	userID := uuid.New()
	category := newTestCategory(t, userID, "Urgent")
	categoryStore := mocks.NewMockCategoryStore().Add(category)
	handler := NewCategoryHandler(categoryStore, mocks.NewMockTaskStore(), mocks.NewMockProjectStore())

	req := newAuthedRequest(t, http.MethodDelete, "/api/categories/"+category.ID.String(), nil, userID)
	req = withPathParams(req, map[string]string{"categoryID": category.ID.String()})
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, categoryStore.Categories)
}

func TestCategoryHandlerAssignToTask(t *testing.T) {
	owner := newTestUser(t, "owner")
	member := newTestUser(t, "member")
	project := newTestProject(t, owner.ID)
	task := newTestTask(t, project.ID, owner.ID)

	newFixture := func(t *testing.T) (*CategoryHandler, *mocks.MockCategoryStore) {
		t.Helper()
		categoryStore := mocks.NewMockCategoryStore()
		taskStore := mocks.NewMockTaskStore().Add(task)
		projectStore := mocks.NewMockProjectStore().AddProject(project).AddMemberUser(project.ID, member.ID)
		return NewCategoryHandler(categoryStore, taskStore, projectStore), categoryStore
	}

	assign := func(handler *CategoryHandler, callerID, categoryID uuid.UUID) *httptest.ResponseRecorder {
		req := newAuthedRequest(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/categories",
			AssignCategoryRequest{CategoryID: categoryID}, callerID)
		req = withPathParams(req, map[string]string{"taskID": task.ID.String()})
		rec := httptest.NewRecorder()
		handler.AssignToTask(rec, req)
		return rec
	}

	t.Run("member tags with own category", func(t *testing.T) {
		handler, categoryStore := newFixture(t)
		category := newTestCategory(t, member.ID, "Urgent")
		categoryStore.Add(category)

		rec := assign(handler, member.ID, category.ID)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, []uuid.UUID{category.ID}, categoryStore.Assignments[task.ID])
	})

	t.Run("someone else's category reads as not found", func(t *testing.T) {
		handler, categoryStore := newFixture(t)
		category := newTestCategory(t, owner.ID, "OwnerOnly")
		categoryStore.Add(category)

		rec := assign(handler, member.ID, category.ID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-member forbidden", func(t *testing.T) {
		handler, categoryStore := newFixture(t)
		stranger := uuid.New()
		category := newTestCategory(t, stranger, "Urgent")
		categoryStore.Add(category)

		rec := assign(handler, stranger, category.ID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestCategoryHandlerListForTask(t *testing.T) {
	owner := newTestUser(t, "owner")
	member := newTestUser(t, "member")
	project := newTestProject(t, owner.ID)
	task := newTestTask(t, project.ID, owner.ID)

	mine := newTestCategory(t, member.ID, "Urgent")
	theirs := newTestCategory(t, owner.ID, "Review")
	categoryStore := mocks.NewMockCategoryStore().Add(mine).Add(theirs)
	categoryStore.Assignments[task.ID] = []uuid.UUID{mine.ID, theirs.ID}

	taskStore := mocks.NewMockTaskStore().Add(task)
	projectStore := mocks.NewMockProjectStore().AddProject(project).AddMemberUser(project.ID, member.ID)
	handler := NewCategoryHandler(categoryStore, taskStore, projectStore)

	req := newAuthedRequest(t, http.MethodGet, "/api/tasks/"+task.ID.String()+"/categories", nil, member.ID)
	req = withPathParams(req, map[string]string{"taskID": task.ID.String()})
	rec := httptest.NewRecorder()
	handler.ListForTask(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CategoryListResponse
	decodeBody(t, rec, &resp)
	require.Equal(t, 1, resp.Count, "only the caller's own labels are visible")
	assert.Equal(t, mine.ID, resp.Categories[0].ID)
}

func TestCategoryHandlerRemoveFromTask(t *testing.T) {
	owner := newTestUser(t, "owner")
	project := newTestProject(t, owner.ID)
	task := newTestTask(t, project.ID, owner.ID)
	category := newTestCategory(t, owner.ID, "Urgent")

	categoryStore := mocks.NewMockCategoryStore().Add(category)
	categoryStore.Assignments[task.ID] = []uuid.UUID{category.ID}
	taskStore := mocks.NewMockTaskStore().Add(task)
	projectStore := mocks.NewMockProjectStore().AddProject(project)
	handler := NewCategoryHandler(categoryStore, taskStore, projectStore)

	req := newAuthedRequest(t, http.MethodDelete,
		"/api/tasks/"+task.ID.String()+"/categories/"+category.ID.String(), nil, owner.ID)
	req = withPathParams(req, map[string]string{
		"taskID":     task.ID.String(),
		"categoryID": category.ID.String(),
	})
	rec := httptest.NewRecorder()
	handler.RemoveFromTask(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, categoryStore.Assignments[task.ID])
}
