package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/service/auth"
)

// newAuthedRequest builds a request carrying the given user ID in its
// context, the way the auth middleware would after validating a token.
func newAuthedRequest(t *testing.T, method, target string, body any, userID uuid.UUID) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
}

// withPathParams injects chi URL parameters into the request context so
// handlers can be exercised without a full router.
func withPathParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// contextWithClaims attaches validated token claims the way the auth
// middleware does.
func contextWithClaims(r *http.Request, claims *auth.Claims) context.Context {
	return context.WithValue(r.Context(), shared.ClaimsContextKey, claims)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out), "response body should be valid JSON")
}

// errorMessage extracts the error envelope from a failed response.
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp shared.ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

func newTestUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, username+"@example.com", "Test", "User", "correct-horse-battery")
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$test-hash"
	return user
}

func newTestProject(t *testing.T, ownerID uuid.UUID) *domain.Project {
	t.Helper()
	project, err := domain.NewProject(ownerID, "Apollo", "Launch planning")
	require.NoError(t, err)
	return project
}

func newTestTask(t *testing.T, projectID, createdBy uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(projectID, createdBy, "Prepare launch checklist", "", domain.TaskPriorityMedium)
	require.NoError(t, err)
	return task
}
