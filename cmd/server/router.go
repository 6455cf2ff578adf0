package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskhive/taskhive/internal/api"
	apimiddleware "github.com/taskhive/taskhive/internal/api/middleware"
	"github.com/taskhive/taskhive/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		app.revocations,
		app.registry,
		app.config.Auth,
	)
	projectHandler := api.NewProjectHandler(app.projectStore, app.userStore, app.broadcaster)
	taskHandler := api.NewTaskHandler(app.taskStore, app.projectStore, app.userStore, app.broadcaster)
	categoryHandler := api.NewCategoryHandler(app.categoryStore, app.taskStore, app.projectStore)
	commentHandler := api.NewCommentHandler(app.commentStore, app.taskStore, app.projectStore, app.userStore, app.broadcaster)
	attachmentHandler := api.NewAttachmentHandler(app.attachmentStore, app.taskStore, app.projectStore, app.userStore, app.blobs, app.broadcaster)
	userHandler := api.NewUserHandler(app.userStore, app.taskStore, app.projectStore)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService, app.revocations)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)

			// Account
			r.Get("/users/me", authHandler.Profile)
			r.Put("/users/me", authHandler.UpdateProfile)
			r.Post("/users/me/password", authHandler.ChangePassword)
			r.Get("/users/search", userHandler.Search)
			r.Get("/users/{userID}", userHandler.Get)
			r.Get("/dashboard", userHandler.Dashboard)

			// Projects and membership
			r.Post("/projects", projectHandler.Create)
			r.Get("/projects", projectHandler.List)
			r.Get("/projects/{projectID}", projectHandler.Get)
			r.Put("/projects/{projectID}", projectHandler.Update)
			r.Delete("/projects/{projectID}", projectHandler.Delete)
			r.Get("/projects/{projectID}/members", projectHandler.ListMembers)
			r.Post("/projects/{projectID}/members", projectHandler.AddMember)
			r.Delete("/projects/{projectID}/members/{userID}", projectHandler.RemoveMember)
			r.Get("/projects/{projectID}/stats", projectHandler.Stats)

			// Tasks
			r.Post("/projects/{projectID}/tasks", taskHandler.Create)
			r.Get("/projects/{projectID}/tasks", taskHandler.List)
			r.Get("/tasks/my", taskHandler.MyTasks)
			r.Get("/tasks/{taskID}", taskHandler.Get)
			r.Put("/tasks/{taskID}", taskHandler.Update)
			r.Delete("/tasks/{taskID}", taskHandler.Delete)
			r.Post("/tasks/{taskID}/assign", taskHandler.Assign)
			r.Delete("/tasks/{taskID}/assign", taskHandler.Unassign)

			// Categories
			r.Post("/categories", categoryHandler.Create)
			r.Get("/categories", categoryHandler.List)
			r.Put("/categories/{categoryID}", categoryHandler.Update)
			r.Delete("/categories/{categoryID}", categoryHandler.Delete)
			r.Get("/tasks/{taskID}/categories", categoryHandler.ListForTask)
			r.Post("/tasks/{taskID}/categories", categoryHandler.AssignToTask)
			r.Delete("/tasks/{taskID}/categories/{categoryID}", categoryHandler.RemoveFromTask)

			// Comments
			r.Get("/tasks/{taskID}/comments", commentHandler.List)
			r.Post("/tasks/{taskID}/comments", commentHandler.Create)
			r.Put("/comments/{commentID}", commentHandler.Update)
			r.Delete("/comments/{commentID}", commentHandler.Delete)

			// Attachments
			r.Post("/tasks/{taskID}/attachments", attachmentHandler.Upload)
			r.Get("/tasks/{taskID}/attachments", attachmentHandler.List)
			r.Get("/attachments/{attachmentID}/download", attachmentHandler.Download)
			r.Delete("/attachments/{attachmentID}", attachmentHandler.Delete)
		})
	})

	// WebSocket endpoint; the handler authenticates the token itself so the
	// browser WebSocket API can pass it as a query parameter.
	r.Get("/ws", app.wsHandler.ServeHTTP)

	// Realtime status endpoint for monitoring.
	r.Get("/websocket/status", func(w http.ResponseWriter, r *http.Request) {
		stats := app.wsHandler.Stats()
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]int{
			"connected_clients": stats.ConnectedClients,
			"active_rooms":      stats.ActiveRooms,
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
