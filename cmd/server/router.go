package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskwell/taskwell-api/internal/api"
	apiMiddleware "github.com/taskwell/taskwell-api/internal/api/middleware"
	"github.com/taskwell/taskwell-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	taskHandler := api.NewTaskHandler(app.taskStore, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)

		// Convenience filtered listings; registered before /tasks/{id} so
		// chi resolves the literal segments first.
		r.Get("/tasks/status/{status}", taskHandler.ListTasksByStatus)
		r.Get("/tasks/priority/{priority}", taskHandler.ListTasksByPriority)

		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Root endpoint with basic API info
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
			"message": "This is a Task Management API",
			"endpoints": map[string]string{
				"Paginated tasks list":       "GET /api/tasks",
				"Get a specific task":        "GET /api/tasks/{id}",
				"Create a task":              "POST /api/tasks",
				"Update a task":              "PUT /api/tasks/{id}",
				"Delete a task":              "DELETE /api/tasks/{id}",
				"Tasks filtered by status":   "GET /api/tasks/status/{status}",
				"Tasks filtered by priority": "GET /api/tasks/priority/{priority}",
				"Health check":               "GET /health",
			},
		})
	})

	return r
}
