package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/store"
)

// stubTaskStore satisfies store.TaskStore for router wiring tests.
type stubTaskStore struct{}

func (s *stubTaskStore) Create(ctx context.Context, task *domain.Task) error { return nil }

func (s *stubTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return nil, store.ErrTaskNotFound
}

func (s *stubTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	limit, offset int,
) ([]*domain.Task, error) {
	return []*domain.Task{}, nil
}

func (s *stubTaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	patch store.TaskPatch,
) (*domain.Task, error) {
	return nil, store.ErrTaskNotFound
}

func (s *stubTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	return store.ErrTaskNotFound
}

func (s *stubTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

func newTestApplication() *application {
	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		},
		logger:    slog.Default(),
		taskStore: &stubTaskStore{},
	}
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestApplication().setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRouterRootEndpoint(t *testing.T) {
	router := newTestApplication().setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task Management API")
}

func TestRouterTaskRoutesRegistered(t *testing.T) {
	router := newTestApplication().setupRouter()

	// Listing is wired through to the store
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The literal status segment wins over /tasks/{id}
	req = httptest.NewRequest(http.MethodGet, "/api/tasks/status/pending", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown task IDs surface as 404 from the store, not the router
	req = httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/tasks/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
