package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/store"
)

var taskColumns = []string{
	"id", "title", "description", "status", "priority",
	"assigned_to", "due_date", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresTaskStore(db, nil), mock
}

func taskRow(id uuid.UUID, title, status, priority string, createdAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(taskColumns).
		AddRow(id.String(), title, nil, status, priority, nil, nil, createdAt, createdAt)
}

// Update on the pooled connection must take a transaction around the locked
// read and the write, so a concurrent partial update cannot overwrite the
// fields this one carries back.
func TestUpdateRunsInSingleTransaction(t *testing.T) {
	s, mock := newMockStore(t)

	id := uuid.New()
	createdAt := time.Now().UTC().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id = (.+) FOR UPDATE").
		WillReturnRows(taskRow(id, "Write report", "pending", "high", createdAt))
	mock.ExpectExec("UPDATE tasks SET (.+)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := s.Update(context.Background(), id, store.TaskPatch{
		Status: store.Some(domain.TaskStatusCompleted),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, domain.TaskPriorityHigh, updated.Priority)
	assert.True(t, updated.UpdatedAt.After(createdAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An empty patch is a touch: no stored field changes but updated_at is
// refreshed, and the row is still written inside a transaction.
func TestUpdateEmptyPatchRefreshesTimestamp(t *testing.T) {
	s, mock := newMockStore(t)

	id := uuid.New()
	createdAt := time.Now().UTC().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id = (.+) FOR UPDATE").
		WillReturnRows(taskRow(id, "Write report", "pending", "medium", createdAt))
	mock.ExpectExec("UPDATE tasks SET (.+)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := s.Update(context.Background(), id, store.TaskPatch{})
	require.NoError(t, err)

	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, domain.TaskStatusPending, updated.Status)
	assert.Equal(t, domain.TaskPriorityMedium, updated.Priority)
	assert.True(t, updated.UpdatedAt.After(createdAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRollsBackOnValidationError(t *testing.T) {
	s, mock := newMockStore(t)

	id := uuid.New()
	createdAt := time.Now().UTC().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id = (.+) FOR UPDATE").
		WillReturnRows(taskRow(id, "Write report", "pending", "medium", createdAt))
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), id, store.TaskPatch{
		Status: store.Some(domain.TaskStatus("archived")),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTaskStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUnknownTaskRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE id = (.+) FOR UPDATE").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), uuid.New(), store.TaskPatch{
		Status: store.Some(domain.TaskStatusCompleted),
	})

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Driver failures come back wrapped in a StoreError naming the entity and
// operation, with the mapped sentinel still reachable via errors.Is.
func TestCreateWrapsDriverError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO tasks (.+)").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tasks_pkey"})

	task, err := domain.NewTask("Write report", nil, "", "", nil, nil)
	require.NoError(t, err)

	err = s.Create(context.Background(), task)
	require.Error(t, err)

	var storeErr *store.StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "create", storeErr.Operation)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

// The all-rows listing omits the LIMIT clause entirely.
func TestListWithoutLimit(t *testing.T) {
	s, mock := newMockStore(t)

	id := uuid.New()
	createdAt := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE status = (.+) ORDER BY created_at ASC, id ASC OFFSET (.+)").
		WillReturnRows(taskRow(id, "Write report", "completed", "medium", createdAt))

	completed := domain.TaskStatusCompleted
	tasks, err := s.List(context.Background(), store.TaskFilter{Status: &completed}, store.NoListLimit, 0)
	require.NoError(t, err)

	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
