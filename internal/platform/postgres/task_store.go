package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
// It returns a new TaskStore instance that uses the provided transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns validation errors from the domain Task if data is invalid.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, status, priority, assigned_to, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AssignedTo,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.String("priority", string(task.Priority)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its unique ID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving task by ID", slog.String("task_id", id.String()))

	query := `
		SELECT id, title, description, status, priority, assigned_to, due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "failed to query task", err)
	}

	return task, nil
}

// getForUpdate loads a task while holding a row-level lock, so that a
// surrounding transaction can rewrite the row without racing concurrent
// updates. Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) getForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, title, description, status, priority, assigned_to, due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
		FOR UPDATE
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "failed to query task for update", err)
	}

	return task, nil
}

// List implements store.TaskStore.List
// It retrieves tasks matching the filter, ordered by creation time then ID
// ascending so that offset/limit pagination is deterministic. A limit of
// store.NoListLimit returns every matching task.
// Returns an empty slice if no tasks match the criteria.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	limit, offset int,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit != store.NoListLimit {
		if limit <= 0 {
			limit = store.DefaultListLimit
		}
		if limit > store.MaxListLimit {
			limit = store.MaxListLimit
		}
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, title, description, status, priority, assigned_to, due_date, created_at, updated_at
		FROM tasks
	`
	var args []any
	var conditions []string

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += "WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += "\n\t\tORDER BY created_at ASC, id ASC"
	if limit != store.NoListLimit {
		args = append(args, limit)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	log.Debug("listing tasks",
		slog.Int("limit", limit),
		slog.Int("offset", offset),
		slog.Bool("status_filter", filter.Status != nil),
		slog.Bool("priority_filter", filter.Priority != nil))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to query tasks", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "failed to scan task row", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed reading task rows", err)
	}

	// Return empty slice instead of nil if no tasks found
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update implements store.TaskStore.Update
// It loads the existing task under a row lock, applies the supplied patch
// fields with the same validation rules as Create, refreshes updated_at,
// and writes the result back. An empty patch succeeds and only refreshes
// updated_at. Returns store.ErrTaskNotFound if the task does not exist.
//
// When running on the pooled connection the read and write are wrapped
// in a transaction so that concurrent partial updates cannot overwrite
// each other's fields. Inside WithTx the caller owns the transaction and
// the operation runs on it directly.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	patch store.TaskPatch,
) (*domain.Task, error) {
	if db, ok := s.db.(*sql.DB); ok {
		var task *domain.Task
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			var txErr error
			task, txErr = s.WithTx(tx).(*PostgresTaskStore).update(ctx, id, patch)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		return task, nil
	}

	return s.update(ctx, id, patch)
}

func (s *PostgresTaskStore) update(
	ctx context.Context,
	id uuid.UUID,
	patch store.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.getForUpdate(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			log.Error("failed to load task for update",
				slog.String("error", err.Error()),
				slog.String("task_id", id.String()))
		}
		return nil, err
	}

	if err := applyPatch(task, patch); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
			assigned_to = $5, due_date = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AssignedTo,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for update", slog.String("task_id", id.String()))
		return nil, store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", id.String()),
		slog.String("status", string(task.Status)))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// It removes a task from the store by its ID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "delete", "failed to delete task", err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// applyPatch applies the supplied patch fields to the task, enforcing the
// same constraints as creation: title non-empty after trimming, closed
// enums, and a due date strictly in the future at acceptance time.
// Required attributes (title, status, priority) cannot be cleared with an
// explicit null. Refreshes the task's UpdatedAt on success.
func applyPatch(task *domain.Task, patch store.TaskPatch) error {
	if patch.Title.Set {
		if !patch.Title.Valid {
			return domain.NewValidationError("title", "cannot be null", domain.ErrTaskTitleEmpty)
		}
		title, err := domain.ValidateTitle(patch.Title.Value)
		if err != nil {
			return err
		}
		task.Title = title
	}

	if patch.Description.Set {
		if patch.Description.Valid {
			desc := patch.Description.Value
			task.Description = &desc
		} else {
			task.Description = nil
		}
	}

	if patch.Status.Set {
		if !patch.Status.Valid || !domain.IsValidTaskStatus(patch.Status.Value) {
			return domain.ErrInvalidTaskStatus
		}
		task.Status = patch.Status.Value
	}

	if patch.Priority.Set {
		if !patch.Priority.Valid || !domain.IsValidTaskPriority(patch.Priority.Value) {
			return domain.ErrInvalidTaskPriority
		}
		task.Priority = patch.Priority.Value
	}

	if patch.AssignedTo.Set {
		if patch.AssignedTo.Valid {
			assignee := patch.AssignedTo.Value
			task.AssignedTo = &assignee
		} else {
			task.AssignedTo = nil
		}
	}

	if patch.DueDate.Set {
		if patch.DueDate.Valid {
			if err := domain.ValidateDueDate(patch.DueDate.Value); err != nil {
				return err
			}
			due := patch.DueDate.Value
			task.DueDate = &due
		} else {
			task.DueDate = nil
		}
	}

	if err := task.Validate(); err != nil {
		return err
	}

	task.UpdatedAt = time.Now().UTC()
	return nil
}

// rowScanner matches the Scan method shared by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans a single task row in the column order used by all task
// queries in this file.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, priority string

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.AssignedTo,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	return &task, nil
}
