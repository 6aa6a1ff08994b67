package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
)

// Listing bounds applied by TaskStore implementations.
const (
	// DefaultListLimit is used when the caller supplies no limit (or a
	// non-positive one).
	DefaultListLimit = 10

	// MaxListLimit caps the number of tasks returned by a single listing.
	MaxListLimit = 100

	// NoListLimit disables the listing cap for callers that need every
	// matching task, such as the status and priority listings.
	NoListLimit = -1
)

// TaskFilter narrows a listing to tasks matching the given attributes.
// Nil fields apply no filter.
type TaskFilter struct {
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
}

// TaskPatch describes a partial update to a task. Each field is an
// Optional: absent fields leave the stored value untouched, null fields
// clear the attribute (where clearable), and set fields replace it.
// Title, Status, and Priority are required attributes and cannot be
// cleared; a null for those is a validation error.
// A patch with no fields set is valid and acts as a touch: the stored
// values are unchanged and only updated_at is refreshed.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[domain.TaskStatus]
	Priority    Optional[domain.TaskPriority]
	AssignedTo  Optional[string]
	DueDate     Optional[time.Time]
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves tasks matching the filter, ordered by creation time
	// then ID ascending so pagination is deterministic. Returns an empty
	// slice if no tasks match. A zero limit is defaulted and an oversized
	// one capped per DefaultListLimit/MaxListLimit; NoListLimit returns
	// every matching task. The offset must be non-negative.
	List(ctx context.Context, filter TaskFilter, limit, offset int) ([]*domain.Task, error)

	// Update applies the supplied patch fields to an existing task,
	// revalidating each changed field under the same rules as Create, and
	// refreshes the task's updated_at timestamp. The read and write
	// execute as a single atomic unit. Returns the updated task. An empty
	// patch succeeds and only refreshes updated_at.
	// Returns ErrTaskNotFound if the task does not exist and validation
	// errors if a supplied field violates its constraint.
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error)

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
