package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents the urgency level of a task
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Field length limits enforced on task attributes.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxAssigneeLength    = 100
)

// Common validation errors for Task
var (
	ErrTaskIDEmpty            = errors.New("task ID cannot be empty")
	ErrTaskTitleEmpty         = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong       = errors.New("task title exceeds maximum length")
	ErrTaskDescriptionTooLong = errors.New("task description exceeds maximum length")
	ErrTaskAssigneeTooLong    = errors.New("task assignee exceeds maximum length")
	ErrInvalidTaskStatus      = errors.New("invalid task status")
	ErrInvalidTaskPriority    = errors.New("invalid task priority")
	ErrTaskDueDateNotFuture   = errors.New("task due date must be in the future")
)

// Task represents a single unit of work tracked by the service.
// Description, AssignedTo, and DueDate are optional; a nil pointer
// means the attribute is unset.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssignedTo  *string      `json:"assigned_to"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task with the given attributes.
// It generates a new UUID for the task ID, trims the title, applies the
// default status (pending) and priority (medium) when the corresponding
// argument is empty, and sets the creation/update timestamps to the same
// instant. A supplied due date must be strictly in the future.
// Returns an error if validation fails.
func NewTask(
	title string,
	description *string,
	status TaskStatus,
	priority TaskPriority,
	assignedTo *string,
	dueDate *time.Time,
) (*Task, error) {
	if status == "" {
		status = TaskStatusPending
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      status,
		Priority:    priority,
		AssignedTo:  assignedTo,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if dueDate != nil {
		if err := ValidateDueDate(*dueDate); err != nil {
			return nil, err
		}
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// The due-date-in-the-future rule is enforced at acceptance time only
// (see ValidateDueDate), not here, so existing tasks whose due date has
// passed remain valid.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if _, err := ValidateTitle(t.Title); err != nil {
		return err
	}

	if t.Description != nil && len(*t.Description) > MaxDescriptionLength {
		return ErrTaskDescriptionTooLong
	}

	if t.AssignedTo != nil && len(*t.AssignedTo) > MaxAssigneeLength {
		return ErrTaskAssigneeTooLong
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if !IsValidTaskPriority(t.Priority) {
		return ErrInvalidTaskPriority
	}

	return nil
}

// ValidateTitle trims the given title and checks it against the title
// constraints. Returns the trimmed title on success.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrTaskTitleEmpty
	}
	if len(trimmed) > MaxTitleLength {
		return "", ErrTaskTitleTooLong
	}
	return trimmed, nil
}

// ValidateDueDate checks that the given due date is strictly in the future.
// This rule applies when a due date is accepted (create or update), not to
// due dates already stored.
func ValidateDueDate(dueDate time.Time) error {
	if !dueDate.After(time.Now().UTC()) {
		return ErrTaskDueDateNotFuture
	}
	return nil
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsValidTaskPriority checks if the given priority is a valid TaskPriority.
func IsValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts a raw string into a TaskStatus.
// Returns ErrInvalidTaskStatus if the value is not part of the enumeration.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(raw)
	if !IsValidTaskStatus(status) {
		return "", ErrInvalidTaskStatus
	}
	return status, nil
}

// ParseTaskPriority converts a raw string into a TaskPriority.
// Returns ErrInvalidTaskPriority if the value is not part of the enumeration.
func ParseTaskPriority(raw string) (TaskPriority, error) {
	priority := TaskPriority(raw)
	if !IsValidTaskPriority(priority) {
		return "", ErrInvalidTaskPriority
	}
	return priority, nil
}
