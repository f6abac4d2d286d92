package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidStatus = errors.New("invalid task status")
	ErrEmptyTitle    = errors.New("task title is required")
)

// TaskStatus - lifecycle state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          int64      `db:"id" json:"id"`
	ListID      int64      `db:"list_id" json:"list_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	DueDate     *string    `db:"due_date" json:"due_date,omitempty"` // YYYY-MM-DD
	Status      TaskStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateTaskInput carries the fields accepted when creating a task.
// An empty Status means TaskStatusPending.
type CreateTaskInput struct {
	Title       string
	Description *string
	DueDate     *string
	Status      TaskStatus
}

// UpdateTaskInput is a partial update: nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Status      *TaskStatus
}

// Empty reports whether no field is set.
func (u UpdateTaskInput) Empty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil && u.Status == nil
}
