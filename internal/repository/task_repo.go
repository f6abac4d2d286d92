package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasklists/internal/db"
	"tasklists/internal/domain"
)

type TaskRepository struct {
	db  db.Querier
	now func() time.Time
}

func NewTaskRepository(q db.Querier) *TaskRepository {
	return &TaskRepository{db: q, now: time.Now}
}

// CreateTask inserts a task under listID. Status defaults to pending and
// both timestamps are set to the same instant.
func (r *TaskRepository) CreateTask(ctx context.Context, listID int64, in domain.CreateTaskInput) (*domain.Task, error) {
	if in.Title == "" {
		return nil, domain.ErrEmptyTitle
	}
	status := in.Status
	if status == "" {
		status = domain.TaskStatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	now := db.FormatTime(r.now())
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (list_id, title, description, due_date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+taskColumns,
		listID, in.Title, nullString(in.Description), nullString(in.DueDate), string(status), now, now,
	))
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// GetTasksByListID returns the list's tasks oldest first.
func (r *TaskRepository) GetTasksByListID(ctx context.Context, listID int64) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE list_id = ?
		 ORDER BY created_at ASC, id ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	defer rows.Close()

	res := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		res = append(res, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", db.Classify(err))
	}
	return res, nil
}

// GetTaskForUser returns the task only if it sits in a list owned by
// userID; nil, nil otherwise.
func (r *TaskRepository) GetTaskForUser(ctx context.Context, taskID, userID int64) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT t.id, t.list_id, t.title, t.description, t.due_date, t.status, t.created_at, t.updated_at
		 FROM tasks t
		 JOIN task_lists l ON l.id = t.list_id
		 WHERE t.id = ? AND l.user_id = ?`,
		taskID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask applies the non-nil fields of in and always refreshes
// updated_at. A missing task yields ErrNotFound.
func (r *TaskRepository) UpdateTask(ctx context.Context, taskID int64, in domain.UpdateTaskInput) (*domain.Task, error) {
	var (
		sets []string
		args []any
	)
	if in.Title != nil {
		if *in.Title == "" {
			return nil, domain.ErrEmptyTitle
		}
		sets = append(sets, "title = ?")
		args = append(args, *in.Title)
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *in.Description)
	}
	if in.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *in.DueDate)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *in.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, string(*in.Status))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, db.FormatTime(r.now()), taskID)

	t, err := scanTask(r.db.QueryRowContext(ctx,
		`UPDATE tasks SET `+strings.Join(sets, ", ")+`
		 WHERE id = ?
		 RETURNING `+taskColumns,
		args...,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update task %d: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// DeleteTask is idempotent; the bool reports whether a row was removed.
func (r *TaskRepository) DeleteTask(ctx context.Context, taskID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return n > 0, nil
}
