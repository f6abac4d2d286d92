package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tasklists/internal/db"
	"tasklists/internal/domain"
)

type TaskListRepository struct {
	db  db.Querier
	now func() time.Time
}

func NewTaskListRepository(q db.Querier) *TaskListRepository {
	return &TaskListRepository{db: q, now: time.Now}
}

// CreateTaskList does not check that the user exists; the store's foreign
// key rejects dangling owners with db.ErrForeignKeyViolation.
func (r *TaskListRepository) CreateTaskList(ctx context.Context, userID int64, name string) (*domain.TaskList, error) {
	l, err := scanTaskList(r.db.QueryRowContext(ctx,
		`INSERT INTO task_lists (user_id, name, created_at)
		 VALUES (?, ?, ?)
		 RETURNING `+taskListColumns,
		userID, name, db.FormatTime(r.now()),
	))
	if err != nil {
		return nil, fmt.Errorf("create task list: %w", err)
	}
	return l, nil
}

// GetTaskListsByUserID returns the user's lists oldest first.
func (r *TaskListRepository) GetTaskListsByUserID(ctx context.Context, userID int64) ([]domain.TaskList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskListColumns+`
		 FROM task_lists
		 WHERE user_id = ?
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get task lists: %w", err)
	}
	defer rows.Close()

	res := make([]domain.TaskList, 0)
	for rows.Next() {
		l, err := scanTaskList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task list: %w", err)
		}
		res = append(res, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task lists: %w", db.Classify(err))
	}
	return res, nil
}

// GetTaskList returns the list only when userID owns it; nil, nil otherwise.
func (r *TaskListRepository) GetTaskList(ctx context.Context, listID, userID int64) (*domain.TaskList, error) {
	l, err := scanTaskList(r.db.QueryRowContext(ctx,
		`SELECT `+taskListColumns+` FROM task_lists WHERE id = ? AND user_id = ?`,
		listID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task list: %w", err)
	}
	return l, nil
}

// DeleteTaskList removes the list if userID owns it. Tasks go with it via
// ON DELETE CASCADE. Deleting nothing is not an error; the returned bool
// reports whether a row matched.
func (r *TaskListRepository) DeleteTaskList(ctx context.Context, listID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM task_lists WHERE id = ? AND user_id = ?`,
		listID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete task list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task list: %w", err)
	}
	return n > 0, nil
}
