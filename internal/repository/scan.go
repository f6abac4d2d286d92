package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"tasklists/internal/db"
	"tasklists/internal/domain"
)

// ErrNotFound is returned by mutations that address a missing row.
// Lookups report absence as a nil record instead.
var ErrNotFound = errors.New("not found")

type scanner interface {
	Scan(dest ...any) error
}

const userColumns = `id, email, password_hash, created_at`

func scanUser(row scanner) (*domain.User, error) {
	var (
		u       domain.User
		created string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &created); err != nil {
		return nil, err
	}

	var err error
	if u.CreatedAt, err = db.ParseTime(created); err != nil {
		return nil, fmt.Errorf("user %d: %w", u.ID, err)
	}
	return &u, nil
}

const taskListColumns = `id, user_id, name, created_at`

func scanTaskList(row scanner) (*domain.TaskList, error) {
	var (
		l       domain.TaskList
		created string
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &created); err != nil {
		return nil, err
	}

	var err error
	if l.CreatedAt, err = db.ParseTime(created); err != nil {
		return nil, fmt.Errorf("task list %d: %w", l.ID, err)
	}
	return &l, nil
}

const taskColumns = `id, list_id, title, description, due_date, status, created_at, updated_at`

func scanTask(row scanner) (*domain.Task, error) {
	var (
		t                domain.Task
		desc, due        sql.NullString
		created, updated string
	)
	if err := row.Scan(&t.ID, &t.ListID, &t.Title, &desc, &due, &t.Status, &created, &updated); err != nil {
		return nil, err
	}

	if desc.Valid {
		t.Description = &desc.String
	}
	if due.Valid {
		t.DueDate = &due.String
	}
	if !t.Status.Valid() {
		return nil, fmt.Errorf("task %d: %w: %q", t.ID, domain.ErrInvalidStatus, t.Status)
	}

	var err error
	if t.CreatedAt, err = db.ParseTime(created); err != nil {
		return nil, fmt.Errorf("task %d: %w", t.ID, err)
	}
	if t.UpdatedAt, err = db.ParseTime(updated); err != nil {
		return nil, fmt.Errorf("task %d: %w", t.ID, err)
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
