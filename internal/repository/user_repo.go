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

type UserRepository struct {
	db  db.Querier
	now func() time.Time
}

func NewUserRepository(q db.Querier) *UserRepository {
	return &UserRepository{db: q, now: time.Now}
}

// CreateUser inserts a user and returns the stored record. A duplicate
// email yields an error matching db.ErrUniqueViolation.
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, created_at)
		 VALUES (?, ?, ?)
		 RETURNING `+userColumns,
		email, passwordHash, db.FormatTime(r.now()),
	))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindUserByEmail returns nil, nil when no user has the email.
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindUserByID returns nil, nil when the id is unknown.
func (r *UserRepository) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}
