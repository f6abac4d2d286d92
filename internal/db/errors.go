package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrStoreUnavailable: the medium is unreachable, failed to initialize
	// or the store has been closed.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUniqueViolation: an insert collided with a UNIQUE column.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrForeignKeyViolation: a row references a parent that does not exist.
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// Classify maps driver errors onto the store error kinds. Errors that are
// not recognized (including sql.ErrNoRows) are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrUniqueViolation),
		errors.Is(err, ErrForeignKeyViolation):
		return err
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	case errors.Is(err, sql.ErrConnDone), isClosedDB(err):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(se.Error(), "UNIQUE constraint failed")
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(se.Error(), "FOREIGN KEY constraint failed")
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.ForeignKeyViolation
	}
	return false
}

// database/sql does not export its closed-pool error.
func isClosedDB(err error) bool {
	return strings.Contains(err.Error(), "sql: database is closed")
}
