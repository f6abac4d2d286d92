package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tasklists/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultPath is the SQLite file used when no path is supplied.
	DefaultPath = "tasks.db"

	memoryPath = ":memory:"
)

// Options selects and addresses the backing medium.
type Options struct {
	Driver string // DriverSQLite (default) or DriverPostgres
	Path   string // SQLite file; DefaultPath when empty
	DSN    string // Postgres connection string
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}

	if path != memoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
	}

	// Pragmas in the DSN are applied to every new connection.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// single writer; also keeps an in-memory database alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if path != memoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	logger.Info("sqlite store opened", "path", path)
	return db, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, *pgxpool.Pool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil, fmt.Errorf("open postgres: empty dsn")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("postgres store connected")
	return stdlib.OpenDBFromPool(pool), pool, nil
}
