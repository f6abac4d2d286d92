// Package db owns the relational schema and the connection lifecycle of the
// task store. SQLite (modernc.org/sqlite) is the default medium; Postgres is
// reachable through pgx for deployments that outgrow a single file.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"tasklists/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Row is the subset of *sql.Row used by repositories.
type Row interface {
	Scan(dest ...any) error
}

// Querier executes statements written with '?' placeholders.
// Implemented by *Store, *Session and *LazySession.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) Row
}

type Store struct {
	db     *sql.DB
	pool   *pgxpool.Pool
	driver string

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	sessions atomic.Int64
}

// Open connects to the medium described by opts. It does not create the
// schema; call Initialize for that.
func Open(ctx context.Context, opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	s := &Store{driver: driver}
	var err error
	switch driver {
	case DriverSQLite:
		s.db, err = openSQLite(ctx, opts.Path)
	case DriverPostgres:
		s.db, s.pool, err = openPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrStoreUnavailable, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return s, nil
}

func (s *Store) Driver() string {
	return s.driver
}

// Initialize creates the tables if they are absent. Existing data is kept.
func (s *Store) Initialize(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreUnavailable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin schema tx: %w", ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range SchemaStatements(s.driver) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: create schema: %w", ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit schema: %w", ErrStoreUnavailable, err)
	}

	logger.Debug("store schema ready", "driver", s.driver)
	return nil
}

// Close releases the medium. Later calls return the first result.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.db.Close()
		if s.pool != nil {
			s.pool.Close()
		}
	})
	return s.closeErr
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	return s.closed.Load()
}

// ActiveSessions is the number of acquired, unreleased sessions.
func (s *Store) ActiveSessions() int {
	return int(s.sessions.Load())
}

// Ping checks that the medium answers. SQLite runs on one connection, so
// while a session holds it the store is known to be up and Ping returns
// without queueing behind the session.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreUnavailable
	}
	if s.driver == DriverSQLite && s.sessions.Load() > 0 {
		return nil
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Acquire reserves a dedicated connection for the caller. The session must
// be released exactly once; Release is safe to call more than once.
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	if s.closed.Load() {
		return nil, ErrStoreUnavailable
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %w", ErrStoreUnavailable, err)
	}
	s.sessions.Add(1)
	return &Session{store: s, conn: conn}, nil
}

// Lazy returns a Querier that acquires a session on its first statement.
func (s *Store) Lazy() *LazySession {
	return &LazySession{store: s}
}

func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.closed.Load() {
		return nil, ErrStoreUnavailable
	}
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	return res, Classify(err)
}

func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.closed.Load() {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	return rows, Classify(err)
}

func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	if s.closed.Load() {
		return errRow{err: ErrStoreUnavailable}
	}
	return classifiedRow{row: s.db.QueryRowContext(ctx, s.rebind(query), args...)}
}

// rebind rewrites '?' placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Session is a per-request handle pinned to one connection.
type Session struct {
	store *Store
	conn  *sql.Conn
	once  sync.Once
}

// Release returns the connection to the pool.
func (s *Session) Release() {
	s.once.Do(func() {
		s.store.sessions.Add(-1)
		if err := s.conn.Close(); err != nil {
			logger.Warn("release store session", "error", err)
		}
	})
}

func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.store.closed.Load() {
		return nil, ErrStoreUnavailable
	}
	res, err := s.conn.ExecContext(ctx, s.store.rebind(query), args...)
	return res, Classify(err)
}

func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.store.closed.Load() {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.conn.QueryContext(ctx, s.store.rebind(query), args...)
	return rows, Classify(err)
}

func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	if s.store.closed.Load() {
		return errRow{err: ErrStoreUnavailable}
	}
	return classifiedRow{row: s.conn.QueryRowContext(ctx, s.store.rebind(query), args...)}
}

type classifiedRow struct {
	row *sql.Row
}

func (r classifiedRow) Scan(dest ...any) error {
	return Classify(r.row.Scan(dest...))
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

// LazySession defers Acquire until the first statement, so work done before
// it (password hashing, input checks) does not hold a connection. After
// Release the next statement acquires again.
type LazySession struct {
	store *Store

	mu   sync.Mutex
	sess *Session
}

func (l *LazySession) session(ctx context.Context) (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sess == nil {
		sess, err := l.store.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		l.sess = sess
	}
	return l.sess, nil
}

// Acquired reports whether a session is currently held.
func (l *LazySession) Acquired() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sess != nil
}

// Release gives back the held session, if any.
func (l *LazySession) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sess != nil {
		l.sess.Release()
		l.sess = nil
	}
}

func (l *LazySession) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	sess, err := l.session(ctx)
	if err != nil {
		return nil, err
	}
	return sess.ExecContext(ctx, query, args...)
}

func (l *LazySession) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	sess, err := l.session(ctx)
	if err != nil {
		return nil, err
	}
	return sess.QueryContext(ctx, query, args...)
}

func (l *LazySession) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	sess, err := l.session(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return sess.QueryRowContext(ctx, query, args...)
}
