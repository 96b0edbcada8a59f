package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/review/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// Config holds SQLite connection parameters.
type Config struct {
	// Path is a file path or Memory.
	Path        string
	BusyTimeout time.Duration
}

// Store implements db.Store over database/sql with the modernc SQLite driver.
type Store struct {
	db *sql.DB
}

// NewStore opens the database. In-memory databases are pinned to one connection
// so every query sees the same data.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := registerFunctions(); err != nil {
		return nil, err
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", cfg.Path, busy.Milliseconds())

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}
	if isMemory(cfg.Path) {
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	}
	return &Store{db: conn}, nil
}

func isMemory(path string) bool {
	return path == Memory || strings.Contains(path, "mode=memory")
}

// Dialect returns the SQLite dialect.
func (s *Store) Dialect() db.Dialect { return Dialect{} }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Query runs a read query.
func (s *Store) Query(ctx context.Context, query string, args ...any) (db.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return sqlRows{rows}, nil
}

// Exec runs a statement.
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	return nil
}

// InTx runs fn in a transaction. A panic in fn rolls back and re-panics.
func (s *Store) InTx(ctx context.Context, fn func(tx db.Execer) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpBegin, Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else if cErr := tx.Commit(); cErr != nil {
			err = &db.Error{Op: db.OpCommit, Err: cErr}
		}
	}()

	return fn(txExecer{tx: tx})
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitLoop(ctx, timeout, s.Ping)
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() { _ = r.Rows.Close() }

type txExecer struct {
	tx *sql.Tx
}

func (t txExecer) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	return nil
}
