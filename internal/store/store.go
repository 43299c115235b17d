package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// builder renders every statement for the SQLite dialect.
var builder = entsql.Dialect(dialect.SQLite)

// Store owns the database connection and hands out repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SessionRepo returns a SessionRepo backed by this store.
func (s *Store) SessionRepo() SessionRepo {
	return &sessionRepo{db: s.db}
}

// TrialRepo returns a TrialRepo backed by this store.
func (s *Store) TrialRepo() TrialRepo {
	return &trialRepo{db: s.db}
}

// AggregateRepo returns an AggregateRepo backed by this store.
func (s *Store) AggregateRepo() AggregateRepo {
	return &aggregateRepo{db: s.db}
}

// LevelRepo returns a LevelRepo backed by this store.
func (s *Store) LevelRepo() LevelRepo {
	return &levelRepo{db: s.db}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// Reset deletes all learner data: sessions, trials, aggregates, language
// levels and LLM events.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	// Children before parents.
	for _, table := range []string{tableTrials, tableSessions, tableAggregates, tableLevels, tableLLMEvents} {
		if _, err := exec(ctx, tx, builder.Delete(table)); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. FOCUSLAB_DB environment variable
// 2. $XDG_DATA_HOME/focuslab/focuslab.db
// 3. ~/.local/share/focuslab/focuslab.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("FOCUSLAB_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "focuslab.db")
	return p, EnsureDir(p)
}

// DataDir returns the application data directory
// ($XDG_DATA_HOME/focuslab or ~/.local/share/focuslab).
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "focuslab"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func exec(ctx context.Context, q querier, stmt entsql.Querier) (sql.Result, error) {
	query, args := stmt.Query()
	return q.ExecContext(ctx, query, args...)
}

func query(ctx context.Context, q querier, stmt entsql.Querier) (*sql.Rows, error) {
	s, args := stmt.Query()
	return q.QueryContext(ctx, s, args...)
}

func queryRow(ctx context.Context, q querier, stmt entsql.Querier) *sql.Row {
	s, args := stmt.Query()
	return q.QueryRowContext(ctx, s, args...)
}
