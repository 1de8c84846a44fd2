package store

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/tabular/internal/storage"
)

// Store owns a SQLite database holding row documents for any number of
// logical tables. Uses WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the bookkeeping schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS id_sequences (
			tbl  TEXT PRIMARY KEY,
			last INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create id_sequences: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer adapters when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Adapter creates a storage adapter bound to one logical table, creating
// its backing SQLite table if needed. physical is the on-disk table name;
// pass "" to use the logical name.
func (s *Store) Adapter(table, physical string, mode storage.IDMode) (*Adapter, error) {
	if physical == "" {
		physical = table
	}
	if !validIdent.MatchString(physical) {
		return nil, storage.NewConfiguration("invalid physical table name %q", physical)
	}

	_, err := s.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			pos    INTEGER PRIMARY KEY AUTOINCREMENT,
			row_id TEXT NOT NULL UNIQUE,
			doc    TEXT NOT NULL
		)
	`, physical))
	if err != nil {
		return nil, fmt.Errorf("failed to create table %q: %w", physical, err)
	}

	return &Adapter{
		store:    s,
		table:    table,
		physical: physical,
		mode:     mode,
	}, nil
}

// validIdent restricts physical table names to plain identifiers. The name
// is interpolated into DDL/DML, so nothing else is allowed.
var validIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
