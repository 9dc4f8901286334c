/*
Package sqlite provides a SQLite-backed implementation of studio.TxStore.

KEY TABLES:
  instructors, packages, customers, classes: passive records
  attendance: the ledger, one row per check-in

Every row has an internal UUID primary key (id) and a UNIQUE business key
(customer_id, class_id, ...). References between tables are by business
key and deliberately carry no FOREIGN KEY constraint: the domain tolerates
dangling references and renders them as "Unknown".

LEDGER CONSTRAINTS:
  - attendance.checkin_id is UNIQUE. Two writers that compute the same
    max+1 cannot both commit; the loser gets studio.ErrDuplicateCheckinID.
  - attendance.status is CHECKed against the three allowed values.

CONCURRENCY:
  Uses sync.RWMutex for in-process serialisation. Transactions open with
  BEGIN IMMEDIATE (_txlock=immediate) so the write lock is taken before
  the max(checkin_id) read, not at the first INSERT. Lock timeouts from
  other processes surface as studio.ErrBusy.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/yogitrack.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := studio.NewService(store)

SEE ALSO:
  - studio/store.go: Interface definitions
  - studio/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/yogitrack/studio/studio"
)

// Store implements studio.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store, err := NewWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewWithDB wraps an already opened database and migrates it.
func NewWithDB(db *sql.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS instructors (
		id TEXT PRIMARY KEY,
		instructor_id TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		preferred_contact TEXT
	);

	CREATE TABLE IF NOT EXISTS packages (
		id TEXT PRIMARY KEY,
		package_id TEXT NOT NULL UNIQUE,
		package_name TEXT NOT NULL,
		description TEXT,
		price TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		senior INTEGER NOT NULL DEFAULT 0,
		address TEXT,
		preferred_contact TEXT,
		class_balance INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS classes (
		id TEXT PRIMARY KEY,
		class_id TEXT NOT NULL UNIQUE,
		class_name TEXT NOT NULL,
		instructor_id TEXT NOT NULL,
		class_type TEXT,
		description TEXT,
		daytime_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_classes_instructor
		ON classes(instructor_id);

	-- Attendance ledger
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		checkin_id INTEGER NOT NULL,
		customer_id TEXT NOT NULL,
		class_id TEXT NOT NULL,
		datetime TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('checked-in', 'cancelled', 'no-show'))
	);

	-- CRITICAL: one record per checkinId, even across processes
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_checkin_id
		ON attendance(checkin_id);

	-- Customer history and class attendance views
	CREATE INDEX IF NOT EXISTS idx_attendance_customer_date
		ON attendance(customer_id, datetime DESC);
	CREATE INDEX IF NOT EXISTS idx_attendance_class_date
		ON attendance(class_id, datetime DESC);

	-- Stats date range
	CREATE INDEX IF NOT EXISTS idx_attendance_datetime
		ON attendance(datetime);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (studio.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store studio.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{records{q: sqlTx}}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return mapError(fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

// txStore runs every query on one *sql.Tx. The parent lock is already held.
type txStore struct {
	records
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"attendance", "classes", "customers", "packages", "instructors"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// mapError translates driver errors into studio sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked:
			return fmt.Errorf("%w: %v", studio.ErrBusy, err)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return uniqueError(err)
		}
		return err
	}
	if isUniqueConstraintError(err) {
		return uniqueError(err)
	}
	if strings.Contains(err.Error(), "database is locked") {
		return fmt.Errorf("%w: %v", studio.ErrBusy, err)
	}
	return err
}

func uniqueError(err error) error {
	if strings.Contains(err.Error(), "checkin_id") {
		return fmt.Errorf("%w: %v", studio.ErrDuplicateCheckinID, err)
	}
	return fmt.Errorf("%w: %v", studio.ErrDuplicateKey, err)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ studio.TxStore = (*Store)(nil)
