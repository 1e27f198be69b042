// Package store is the SQLite-backed description repository: nested-set tree
// reads, taxonomy lookups, localized text with culture fallback, fixture
// import and job status records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"archreport/internal/logging"

	_ "modernc.org/sqlite"
)

// DefaultDriver is the pure-Go SQLite driver registered by modernc.org/sqlite.
const DefaultDriver = "sqlite"

// Store holds the description database.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex // serializes writers (import, rebuild, job log)
	dbPath string
	driver string
}

// Open initializes the SQLite database at the given path using driver
// ("sqlite" or, in cgo builds, "sqlite3").
func Open(driver, path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	if driver == "" {
		driver = DefaultDriver
	}
	logging.Store("Opening description store at %s (driver=%s)", path, driver)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Get(logging.CategoryStore).Error("Failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	s := &Store{db: db, dbPath: path, driver: driver}
	if err := s.initialize(); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}

	logging.StoreDebug("Description store ready")
	return s, nil
}

func (s *Store) initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := RunMigrations(s.db); err != nil {
		return err
	}
	if _, err := s.db.Exec(seed); err != nil {
		return fmt.Errorf("failed to seed taxonomy: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// DB exposes the underlying handle for maintenance commands and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// CountNodes returns the number of descriptions, the tree root included.
func (s *Store) CountNodes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM information_object").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count descriptions: %w", err)
	}
	return n, nil
}
