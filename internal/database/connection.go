package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the handle to the durable state shared by the learning flow, the
// point ledger and the enforcement loop. It is opened once per process and
// closed at shutdown; every repository takes a *Store instead of reaching
// for a package global so tests can run against their own store.
type Store struct {
	DB     *sqlx.DB
	driver string
}

// Open connects to the database and bootstraps the schema.
// driver is "sqlite3" or "postgres"; dsn is the file path respectively the
// connection string.
func Open(driver, dsn string) (*Store, error) {
	if driver == "sqlite3" && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &Store{DB: db, driver: driver}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenFromEnv opens the store using DB_TYPE and DB_PATH / DATABASE_URL.
func OpenFromEnv() (*Store, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}
	if dbType == "postgres" {
		return Open("postgres", os.Getenv("DATABASE_URL"))
	}
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = filepath.Join("data", "studylock.db")
	}
	return Open("sqlite3", path)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// Postgres reports whether the store runs on the postgres driver.
func (s *Store) Postgres() bool {
	return s.driver == "postgres"
}

// Rebind converts ?-placeholders to the driver's bindvar style.
func (s *Store) Rebind(query string) string {
	return s.DB.Rebind(query)
}

// serial returns the dialect-specific auto-increment primary key fragment.
func (s *Store) serial() string {
	if s.driver == "postgres" {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// initializeSchema creates necessary tables if they don't exist
func (s *Store) initializeSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS progress (
			item_id INTEGER NOT NULL,
			mode TEXT NOT NULL,
			level INTEGER NOT NULL DEFAULT 0,
			next_due_at_sec BIGINT NOT NULL DEFAULT 0,
			last_answered_at_ms BIGINT NOT NULL DEFAULT 0,
			study_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (item_id, mode)
		)`,
		`CREATE TABLE IF NOT EXISTS point_balance (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			balance INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS point_history (
			id ` + s.serial() + `,
			mode TEXT NOT NULL,
			epoch_day BIGINT NOT NULL,
			delta INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS unlock_grants (
			package_id TEXT PRIMARY KEY,
			unlocked_until_sec BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS unlock_history (
			id ` + s.serial() + `,
			package_id TEXT NOT NULL,
			points_spent INTEGER NOT NULL,
			unlock_duration_sec BIGINT NOT NULL,
			unlocked_at_sec BIGINT NOT NULL,
			cancelled BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS locked_apps (
			package_id TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			is_locked BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS mode_configs (
			mode TEXT PRIMARY KEY,
			base_point INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS daily_aggregates (
			day TEXT PRIMARY KEY,
			points INTEGER NOT NULL DEFAULT 0,
			points_used INTEGER NOT NULL DEFAULT 0,
			used_points INTEGER NOT NULL DEFAULT 0,
			study_count INTEGER NOT NULL DEFAULT 0,
			correct_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS daily_modes (
			day TEXT NOT NULL,
			mode TEXT NOT NULL,
			UNIQUE (day, mode)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_grades (
			day TEXT NOT NULL,
			grade INTEGER NOT NULL,
			UNIQUE (day, grade)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_actions (
			id ` + s.serial() + `,
			day TEXT NOT NULL,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL DEFAULT '',
			correct BOOLEAN NOT NULL DEFAULT FALSE,
			delta INTEGER NOT NULL DEFAULT 0,
			at_sec BIGINT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}

	// Seed the singleton balance row so ledger updates can assume it exists.
	_, err := s.DB.Exec(
		"INSERT INTO point_balance (id, balance) VALUES (1, 0) ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("failed to seed point balance: %v", err)
	}
	return nil
}
