package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

// DB is the global database connection
var DB *sqlx.DB

// ErrNotFound is returned when the requested record does not exist.
// Callers decide what to do with it; it is never a crash condition.
var ErrNotFound = errors.New("database: record not found")

// Connect establishes a connection to the database. The backend is chosen
// by the DB_TYPE environment variable ("sqlite", default, or "postgres"
// with DATABASE_URL).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
	case "sqlite":
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "data"
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath := filepath.Join(dataDir, "lexbox.db")
		db, err = sqlx.Connect("sqlite3", dbPath+"?_busy_timeout=5000")
		if err != nil {
			return fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return fmt.Errorf("unknown DB_TYPE %q", dbType)
	}

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	// The UNIQUE(user_id, normalized_key) constraints are the hard
	// enforcement of the dedup invariant: two items with the same key are
	// never both schedulable for the same owner.
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			term TEXT NOT NULL,
			normalized_key TEXT NOT NULL,
			content TEXT,
			box_index INTEGER NOT NULL DEFAULT 1,
			next_review_at TIMESTAMP NOT NULL,
			correct_count INTEGER NOT NULL DEFAULT 0,
			incorrect_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(user_id, normalized_key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cards table: %w", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS backlog_items (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			term TEXT NOT NULL,
			normalized_key TEXT NOT NULL,
			scheduled_for TIMESTAMP NOT NULL,
			priority TEXT NOT NULL DEFAULT 'medium',
			source TEXT NOT NULL DEFAULT 'manual',
			created_at TIMESTAMP NOT NULL,
			UNIQUE(user_id, normalized_key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create backlog_items table: %w", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS user_settings (
			user_id INTEGER PRIMARY KEY,
			intervals TEXT NOT NULL DEFAULT '1,2,4,8,16',
			daily_new_limit INTEGER NOT NULL DEFAULT 10,
			locked_mode BOOLEAN NOT NULL DEFAULT false,
			notification_enabled BOOLEAN NOT NULL DEFAULT true,
			notification_hour INTEGER NOT NULL DEFAULT 9,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_settings table: %w", err)
	}

	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_cards_user_due ON cards(user_id, next_review_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cards index: %w", err)
	}

	return nil
}
