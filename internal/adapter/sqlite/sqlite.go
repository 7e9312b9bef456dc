// Package sqlite implements the domain repositories on a local SQLite file,
// for single-box deployments that run without a PostgreSQL server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a *sql.DB and implements the domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open creates the parent directory if needed, opens the database file, and
// runs migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	s, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	s.SetMaxOpenConns(1)

	d := &DB{sql: s}
	if err := d.migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"PRAGMA foreign_keys = ON;",
		"CREATE TABLE IF NOT EXISTS users (id INTEGER PRIMARY KEY AUTOINCREMENT, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TEXT NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE, expires_at TEXT NOT NULL, created_at TEXT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
		"CREATE TABLE IF NOT EXISTS habits (user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE, name TEXT NOT NULL, target_time TEXT NOT NULL, active INTEGER NOT NULL DEFAULT 1, created_at TEXT NOT NULL);",
		"CREATE TABLE IF NOT EXISTS progress_logs (user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE, log_date TEXT NOT NULL, completion_hour INTEGER NOT NULL CHECK(completion_hour BETWEEN 0 AND 23), created_at TEXT NOT NULL, PRIMARY KEY (user_id, log_date));",
		"CREATE TABLE IF NOT EXISTS habit_history (id TEXT PRIMARY KEY, user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE, habit_name TEXT NOT NULL, target_time TEXT NOT NULL, archived_at TEXT NOT NULL, total_days INTEGER NOT NULL, log_summary TEXT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_habit_history_user_archived ON habit_history(user_id, archived_at DESC);",
		"CREATE TABLE IF NOT EXISTS notification_settings (user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE, line_user_id TEXT NOT NULL DEFAULT '', enabled INTEGER NOT NULL DEFAULT 0, updated_at TEXT NOT NULL);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
