package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

func notFound(kind, id string) error {
	return fmt.Errorf("%s %w: %s", kind, ErrNotFound, id)
}

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

// New opens (or creates) the SQLite file at dbPath and migrates it.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: dbPath}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			columns_json TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_templates_name ON templates(name)`,
		`CREATE TABLE IF NOT EXISTS export_jobs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			template_id TEXT NOT NULL REFERENCES templates(id),
			source_type TEXT NOT NULL,
			source_config TEXT NOT NULL DEFAULT '{}',
			output_dir TEXT NOT NULL DEFAULT '',
			row_limit INTEGER NOT NULL DEFAULT 0,
			trigger_type TEXT NOT NULL DEFAULT 'manual',
			trigger_config TEXT NOT NULL DEFAULT '',
			enabled INTEGER NOT NULL DEFAULT 1,
			last_run_at DATETIME,
			last_status TEXT NOT NULL DEFAULT '',
			last_error TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_export_jobs_template ON export_jobs(template_id)`,
		`CREATE TABLE IF NOT EXISTS export_run_logs (
			id TEXT PRIMARY KEY,
			job_id TEXT NOT NULL REFERENCES export_jobs(id),
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			rows_written INTEGER NOT NULL DEFAULT 0,
			bytes_written INTEGER NOT NULL DEFAULT 0,
			path TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_export_run_logs_job ON export_run_logs(job_id)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			// ALTER TABLE fails if the column already exists.
			if strings.Contains(m, "ALTER TABLE") && strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}
