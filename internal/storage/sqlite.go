// Package storage provides SQLite persistence for the collector.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
}

// Initialize opens (creating if needed) the collector database under
// dataDir.
func Initialize(dataDir string) (*DB, error) {
	return Open(filepath.Join(dataDir, "cloudscope.db"))
}

// Open opens a collector database at an explicit path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	wrapped := &DB{DB: db}
	if err := wrapped.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return wrapped, nil
}

func (db *DB) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS cloud_hosts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ip TEXT NOT NULL,
			domain TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL,
			country TEXT NOT NULL DEFAULT '',
			headers TEXT,
			status_code INTEGER DEFAULT 0,
			title TEXT DEFAULT '',
			selected INTEGER DEFAULT 0,
			discovered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(ip, domain)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cloud_hosts_provider ON cloud_hosts(provider)`,
		`CREATE INDEX IF NOT EXISTS idx_cloud_hosts_country ON cloud_hosts(country)`,
		`CREATE INDEX IF NOT EXISTS idx_cloud_hosts_selected ON cloud_hosts(selected)`,
		`CREATE INDEX IF NOT EXISTS idx_cloud_hosts_discovered ON cloud_hosts(discovered_at DESC)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
