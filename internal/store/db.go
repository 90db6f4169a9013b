// Package store persists audited decisions and webhook registrations in
// SQLite. The engines themselves stay pure; everything stateful lives here.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("not found")

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			region TEXT NOT NULL,
			farm_type TEXT NOT NULL,
			crop_type TEXT NOT NULL,
			late_payment_prob REAL NOT NULL,
			risk_tier TEXT NOT NULL,
			decision TEXT NOT NULL,
			recommended_product TEXT NOT NULL,
			bnpl_limit INTEGER NOT NULL,
			bnpl_tenor_months INTEGER NOT NULL,
			payload TEXT NOT NULL,
			processed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_user ON decisions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_tier ON decisions(risk_tier)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_processed_at ON decisions(processed_at)`,

		`CREATE TABLE IF NOT EXISTS webhooks (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			pd_threshold REAL NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
