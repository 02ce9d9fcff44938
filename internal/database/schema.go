package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the triage schema in SQL portable between PostgreSQL and
// SQLite. Deployments run migrations out of band; EnsureSchema exists for
// the sqlite3 driver, where the database file starts empty.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tags (
		id         INTEGER PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id         INTEGER PRIMARY KEY,
		review_id  TEXT NOT NULL,
		run_id     TEXT NOT NULL,
		title      TEXT NOT NULL,
		body       TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT '',
		spam       BOOLEAN NOT NULL DEFAULT FALSE,
		verdict    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_run_id ON tickets (run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_category ON tickets (category)`,
	`CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		requested   INTEGER NOT NULL,
		fetched     INTEGER NOT NULL,
		classified  INTEGER NOT NULL,
		spam        INTEGER NOT NULL,
		skipped     INTEGER NOT NULL,
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	)`,
}

// EnsureSchema creates the triage tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
