package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all result tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		algorithm  TEXT NOT NULL,
		cores      INTEGER NOT NULL,
		ticks      REAL NOT NULL,
		metrics    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS intervals (
		run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq      INTEGER NOT NULL,
		task       TEXT NOT NULL,
		start_tick REAL NOT NULL,
		end_tick   REAL NOT NULL,
		core       INTEGER NOT NULL,
		reason   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_intervals_run ON intervals(run_id)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
