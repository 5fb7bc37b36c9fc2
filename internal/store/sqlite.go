package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rtsched/rtsched/sched"
	"github.com/rtsched/rtsched/sched/trace"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	logrus.Debugf("store: running migrations")
	return migrate(ctx, s.db)
}

// SaveRun persists a run row and its execution-log intervals in one
// transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) error {
	metricsJSON, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, algorithm, cores, ticks, metrics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Algorithm, run.Cores, run.Ticks,
		string(metricsJSON), run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for seq, r := range run.Log {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO intervals (run_id, seq, task, start_tick, end_tick, core, reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, seq, r.Task, r.Start, r.End, r.Core, string(r.Reason),
		)
		if err != nil {
			return fmt.Errorf("insert interval %d of run %s: %w", seq, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	logrus.Debugf("store: saved run %s (%d intervals)", run.ID, len(run.Log))
	return nil
}

// GetRun loads a stored run by ID. Returns nil if no such run exists.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var run RunRecord
	var metricsJSON, createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, algorithm, cores, ticks, metrics, created_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Algorithm, &run.Cores, &run.Ticks, &metricsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var metrics sched.Metrics
	if err := json.Unmarshal([]byte(metricsJSON), &metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	run.Metrics = metrics
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT task, start_tick, end_tick, core, reason FROM intervals WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r trace.Record
		var reason string
		if err := rows.Scan(&r.Task, &r.Start, &r.End, &r.Core, &reason); err != nil {
			return nil, err
		}
		r.Reason = trace.Reason(reason)
		run.Log = append(run.Log, r)
	}
	return &run, rows.Err()
}

// ListRuns returns summaries of all stored runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, algorithm, cores, ticks, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var sum RunSummary
		var createdAt string
		if err := rows.Scan(&sum.ID, &sum.Algorithm, &sum.Cores, &sum.Ticks, &createdAt); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
