package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rtsched/rtsched/sched"
	"github.com/rtsched/rtsched/sched/trace"
)

// RunRecord is a finished simulation run: its configuration, derived
// metrics, and the full execution log.
type RunRecord struct {
	ID        string
	Algorithm string
	Cores     int
	Ticks     float64
	CreatedAt time.Time
	Metrics   sched.Metrics
	Log       []trace.Record
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID        string
	Algorithm string
	Cores     int
	Ticks     float64
	CreatedAt time.Time
}

// NewRunRecord assembles a RunRecord with a fresh identifier.
func NewRunRecord(algorithm string, cores int, ticks float64, metrics sched.Metrics, log []trace.Record) *RunRecord {
	return &RunRecord{
		ID:        uuid.NewString(),
		Algorithm: algorithm,
		Cores:     cores,
		Ticks:     ticks,
		CreatedAt: time.Now().UTC(),
		Metrics:   metrics,
		Log:       log,
	}
}

// Store defines the persistence layer for simulation results.
type Store interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context) ([]RunSummary, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
