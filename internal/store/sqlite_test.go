package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsched/rtsched/sched"
	"github.com/rtsched/rtsched/sched/trace"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRun() *RunRecord {
	metrics := sched.Metrics{
		TotalCompletionTime: 5,
		AvgTurnaround:       4,
		CPUUtil:             83.33,
		Preemptions:         1,
		TotalMisses:         1,
		MissRatio:           0.5,
		TotalReleases:       2,
	}
	log := []trace.Record{
		{Task: "A", Start: 0, End: 1, Core: 0, Reason: trace.ReasonPreempted},
		{Task: "B", Start: 1, End: 3, Core: 0},
		{Task: "A", Start: 3, End: 7, Core: 0},
	}
	return NewRunRecord("EDF", 1, 8, metrics, log)
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run := sampleRun()

	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "EDF", got.Algorithm)
	assert.Equal(t, 1, got.Cores)
	assert.Equal(t, 8.0, got.Ticks)
	assert.Equal(t, run.Metrics, got.Metrics)
	require.Len(t, got.Log, 3)
	assert.Equal(t, run.Log, got.Log)
	assert.Equal(t, trace.ReasonPreempted, got.Log[0].Reason)
	assert.True(t, got.CreatedAt.Equal(run.CreatedAt))
}

func TestGetRun_UnknownIDReturnsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetRun(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveRun_DuplicateIDFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run := sampleRun()
	require.NoError(t, s.SaveRun(ctx, run))
	assert.Error(t, s.SaveRun(ctx, run))
}

func TestListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleRun()
	require.NoError(t, s.SaveRun(ctx, first))
	second := sampleRun()
	second.Algorithm = "RR"
	second.CreatedAt = second.CreatedAt.Add(time.Second) // force a distinct sort key
	require.NoError(t, s.SaveRun(ctx, second))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID, "newest run listed first")
	assert.Equal(t, "RR", runs[0].Algorithm)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestNewRunRecord_AssignsUniqueIDs(t *testing.T) {
	a := NewRunRecord("EDF", 1, 0, sched.Metrics{}, nil)
	b := NewRunRecord("EDF", 1, 0, sched.Metrics{}, nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
