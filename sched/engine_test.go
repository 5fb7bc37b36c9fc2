package sched

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsched/rtsched/sched/trace"
)

func newTestEngine(algorithm string, cores int) *Engine {
	return NewEngine(Config{Algorithm: algorithm, NumCores: cores, Seed: 42})
}

func TestNewEngine_RejectsNonPositiveCores(t *testing.T) {
	assert.Panics(t, func() { NewEngine(Config{Algorithm: "EDF", NumCores: 0}) })
}

func TestSubmit_ComputesAbsoluteDeadline(t *testing.T) {
	e := newTestEngine("EDF", 1)

	oneshot := NewTask("oneshot", 2, 0, 7, 1)
	oneshot.ArrivalTime = 4
	e.Submit(oneshot)
	assert.Equal(t, 7.0, oneshot.NextDeadline, "one-shot deadline is purely relative")

	periodic := NewTask("periodic", 2, 10, 7, 1)
	periodic.ArrivalTime = 4
	e.Submit(periodic)
	assert.Equal(t, 11.0, periodic.NextDeadline, "periodic deadline is arrival-relative")

	assert.Equal(t, 2, e.TotalReleases)
}

// The clock advances by exactly 1.0 per tick and never regresses, regardless
// of how much or little work a tick performs.
func TestTick_ClockMonotonic(t *testing.T) {
	e := newTestEngine("EDF", 2)
	e.Submit(NewTask("a", 3, 0, 50, 1))

	var observed []float64
	e.SetObserver(func(s Snapshot) { observed = append(observed, s.CurrentTime) })

	for i := 0; i < 10; i++ {
		e.Tick()
	}

	require.Len(t, observed, 10)
	for i, got := range observed {
		assert.Equal(t, float64(i), got, "observer at tick %d", i)
	}
	assert.Equal(t, 10.0, e.Clock)
}

func TestTick_LifecycleOfSingleTask(t *testing.T) {
	e := newTestEngine("FCFS", 1)
	task := NewTask("solo", 3, 0, 10, 1)
	task.ArrivalTime = 2
	e.Submit(task)

	e.Tick() // clock 0: before arrival
	assert.Equal(t, StatePending, task.State)

	e.Tick() // clock 1
	assert.Equal(t, StatePending, task.State)

	e.Tick() // clock 2: released and dispatched in the same tick
	assert.Equal(t, StateRunning, task.State)
	assert.Equal(t, 2.0, task.StartTime)

	e.Tick() // clock 3
	e.Tick() // clock 4
	e.Tick() // clock 5: remaining hits zero
	assert.Equal(t, StateCompleted, task.State)
	assert.Equal(t, 5.0, task.CompletionTime)
	assert.True(t, e.Idle())
}

func TestRun_TerminatesWhenOneShotSetDrains(t *testing.T) {
	e := newTestEngine("FCFS", 2)
	e.Submit(NewTask("a", 3, 0, 50, 1))
	e.Submit(NewTask("b", 4, 0, 50, 1))

	e.Run()

	assert.True(t, e.Idle())
	assert.Equal(t, 5.0, e.Clock, "longest task completes at 4, final tick closes at 5")
	assert.Len(t, e.Completed, 2)
}

// Two tasks on one core: FCFS runs them in submission order and misses the
// short deadline; EDF runs the urgent task first and misses none. Total
// elapsed time is identical because the workload is.
func TestEDFAvoidsMissThatFCFSIncurs(t *testing.T) {
	build := func(algorithm string) *Engine {
		e := newTestEngine(algorithm, 1)
		e.Submit(NewTask("A", 3, 0, 10, 1))
		e.Submit(NewTask("B", 2, 0, 2, 1))
		return e
	}

	fcfs := build("FCFS")
	fcfs.Run()
	fm := fcfs.ComputeMetrics()
	assert.Equal(t, 1, fm.TotalMisses)
	assert.Equal(t, 0.5, fm.MissRatio)

	edf := build("EDF")
	edf.Run()
	em := edf.ComputeMetrics()
	assert.Equal(t, 0, em.TotalMisses)
	assert.Equal(t, 0.0, em.MissRatio)

	assert.Equal(t, fcfs.Clock, edf.Clock, "same workload, same makespan")
}

// Round robin with the default quantum of 2: a 5-tick task produces its work
// in two execution intervals, the first closed by a time-slice rotation, and
// still accumulates its full execution time.
func TestRR_TimeSliceRotation(t *testing.T) {
	e := newTestEngine("RR", 1)
	task := NewTask("spinner", 5, 0, 50, 1)
	e.Submit(task)

	e.Run()

	records := e.Trace.ForTask("spinner")
	require.Len(t, records, 2)
	assert.Equal(t, trace.ReasonTimeSlice, records[0].Reason)
	assert.Equal(t, trace.ReasonNone, records[1].Reason)

	var executed float64
	for _, r := range records {
		executed += r.Duration()
	}
	assert.Equal(t, 5.0, executed)
	assert.Equal(t, 5.0, task.CompletionTime)
}

func TestEDF_PreemptionGoesToReadyTail(t *testing.T) {
	e := newTestEngine("EDF", 1)
	long := NewTask("long", 5, 0, 20, 1)
	e.Submit(long)
	urgent := NewTask("urgent", 2, 0, 3, 1)
	urgent.ArrivalTime = 1
	e.Submit(urgent)

	e.Run()

	assert.Equal(t, 1, e.Preemptions)
	assert.Equal(t, 1, long.PreemptionCount)
	assert.Equal(t, 3.0, urgent.CompletionTime)
	assert.Equal(t, 7.0, long.CompletionTime)

	// The preempted interval is logged and the pieces sum to the full demand.
	records := e.Trace.ForTask("long")
	require.Len(t, records, 2)
	assert.Equal(t, trace.ReasonPreempted, records[0].Reason)
	var executed float64
	for _, r := range records {
		executed += r.Duration()
	}
	assert.Equal(t, 5.0, executed)

	m := e.ComputeMetrics()
	assert.Equal(t, 0, m.TotalMisses)
	assert.Equal(t, 1, m.Preemptions)
}

// An overloaded periodic set keeps the core busy across every period
// boundary, so the run never satisfies the termination condition and fresh
// instances keep being minted under derived names.
func TestPeriodicReRelease(t *testing.T) {
	e := newTestEngine("EDF", 1)
	e.Submit(NewTask("A", 3, 4, 4, 1))
	e.Submit(NewTask("B", 3, 4, 4, 1))

	for i := 0; i < 200; i++ {
		e.Tick()
	}

	assert.False(t, e.Idle(), "overloaded periodic set must never drain")
	assert.Greater(t, e.TotalReleases, 2, "periodic tasks must have re-released")

	respawnSeen := false
	for _, done := range e.Completed {
		if strings.Contains(done.Name, "_") {
			respawnSeen = true
			assert.Equal(t, StateCompleted, done.State)
		}
	}
	assert.True(t, respawnSeen, "completed history should contain derived-name instances")
}

func TestRespawn_DeterministicWithoutJitter(t *testing.T) {
	e := newTestEngine("EDF", 1)
	base := NewTask("P", 2, 3, 3, 1)
	e.Submit(base)

	for i := 0; i < 4; i++ {
		e.Tick()
	}

	// Base instance completed at tick 2; its successor was minted at the
	// period boundary with the exact nominal execution time.
	require.NotEmpty(t, e.Completed)
	assert.Equal(t, 2.0, e.Completed[0].CompletionTime)

	var spawn *Task
	for _, candidate := range append(append([]*Task{}, e.Pending...), e.Ready.Items()...) {
		if strings.HasPrefix(candidate.Name, "P_") {
			spawn = candidate
		}
	}
	for _, candidate := range e.Running {
		if candidate != nil && strings.HasPrefix(candidate.Name, "P_") {
			spawn = candidate
		}
	}
	require.NotNil(t, spawn, "expected a respawned instance of P")
	assert.Equal(t, 2.0, spawn.ExecutionTime)
	assert.Equal(t, base.BasePriority, spawn.BasePriority)
}

func TestSwitchAlgorithm_TakesEffectNextTick(t *testing.T) {
	e := newTestEngine("FCFS", 1)
	assert.Equal(t, "FCFS", e.Policy().Name())
	e.SwitchAlgorithm("RR")
	assert.Equal(t, "RR", e.Policy().Name())
}

func TestComputeMetrics_Idempotent(t *testing.T) {
	e := newTestEngine("EDF", 2)
	e.Submit(NewTask("a", 3, 0, 10, 1))
	e.Submit(NewTask("b", 2, 0, 4, 1))
	e.Run()

	first := e.ComputeMetrics()
	second := e.ComputeMetrics()
	assert.Equal(t, first, second)
}

func TestComputeMetrics_UtilizationAndAverages(t *testing.T) {
	e := newTestEngine("FCFS", 1)
	e.Submit(NewTask("A", 3, 0, 10, 1))
	e.Submit(NewTask("B", 2, 0, 2, 1))
	e.Run()

	m := e.ComputeMetrics()
	assert.Equal(t, 5.0, m.TotalCompletionTime)
	// Turnarounds: A=3, B=5. Waits: A=0, B=3.
	assert.InDelta(t, 4.0, m.AvgTurnaround, 1e-9)
	assert.InDelta(t, 1.5, m.AvgWait, 1e-9)
	// 5 busy ticks over 6 elapsed on one core.
	assert.InDelta(t, 5.0/6.0*100, m.CPUUtil, 1e-9)
	assert.Equal(t, 2, m.TotalReleases)
	assert.Positive(t, m.EnergyConsumed)
	assert.Zero(t, m.Migrations)
	assert.Zero(t, m.FaultsDetected)
	assert.Zero(t, m.HardMisses)
}

func TestSnapshot_CopiesState(t *testing.T) {
	e := newTestEngine("EDF", 2)
	e.Submit(NewTask("a", 5, 0, 20, 1))
	e.Tick()

	snap := e.Snapshot()
	assert.Equal(t, 1.0, snap.CurrentTime)
	assert.Equal(t, "EDF", snap.Algorithm)
	require.Len(t, snap.Cores, 2)
	require.NotNil(t, snap.Cores[0].Task)
	assert.Equal(t, "a", snap.Cores[0].Task.Name)
	assert.Nil(t, snap.Cores[1].Task)

	// Mutating the snapshot must not leak back into the engine.
	snap.Cores[0].Task.Name = "mutated"
	assert.Equal(t, "a", e.Running[0].Name)
}
