// The simulation engine: owns all queues and core slots, runs the tick loop,
// applies the active scheduling policy, and maintains thermal/energy state
// and the execution log.

package sched

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rtsched/rtsched/sched/trace"
)

// DefaultQuantum is the round-robin time slice in ticks.
const DefaultQuantum = 2.0

// Config carries the boundary-validated engine configuration.
type Config struct {
	Algorithm           string  // Scheduling policy name; empty defaults to EDF
	NumCores            int     // Number of simulated cores (must be > 0)
	BaseContextOverhead float64 // Stored for reporting; no policy consults it
	FaultTolerance      bool    // Reserved extension point; must not alter scheduling
	Quantum             float64 // Round-robin slice; 0 means DefaultQuantum
	Seed                int64   // Master seed for the jitter RNG
	ExecutionJitter     bool    // Sample jittered execution times on periodic re-release
}

// Engine is the core object that holds simulation time, system state, and
// the tick loop. Its stepping logic is single-threaded: wrap it in a
// Controller when driving it from multiple goroutines.
type Engine struct {
	policy              SchedulingPolicy
	numCores            int
	baseContextOverhead float64
	faultTolerance      bool
	quantum             float64
	jitter              bool
	rng                 *PartitionedRNG

	// Clock is the tick counter. It starts at 0.0 and advances by exactly
	// 1.0 per tick, closing the tick.
	Clock float64

	Pending   []*Task            // Submitted but not yet at/after arrival time
	Ready     *ReadyQueue        // Released, awaiting a core
	Running   []*Task            // One slot per core; nil = idle
	Completed []*Task            // Retired instances, metrics history
	Resources map[string]*Resource

	Thermal *ThermalState
	Trace   *trace.ExecutionTrace

	Preemptions   int
	TotalReleases int

	observer func(Snapshot)
}

// NewEngine constructs an engine from a boundary-validated Config.
func NewEngine(cfg Config) *Engine {
	if cfg.NumCores <= 0 {
		panic(fmt.Sprintf("NewEngine: NumCores must be positive, got %d", cfg.NumCores))
	}
	quantum := cfg.Quantum
	if quantum == 0 {
		quantum = DefaultQuantum
	}
	return &Engine{
		policy:              NewPolicy(cfg.Algorithm),
		numCores:            cfg.NumCores,
		baseContextOverhead: cfg.BaseContextOverhead,
		faultTolerance:      cfg.FaultTolerance,
		quantum:             quantum,
		jitter:              cfg.ExecutionJitter,
		rng:                 NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		Ready:               &ReadyQueue{},
		Running:             make([]*Task, cfg.NumCores),
		Resources:           make(map[string]*Resource),
		Thermal:             NewThermalState(cfg.NumCores),
		Trace:               trace.New(),
	}
}

// NumCores returns the number of simulated cores.
func (e *Engine) NumCores() int { return e.numCores }

// Policy returns the active scheduling policy.
func (e *Engine) Policy() SchedulingPolicy { return e.policy }

// SetObserver attaches a read-only status consumer invoked once per tick
// with a consistent snapshot. The observer must never mutate engine state.
func (e *Engine) SetObserver(fn func(Snapshot)) { e.observer = fn }

// AddResource registers a ceiling-protected resource with the engine.
func (e *Engine) AddResource(r *Resource) {
	e.Resources[r.Name] = r
}

// Submit accepts a task into the pending set. Initial remaining time is the
// nominal execution time; the absolute deadline is arrival-relative for
// periodic tasks and purely relative for one-shots. Always succeeds:
// parameter validation is a boundary responsibility, not the engine's.
func (e *Engine) Submit(t *Task) bool {
	t.RemainingTime = t.ExecutionTime
	if t.Period > 0 {
		t.NextDeadline = t.ArrivalTime + t.RelativeDeadline
	} else {
		t.NextDeadline = t.RelativeDeadline
	}
	t.State = StatePending
	e.Pending = append(e.Pending, t)
	e.TotalReleases++
	logrus.Debugf("submitted %s", t)
	return true
}

// SwitchAlgorithm replaces the active policy by name. Takes effect starting
// the next tick; tasks already running are not re-evaluated mid-interval.
func (e *Engine) SwitchAlgorithm(name string) {
	e.policy = NewPolicy(name)
	logrus.Infof("switched to %s", e.policy.Name())
}

// Idle reports whether pending, ready, and every core slot are
// simultaneously empty — the sole termination condition of Run.
func (e *Engine) Idle() bool {
	if len(e.Pending) > 0 || e.Ready.Len() > 0 {
		return false
	}
	for _, t := range e.Running {
		if t != nil {
			return false
		}
	}
	return true
}

// Run ticks until the engine is idle. A perpetually re-releasing periodic
// task set never satisfies the termination condition and this call never
// returns; bounding execution is the caller's responsibility.
func (e *Engine) Run() {
	for !e.Idle() {
		e.Tick()
	}
	logrus.Infof("[tick %07.0f] simulation ended", e.Clock)
}

// Tick is the atomic unit of progress, performed in fixed order: arrivals,
// periodic re-release, thermal/energy update, running-task accounting,
// policy selection, observer notification, clock advance.
func (e *Engine) Tick() {
	e.admitArrivals()
	e.releasePeriodic()

	busy := make([]bool, e.numCores)
	for i, t := range e.Running {
		busy[i] = t != nil
	}
	e.Thermal.Advance(busy)

	e.progressRunning()
	e.apply(e.policy.Select(e.Ready.Items(), e.Running, e.Clock))

	if e.observer != nil {
		e.observer(e.Snapshot())
	}

	e.Clock += 1.0
}

// admitArrivals moves every pending task at or past its arrival time into
// the ready queue.
func (e *Engine) admitArrivals() {
	var still []*Task
	for _, t := range e.Pending {
		if t.ArrivalTime <= e.Clock {
			t.State = StateReady
			e.Ready.Enqueue(t)
			logrus.Debugf("[tick %07.0f] %s released to ready queue", e.Clock, t.Name)
		} else {
			still = append(still, t)
		}
	}
	e.Pending = still
}

// releasePeriodic spawns a fresh instance for every completed periodic task
// whose deadline has been reached. The old instance stays in the completed
// history for metrics; only its re-release bookkeeping is retired.
func (e *Engine) releasePeriodic() {
	for _, t := range e.Completed {
		if t.Period <= 0 || t.respawned || t.NextDeadline > e.Clock {
			continue
		}
		t.respawned = true
		spawn := e.respawn(t)
		e.Pending = append(e.Pending, spawn)
		e.TotalReleases++
		logrus.Infof("[tick %07.0f] re-releasing %s as %s", e.Clock, t.Name, spawn.Name)
	}
}

// respawn mints the next instance of a periodic task with a derived name
// carrying the release counter. The completed predecessor is never reused.
func (e *Engine) respawn(t *Task) *Task {
	spawn := NewTask(fmt.Sprintf("%s_%d", t.Name, e.TotalReleases),
		t.ExecutionTime, t.Period, t.RelativeDeadline, t.BasePriority)
	spawn.PreemptionThreshold = t.PreemptionThreshold
	spawn.IsInterrupt = t.IsInterrupt
	spawn.Criticality = t.Criticality
	spawn.EnergyUsage = t.EnergyUsage
	spawn.MemoryUsage = t.MemoryUsage
	spawn.Dependencies = append([]string(nil), t.Dependencies...)
	spawn.Affinity = append([]int(nil), t.Affinity...)
	spawn.RequiredResources = append([]string(nil), t.RequiredResources...)
	spawn.ArrivalTime = e.Clock
	spawn.RemainingTime = spawn.ExecutionTime
	if e.jitter {
		spawn.Release(e.Clock, e.rng.ForSubsystem(SubsystemJitter))
	}
	spawn.NextDeadline = e.Clock + spawn.RelativeDeadline
	spawn.State = StatePending
	return spawn
}

// progressRunning decrements every running task by one tick of work, retiring
// completed tasks and rotating round-robin tasks whose slice is used up.
func (e *Engine) progressRunning() {
	for i, t := range e.Running {
		if t == nil {
			continue
		}
		t.RemainingTime -= 1.0
		t.LastUpdateTime = e.Clock
		switch {
		case t.RemainingTime <= 0:
			t.RemainingTime = 0
			t.State = StateCompleted
			t.CompletionTime = e.Clock
			e.Trace.Append(trace.Record{Task: t.Name, Start: t.StartTime, End: e.Clock, Core: i})
			e.Completed = append(e.Completed, t)
			e.Running[i] = nil
			logrus.Infof("[tick %07.0f] %s completed on core %d", e.Clock, t.Name, i)
		case e.policy.Name() == "RR" && e.Clock-t.LastDispatchTime > e.quantum:
			e.Trace.Append(trace.Record{Task: t.Name, Start: t.StartTime, End: e.Clock, Core: i, Reason: trace.ReasonTimeSlice})
			t.State = StateReady
			e.Ready.Enqueue(t)
			e.Running[i] = nil
			logrus.Debugf("[tick %07.0f] %s yielded core %d (time slice)", e.Clock, t.Name, i)
		}
	}
}

// apply enacts a policy decision: victims of preemption go to the ready-queue
// tail first, then replacement and fill assignments take their cores.
func (e *Engine) apply(d Decision) {
	for _, p := range d.Preemptions {
		victim := e.Running[p.Core]
		if victim == nil {
			panic(fmt.Sprintf("apply: preemption of idle core %d", p.Core))
		}
		e.Trace.Append(trace.Record{Task: victim.Name, Start: victim.StartTime, End: e.Clock, Core: p.Core, Reason: trace.ReasonPreempted})
		e.Preemptions++
		victim.PreemptionCount++
		victim.State = StateReady
		e.Ready.Enqueue(victim)
		e.Running[p.Core] = nil
		logrus.Debugf("[tick %07.0f] %s preempted on core %d by %s", e.Clock, victim.Name, p.Core, p.Task.Name)
	}

	dispatch := append(append([]CoreAssignment(nil), d.Preemptions...), d.Assignments...)
	for _, a := range dispatch {
		if e.Running[a.Core] != nil {
			panic(fmt.Sprintf("apply: core %d already occupied", a.Core))
		}
		if !e.Ready.Remove(a.Task) {
			panic(fmt.Sprintf("apply: selected task %s not in ready queue", a.Task.Name))
		}
		a.Task.State = StateRunning
		a.Task.StartTime = e.Clock
		a.Task.LastUpdateTime = e.Clock
		a.Task.LastDispatchTime = e.Clock
		e.Running[a.Core] = a.Task
		logrus.Debugf("[tick %07.0f] %s dispatched to core %d", e.Clock, a.Task.Name, a.Core)
	}
}
