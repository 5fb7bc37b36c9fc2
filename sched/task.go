// Defines the Task struct that models a schedulable unit of work in the simulation.
// Tracks static real-time parameters, runtime countdown state, and deadlines.

package sched

import (
	"fmt"
	"math"
	"math/rand"
)

// MaxPriorityLevels bounds the priority space. Base priorities and
// preemption thresholds are clamped to [0, MaxPriorityLevels-1];
// lower values are more urgent.
const MaxPriorityLevels = 32

// TaskState represents the lifecycle state of a task instance.
type TaskState string

const (
	StatePending   TaskState = "pending"
	StateReady     TaskState = "ready"
	StateRunning   TaskState = "running"
	StateCompleted TaskState = "completed"
)

// Criticality classifies how a deadline miss is treated in reporting.
type Criticality string

const (
	CriticalitySoft Criticality = "SOFT"
	CriticalityHard Criticality = "HARD"
)

// Jitter bounds applied by Release relative to the nominal execution time.
const (
	BestCaseFactor  = 0.8
	WorstCaseFactor = 1.5
)

// Task models a single task instance's lifecycle in the simulation.
// Periodic re-releases mint a brand-new instance with a derived name;
// a completed instance is never mutated back to life.
type Task struct {
	Name string // Unique per release instance

	// Static parameters.
	ExecutionTime       float64     // Nominal execution time in ticks
	Period              float64     // 0 = one-shot
	RelativeDeadline    float64     // Deadline relative to release
	BasePriority        int         // Lower = more urgent
	PreemptionThreshold int         // Stored, not consulted by any policy
	ArrivalTime         float64     // Simulation time at which the task becomes releasable
	Dependencies        []string    // Declared, not enforced (see DESIGN.md)
	Affinity            []int       // Declared, not enforced (see DESIGN.md)
	IsInterrupt         bool        // Interrupt-class tasks sort before all others
	Criticality         Criticality // SOFT or HARD
	EnergyUsage         float64
	MemoryUsage         float64
	RequiredResources   []string // Names of resources the task declares it needs

	// Mutable runtime state.
	State             TaskState
	RemainingTime     float64 // Counts down to completion while running
	Priority          int     // Current effective priority; raised by resource ceilings
	StartTime         float64 // Start of the current execution interval
	LastUpdateTime    float64
	LastDispatchTime  float64 // When the task last took a core (round-robin quantum anchor)
	CompletionTime    float64
	NextDeadline      float64 // Absolute deadline used by EDF/HYBRID and miss accounting
	NextRelease       float64 // Next periodic release point (+Inf for one-shot)
	Laxity            float64
	PreemptionCount   int
	BlockingTime      float64
	AcquiredResources []string
	BackupTriggered   bool

	// Set once this instance has spawned its periodic successor, so the
	// engine does not re-release it twice.
	respawned bool
}

// NewTask creates a task instance with the given real-time parameters.
// Priorities are clamped into the valid range; runtime state starts pending.
func NewTask(name string, executionTime, period, relativeDeadline float64, basePriority int) *Task {
	t := &Task{
		Name:                name,
		ExecutionTime:       executionTime,
		Period:              period,
		RelativeDeadline:    relativeDeadline,
		BasePriority:        clampPriority(basePriority),
		PreemptionThreshold: MaxPriorityLevels - 1,
		State:               StatePending,
		RemainingTime:       executionTime,
	}
	t.Priority = t.BasePriority
	t.NextRelease = math.Inf(1)
	if period > 0 {
		t.NextRelease = t.ArrivalTime + period
	}
	t.NextDeadline = relativeDeadline
	return t
}

func clampPriority(p int) int {
	if p > MaxPriorityLevels-1 {
		return MaxPriorityLevels - 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// WorstCaseExecutionTime returns the upper jitter bound on execution time.
func (t *Task) WorstCaseExecutionTime() float64 {
	return t.ExecutionTime * WorstCaseFactor
}

// BestCaseExecutionTime returns the lower jitter bound on execution time.
func (t *Task) BestCaseExecutionTime() float64 {
	return t.ExecutionTime * BestCaseFactor
}

// Release re-releases the task at the given time, sampling its remaining
// execution time uniformly between the best-case and worst-case bounds.
// The random source is injected so scenario runs stay reproducible.
func (t *Task) Release(now float64, rng *rand.Rand) {
	if rng == nil {
		panic("Release: rng must not be nil")
	}
	t.LastUpdateTime = now
	best, worst := t.BestCaseExecutionTime(), t.WorstCaseExecutionTime()
	t.RemainingTime = best + rng.Float64()*(worst-best)
	t.NextRelease = math.Inf(1)
	if t.Period > 0 {
		t.NextRelease = now + t.Period
	}
	t.NextDeadline = now + t.RelativeDeadline
	t.Laxity = t.RelativeDeadline - t.RemainingTime
	t.BackupTriggered = false
}

// UpdateLaxity recomputes and returns the task's laxity at the given time:
// slack remaining before the deadline once the outstanding work is accounted for.
func (t *Task) UpdateLaxity(now float64) float64 {
	t.Laxity = t.NextDeadline - now - t.RemainingTime
	return t.Laxity
}

// Less reports whether t sorts before other under the canonical priority
// ordering: interrupt-class tasks first, then ascending effective priority.
func (t *Task) Less(other *Task) bool {
	if t.IsInterrupt != other.IsInterrupt {
		return t.IsInterrupt
	}
	return t.Priority < other.Priority
}

// String returns a human-readable representation of the task.
func (t *Task) String() string {
	return fmt.Sprintf("Task(name=%s, exec=%.1f, period=%.1f, deadline=%.1f, priority=%d, arrival=%.1f, state=%s)",
		t.Name, t.ExecutionTime, t.Period, t.RelativeDeadline, t.BasePriority, t.ArrivalTime, t.State)
}
