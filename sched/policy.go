// The nine scheduling policies. Each is a stateless selection rule mapping
// {ready tasks, per-core occupancy, current time} to an assignment/preemption
// decision; the engine applies the decision so new policies never touch the
// tick loop.

package sched

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CoreAssignment pairs a task with the core it should run on.
type CoreAssignment struct {
	Core int
	Task *Task
}

// Decision is the outcome of one policy invocation. Preemptions replace the
// current occupant of a core (the occupant goes to the ready-queue tail);
// Assignments fill idle cores. A task appears at most once per decision.
type Decision struct {
	Preemptions []CoreAssignment
	Assignments []CoreAssignment
}

// SchedulingPolicy selects which ready tasks take cores this tick.
// Implementations MUST NOT mutate the ready or running slices — only the
// returned Decision is applied, by the engine.
type SchedulingPolicy interface {
	Name() string
	Select(ready []*Task, running []*Task, now float64) Decision
}

// fillIdle implements the common non-preemptive shape: order the ready view
// by less (nil keeps queue order) and assign at most one task per idle core,
// in sorted order, stopping when either runs out.
func fillIdle(ready, running []*Task, less func(a, b *Task) bool) Decision {
	if len(ready) == 0 {
		return Decision{}
	}
	candidates := make([]*Task, len(ready))
	copy(candidates, ready)
	if less != nil {
		sort.SliceStable(candidates, func(i, j int) bool { return less(candidates[i], candidates[j]) })
	}

	var d Decision
	next := 0
	for core, occupant := range running {
		if occupant != nil {
			continue
		}
		if next >= len(candidates) {
			break
		}
		d.Assignments = append(d.Assignments, CoreAssignment{Core: core, Task: candidates[next]})
		next++
	}
	return d
}

// FCFSPolicy assigns ready tasks to idle cores in queue arrival order.
type FCFSPolicy struct{}

func (FCFSPolicy) Name() string { return "FCFS" }

func (FCFSPolicy) Select(ready, running []*Task, _ float64) Decision {
	return fillIdle(ready, running, nil)
}

// SJFPolicy assigns idle cores by ascending nominal execution time.
// Warning: SJF can starve long tasks under sustained load.
type SJFPolicy struct{}

func (SJFPolicy) Name() string { return "SJF" }

func (SJFPolicy) Select(ready, running []*Task, _ float64) Decision {
	return fillIdle(ready, running, func(a, b *Task) bool {
		return a.ExecutionTime < b.ExecutionTime
	})
}

// SRTFPolicy is the preemptive variant of SJF: a ready task whose remaining
// time is strictly less than a running task's remaining time takes its core.
type SRTFPolicy struct{}

func (SRTFPolicy) Name() string { return "SRTF" }

func (SRTFPolicy) Select(ready, running []*Task, _ float64) Decision {
	avail := make([]*Task, len(ready))
	copy(avail, ready)

	var d Decision
	for core, occupant := range running {
		if len(avail) == 0 {
			break
		}
		threshold := math.Inf(1)
		if occupant != nil {
			threshold = occupant.RemainingTime
		}
		bestIdx := -1
		for i, t := range avail {
			if t.RemainingTime < threshold {
				threshold = t.RemainingTime
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			continue
		}
		best := avail[bestIdx]
		avail = append(avail[:bestIdx], avail[bestIdx+1:]...)
		if occupant == nil {
			d.Assignments = append(d.Assignments, CoreAssignment{Core: core, Task: best})
		} else {
			d.Preemptions = append(d.Preemptions, CoreAssignment{Core: core, Task: best})
			// A preempted task re-enters the ready pool and may displace a
			// still-longer task on a later core in the same pass.
			avail = append(avail, occupant)
		}
	}
	return d
}

// EDFPolicy runs the task with the earliest absolute deadline, preempting a
// running task whenever a ready deadline is strictly earlier than its own.
type EDFPolicy struct{}

func (EDFPolicy) Name() string { return "EDF" }

func (EDFPolicy) Select(ready, running []*Task, _ float64) Decision {
	avail := make([]*Task, len(ready))
	copy(avail, ready)
	byDeadline := func(i, j int) bool { return avail[i].NextDeadline < avail[j].NextDeadline }
	sort.SliceStable(avail, byDeadline)

	var d Decision
	for core, occupant := range running {
		if len(avail) == 0 {
			break
		}
		head := avail[0]
		switch {
		case occupant == nil:
			d.Assignments = append(d.Assignments, CoreAssignment{Core: core, Task: head})
			avail = avail[1:]
		case head.NextDeadline < occupant.NextDeadline:
			d.Preemptions = append(d.Preemptions, CoreAssignment{Core: core, Task: head})
			avail = append(avail[1:], occupant)
			sort.SliceStable(avail, byDeadline)
		}
	}
	return d
}

// RRPolicy fills idle cores in queue arrival order. The quantum-expiry
// preemption that makes round robin rotate lives in the engine's tick
// housekeeping, not here.
type RRPolicy struct{}

func (RRPolicy) Name() string { return "RR" }

func (RRPolicy) Select(ready, running []*Task, _ float64) Decision {
	return fillIdle(ready, running, nil)
}

// PriorityPolicy fills idle cores by the canonical priority ordering:
// interrupt-class tasks first, then ascending base priority.
type PriorityPolicy struct{}

func (PriorityPolicy) Name() string { return "PRIORITY" }

func (PriorityPolicy) Select(ready, running []*Task, _ float64) Decision {
	return fillIdle(ready, running, func(a, b *Task) bool {
		if a.IsInterrupt != b.IsInterrupt {
			return a.IsInterrupt
		}
		return a.BasePriority < b.BasePriority
	})
}

// RMSPolicy implements rate-monotonic scheduling: shorter period wins,
// aperiodic tasks (period 0) sort last.
type RMSPolicy struct{}

func (RMSPolicy) Name() string { return "RMS" }

func (RMSPolicy) Select(ready, running []*Task, _ float64) Decision {
	return fillIdle(ready, running, func(a, b *Task) bool {
		return rmsKey(a) < rmsKey(b)
	})
}

func rmsKey(t *Task) float64 {
	if t.Period > 0 {
		return t.Period
	}
	return math.Inf(1)
}

// LLFPolicy implements least-laxity-first: the task with the smallest slack
// (deadline minus now minus remaining work) runs first.
type LLFPolicy struct{}

func (LLFPolicy) Name() string { return "LLF" }

func (LLFPolicy) Select(ready, running []*Task, now float64) Decision {
	return fillIdle(ready, running, func(a, b *Task) bool {
		return laxityAt(a, now) < laxityAt(b, now)
	})
}

func laxityAt(t *Task, now float64) float64 {
	return (t.NextDeadline - now) - t.RemainingTime
}

// HybridPolicy orders by (deadline, base priority) lexicographically,
// blending EDF urgency with static priority as the tie-break.
type HybridPolicy struct{}

func (HybridPolicy) Name() string { return "HYBRID" }

func (HybridPolicy) Select(ready, running []*Task, _ float64) Decision {
	return fillIdle(ready, running, func(a, b *Task) bool {
		if a.NextDeadline != b.NextDeadline {
			return a.NextDeadline < b.NextDeadline
		}
		return a.BasePriority < b.BasePriority
	})
}

// ValidPolicies is the set of recognized scheduling policy names.
// Shared by scenario validation and NewPolicy to avoid duplication.
var ValidPolicies = map[string]bool{
	"":         true, // empty defaults to EDF
	"FCFS":     true,
	"SJF":      true,
	"SRTF":     true,
	"EDF":      true,
	"RR":       true,
	"PRIORITY": true,
	"RMS":      true,
	"LLF":      true,
	"HYBRID":   true,
}

// IsValidPolicy returns true if name (case-insensitive) is a recognized
// scheduling policy.
func IsValidPolicy(name string) bool {
	return ValidPolicies[strings.ToUpper(name)]
}

// NewPolicy creates a SchedulingPolicy by name (case-insensitive).
// Empty string defaults to EDF (for CLI flag default compatibility).
// Panics on unrecognized names; validate at the boundary first.
func NewPolicy(name string) SchedulingPolicy {
	if !IsValidPolicy(name) {
		panic(fmt.Sprintf("unknown scheduling policy %q", name))
	}
	switch strings.ToUpper(name) {
	case "", "EDF":
		return EDFPolicy{}
	case "FCFS":
		return FCFSPolicy{}
	case "SJF":
		return SJFPolicy{}
	case "SRTF":
		return SRTFPolicy{}
	case "RR":
		return RRPolicy{}
	case "PRIORITY":
		return PriorityPolicy{}
	case "RMS":
		return RMSPolicy{}
	case "LLF":
		return LLFPolicy{}
	case "HYBRID":
		return HybridPolicy{}
	default:
		panic(fmt.Sprintf("unhandled scheduling policy %q", name))
	}
}
