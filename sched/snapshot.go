// Read-only snapshot views handed to observers. Everything here is copied
// out of the engine so consumers never see partial-tick state.

package sched

// TaskStatus is a copied, observer-safe view of one task.
type TaskStatus struct {
	Name            string    `json:"name"`
	State           TaskState `json:"state"`
	Priority        int       `json:"priority"`
	ArrivalTime     float64   `json:"arrival_time"`
	RemainingTime   float64   `json:"remaining_time"`
	NextDeadline    float64   `json:"next_deadline"`
	Laxity          float64   `json:"laxity"`
	PreemptionCount int       `json:"preemption_count"`
	BlockingTime    float64   `json:"blocking_time"`
	Criticality     Criticality `json:"criticality,omitempty"`
}

// CoreStatus is a copied view of one core slot.
type CoreStatus struct {
	Core         int         `json:"core"`
	Task         *TaskStatus `json:"task,omitempty"`
	TemperatureC float64     `json:"temperature_c"`
	FrequencyGHz float64     `json:"frequency_ghz"`
}

// Snapshot is a consistent point-in-time view of the engine.
type Snapshot struct {
	CurrentTime float64      `json:"current_time"`
	Algorithm   string       `json:"algorithm"`
	Ready       []TaskStatus `json:"ready"`
	Pending     []TaskStatus `json:"pending"`
	Cores       []CoreStatus `json:"cores"`
}

func statusOf(t *Task, now float64) TaskStatus {
	return TaskStatus{
		Name:            t.Name,
		State:           t.State,
		Priority:        t.Priority,
		ArrivalTime:     t.ArrivalTime,
		RemainingTime:   t.RemainingTime,
		NextDeadline:    t.NextDeadline,
		Laxity:          (t.NextDeadline - now) - t.RemainingTime,
		PreemptionCount: t.PreemptionCount,
		BlockingTime:    t.BlockingTime,
		Criticality:     t.Criticality,
	}
}

// Snapshot builds a copied view of queues, clock, and per-core state.
// Callers driving the engine concurrently must hold the same boundary the
// tick runs under (see Controller).
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		CurrentTime: e.Clock,
		Algorithm:   e.policy.Name(),
		Ready:       make([]TaskStatus, 0, e.Ready.Len()),
		Pending:     make([]TaskStatus, 0, len(e.Pending)),
		Cores:       make([]CoreStatus, e.numCores),
	}
	for _, t := range e.Ready.Items() {
		snap.Ready = append(snap.Ready, statusOf(t, e.Clock))
	}
	for _, t := range e.Pending {
		snap.Pending = append(snap.Pending, statusOf(t, e.Clock))
	}
	for i := range snap.Cores {
		snap.Cores[i] = CoreStatus{
			Core:         i,
			TemperatureC: e.Thermal.CoreTemperatures[i],
			FrequencyGHz: e.Thermal.CoreFrequencies[i],
		}
		if t := e.Running[i]; t != nil {
			status := statusOf(t, e.Clock)
			snap.Cores[i].Task = &status
		}
	}
	return snap
}
