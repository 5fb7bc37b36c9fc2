// Package trace provides execution-log recording for scheduling analysis.
// This package has no dependencies on sched/ — it stores pure data types.
package trace

// Reason explains why an execution interval ended.
type Reason string

const (
	// ReasonNone marks an interval that ended with task completion.
	ReasonNone Reason = ""
	// ReasonPreempted marks an interval cut short by a higher-urgency task.
	ReasonPreempted Reason = "Preempted"
	// ReasonTimeSlice marks an interval ended by round-robin quantum expiry.
	ReasonTimeSlice Reason = "Time Slice"
)

// Record captures a single contiguous execution interval of a task on a core.
type Record struct {
	Task   string  `json:"task"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Core   int     `json:"core"`
	Reason Reason  `json:"reason,omitempty"`
}

// Duration returns the length of the interval in ticks.
func (r Record) Duration() float64 {
	return r.End - r.Start
}
