package trace

// ExecutionTrace collects execution interval records during a simulation run.
// Records are append-only and ordered by the time they were emitted.
type ExecutionTrace struct {
	records []Record
}

// New creates an ExecutionTrace ready for recording.
func New() *ExecutionTrace {
	return &ExecutionTrace{records: make([]Record, 0)}
}

// Append adds an execution interval record.
func (et *ExecutionTrace) Append(record Record) {
	et.records = append(et.records, record)
}

// Len returns the number of recorded intervals.
func (et *ExecutionTrace) Len() int {
	return len(et.records)
}

// Records returns a copy of all recorded intervals, preserving order.
func (et *ExecutionTrace) Records() []Record {
	out := make([]Record, len(et.records))
	copy(out, et.records)
	return out
}

// BusyTime returns the total length of all recorded intervals across cores.
func (et *ExecutionTrace) BusyTime() float64 {
	var total float64
	for _, r := range et.records {
		total += r.Duration()
	}
	return total
}

// ForTask returns the intervals recorded for the named task, in order.
func (et *ExecutionTrace) ForTask(name string) []Record {
	var out []Record
	for _, r := range et.records {
		if r.Task == name {
			out = append(out, r)
		}
	}
	return out
}
