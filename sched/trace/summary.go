package trace

import "sort"

// CoreSummary aggregates the intervals executed on a single core.
type CoreSummary struct {
	Core      int
	Intervals []Record
	BusyTime  float64
}

// ByCore groups the trace into per-core summaries, ordered by core ID.
// This is the shape a Gantt-style consumer wants: one lane per core.
func (et *ExecutionTrace) ByCore() []CoreSummary {
	lanes := make(map[int]*CoreSummary)
	for _, r := range et.records {
		lane, ok := lanes[r.Core]
		if !ok {
			lane = &CoreSummary{Core: r.Core}
			lanes[r.Core] = lane
		}
		lane.Intervals = append(lane.Intervals, r)
		lane.BusyTime += r.Duration()
	}

	out := make([]CoreSummary, 0, len(lanes))
	for _, lane := range lanes {
		out = append(out, *lane)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Core < out[j].Core })
	return out
}
