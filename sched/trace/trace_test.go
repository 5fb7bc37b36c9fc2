package trace

import "testing"

func TestAppendAndBusyTime(t *testing.T) {
	et := New()
	if et.Len() != 0 {
		t.Fatalf("Len = %d, want 0", et.Len())
	}
	et.Append(Record{Task: "a", Start: 0, End: 3, Core: 0, Reason: ReasonTimeSlice})
	et.Append(Record{Task: "b", Start: 0, End: 2, Core: 1})
	et.Append(Record{Task: "a", Start: 3, End: 5, Core: 0})

	if et.Len() != 3 {
		t.Errorf("Len = %d, want 3", et.Len())
	}
	if got := et.BusyTime(); got != 7 {
		t.Errorf("BusyTime = %v, want 7", got)
	}
}

func TestForTask(t *testing.T) {
	et := New()
	et.Append(Record{Task: "a", Start: 0, End: 1, Core: 0, Reason: ReasonPreempted})
	et.Append(Record{Task: "b", Start: 1, End: 3, Core: 0})
	et.Append(Record{Task: "a", Start: 3, End: 7, Core: 0})

	records := et.ForTask("a")
	if len(records) != 2 {
		t.Fatalf("ForTask(a) returned %d records, want 2", len(records))
	}
	if records[0].Reason != ReasonPreempted {
		t.Errorf("first record reason = %q, want %q", records[0].Reason, ReasonPreempted)
	}
	if records[1].Duration() != 4 {
		t.Errorf("second record duration = %v, want 4", records[1].Duration())
	}
	if et.ForTask("missing") != nil {
		t.Error("ForTask on an unknown name should return nil")
	}
}

func TestRecordsReturnsACopy(t *testing.T) {
	et := New()
	et.Append(Record{Task: "a", Start: 0, End: 1})
	records := et.Records()
	records[0].Task = "mutated"
	if et.Records()[0].Task != "a" {
		t.Error("mutating the returned slice leaked into the trace")
	}
}

func TestByCore(t *testing.T) {
	et := New()
	et.Append(Record{Task: "a", Start: 0, End: 3, Core: 1})
	et.Append(Record{Task: "b", Start: 0, End: 2, Core: 0})
	et.Append(Record{Task: "c", Start: 3, End: 4, Core: 1})

	lanes := et.ByCore()
	if len(lanes) != 2 {
		t.Fatalf("ByCore returned %d lanes, want 2", len(lanes))
	}
	if lanes[0].Core != 0 || lanes[1].Core != 1 {
		t.Errorf("lanes not ordered by core: %v, %v", lanes[0].Core, lanes[1].Core)
	}
	if lanes[0].BusyTime != 2 {
		t.Errorf("core 0 busy time = %v, want 2", lanes[0].BusyTime)
	}
	if lanes[1].BusyTime != 4 {
		t.Errorf("core 1 busy time = %v, want 4", lanes[1].BusyTime)
	}
	if len(lanes[1].Intervals) != 2 {
		t.Errorf("core 1 intervals = %d, want 2", len(lanes[1].Intervals))
	}
}
