package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rtsched/rtsched/sched"
)

// parseTaskSpec parses an inline task definition of the form
// "name exec_time period deadline priority [arrival]".
func parseTaskSpec(spec string) (*sched.Task, error) {
	parts := strings.Fields(spec)
	if len(parts) < 5 {
		return nil, fmt.Errorf("invalid task spec %q: want \"name exec_time period deadline priority [arrival]\"", spec)
	}

	name := parts[0]
	executionTime, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("task %q: invalid exec_time: %w", name, err)
	}
	period, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return nil, fmt.Errorf("task %q: invalid period: %w", name, err)
	}
	deadline, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return nil, fmt.Errorf("task %q: invalid deadline: %w", name, err)
	}
	priority, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil, fmt.Errorf("task %q: invalid priority: %w", name, err)
	}
	arrival := 0.0
	if len(parts) > 5 {
		if arrival, err = strconv.ParseFloat(parts[5], 64); err != nil {
			return nil, fmt.Errorf("task %q: invalid arrival: %w", name, err)
		}
	}

	// Boundary validation: the engine assumes well-formed input.
	if executionTime <= 0 {
		return nil, fmt.Errorf("task %q: exec_time must be positive", name)
	}
	if deadline <= 0 {
		return nil, fmt.Errorf("task %q: deadline must be positive", name)
	}
	if arrival < 0 {
		return nil, fmt.Errorf("task %q: arrival must be non-negative", name)
	}
	if period < 0 {
		return nil, fmt.Errorf("task %q: period must be non-negative", name)
	}

	task := sched.NewTask(name, executionTime, period, deadline, priority)
	task.ArrivalTime = arrival
	return task, nil
}
