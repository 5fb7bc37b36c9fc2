// Implements the ReadyQueue, which holds released tasks awaiting a core.
// Tasks are enqueued on release and on preemption (at the tail).

package sched

import (
	"fmt"
	"strings"
)

// ReadyQueue is a FIFO queue of tasks eligible for core assignment.
// Queue order is the arrival order policies like FCFS and RR rely on;
// priority-based policies inspect the contents without mutating the order.
type ReadyQueue struct {
	queue []*Task
}

// Enqueue adds a task to the back of the ready queue.
func (rq *ReadyQueue) Enqueue(t *Task) {
	rq.queue = append(rq.queue, t)
}

// Len returns the number of tasks in the queue.
func (rq *ReadyQueue) Len() int {
	return len(rq.queue)
}

// Peek returns the task at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (rq *ReadyQueue) Peek() *Task {
	if len(rq.queue) == 0 {
		return nil
	}
	return rq.queue[0]
}

// PopFront removes and returns the task at the front of the queue.
// Returns nil if the queue is empty.
func (rq *ReadyQueue) PopFront() *Task {
	if len(rq.queue) == 0 {
		return nil
	}
	head := rq.queue[0]
	rq.queue = rq.queue[1:]
	return head
}

// Remove deletes the given task from the queue, preserving the order of the
// rest. Returns false if the task is not present.
func (rq *ReadyQueue) Remove(t *Task) bool {
	for i, queued := range rq.queue {
		if queued == t {
			rq.queue = append(rq.queue[:i], rq.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage -- callers within the
// sched package may iterate over it but MUST NOT append to or reslice it.
func (rq *ReadyQueue) Items() []*Task {
	return rq.queue
}

// Snapshot returns a defensive copy of the queue contents.
func (rq *ReadyQueue) Snapshot() []*Task {
	out := make([]*Task, len(rq.queue))
	copy(out, rq.queue)
	return out
}

func (rq *ReadyQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, t := range rq.queue {
		sb.WriteString(fmt.Sprint(t.Name))
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
