// Implements mutually-exclusive resources arbitrated by a priority-ceiling
// protocol: whoever holds a resource runs at least as urgently as the
// resource's access ceiling, bounding priority inversion.

package sched

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Resource is a mutually-exclusive resource with a priority ceiling.
// HeldBy is nil or exactly one task; tasks blocked on the resource wait
// in FIFO order. The engine owns the waiting list, never the tasks.
type Resource struct {
	Name          string
	IsPreemptible bool
	AccessCeiling int // Priority value inherited by a holder (lower = more urgent)

	HeldBy  *Task
	Waiting []*Task
}

// NewResource creates a free resource with the given ceiling.
func NewResource(name string, ceiling int, preemptible bool) *Resource {
	return &Resource{
		Name:          name,
		IsPreemptible: preemptible,
		AccessCeiling: clampPriority(ceiling),
	}
}

// Acquire attempts to take the resource for t. On success the task becomes
// the holder and its effective priority is raised to the resource ceiling
// if the ceiling is more urgent. On failure t joins the FIFO waiting list
// and the caller must retry on a later tick; nothing blocks.
func (r *Resource) Acquire(t *Task) bool {
	if r.HeldBy == nil {
		r.HeldBy = t
		if r.AccessCeiling < t.Priority {
			t.Priority = r.AccessCeiling
		}
		t.AcquiredResources = append(t.AcquiredResources, r.Name)
		logrus.Debugf("resource %s acquired by %s (effective priority %d)", r.Name, t.Name, t.Priority)
		return true
	}
	r.Waiting = append(r.Waiting, t)
	logrus.Debugf("resource %s held by %s; %s queued (%d waiting)", r.Name, r.HeldBy.Name, t.Name, len(r.Waiting))
	return false
}

// Release gives up the resource held by t, restores t's base priority, and
// wakes the FIFO head of the waiting list with a single bounded acquire
// attempt. The resource is guaranteed free at that point, so the attempt
// cannot cascade. Calling Release from a non-holder is a programming error.
func (r *Resource) Release(t *Task) {
	if r.HeldBy != t {
		panic(fmt.Sprintf("Release: %s does not hold resource %s", t.Name, r.Name))
	}
	r.HeldBy = nil
	t.Priority = t.BasePriority
	t.AcquiredResources = removeString(t.AcquiredResources, r.Name)
	logrus.Debugf("resource %s released by %s", r.Name, t.Name)

	if len(r.Waiting) == 0 {
		return
	}
	// Wake exactly the FIFO head. The original protocol wakes in FIFO order
	// rather than by waiter priority; preserved here.
	next := r.Waiting[0]
	r.Waiting = r.Waiting[1:]
	if ok := r.Acquire(next); !ok {
		panic(fmt.Sprintf("Release: freed resource %s rejected waiter %s", r.Name, next.Name))
	}
}

// HoldsAll reports whether t currently holds every resource it declares.
func HoldsAll(t *Task, resources map[string]*Resource) bool {
	for _, name := range t.RequiredResources {
		r, ok := resources[name]
		if !ok || r.HeldBy != t {
			return false
		}
	}
	return true
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
