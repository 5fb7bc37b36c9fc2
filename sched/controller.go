// Controller wraps an Engine for concurrent drivers: ticks stay atomic,
// observers read consistent snapshots, submissions are queued without being
// dropped, and pause/resume/single-step act only at tick boundaries.

package sched

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rtsched/rtsched/sched/trace"
)

// Controller owns the driving loop around a single Engine. Exactly one
// goroutine runs Run; any number of goroutines may submit tasks, flip the
// pause flag, or read snapshots and metrics.
type Controller struct {
	mu     sync.Mutex // guards engine state; held for exactly one tick at a time
	engine *Engine

	gateMu      sync.Mutex
	gateCond    *sync.Cond
	paused      bool
	stepPending bool

	pace     time.Duration // wall-clock delay between ticks; simulated granularity stays 1.0
	maxTicks int           // tick budget; 0 = unbounded
}

// Option configures optional Controller behavior.
type Option func(*Controller)

// WithPace inserts a wall-clock delay between ticks.
func WithPace(d time.Duration) Option {
	return func(c *Controller) { c.pace = d }
}

// WithMaxTicks bounds Run to at most n ticks. This is the caller-side guard
// that keeps perpetually re-releasing periodic task sets from spinning forever.
func WithMaxTicks(n int) Option {
	return func(c *Controller) { c.maxTicks = n }
}

// NewController wraps the engine for concurrent driving.
func NewController(e *Engine, opts ...Option) *Controller {
	c := &Controller{engine: e}
	c.gateCond = sync.NewCond(&c.gateMu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run ticks the engine until it is idle or the tick budget is exhausted,
// honoring pause/resume/step at tick boundaries. Returns the number of
// ticks executed.
func (c *Controller) Run() int {
	ticks := 0
	for {
		c.gate()

		c.mu.Lock()
		if c.engine.Idle() {
			c.mu.Unlock()
			return ticks
		}
		c.engine.Tick()
		c.mu.Unlock()

		ticks++
		if c.maxTicks > 0 && ticks >= c.maxTicks {
			logrus.Warnf("tick budget of %d exhausted; stopping run", c.maxTicks)
			return ticks
		}
		if c.pace > 0 {
			time.Sleep(c.pace)
		}
	}
}

// gate suspends before the next tick while paused, until either a resume or
// a one-shot step signal. The pause flag is never checked mid-tick.
func (c *Controller) gate() {
	c.gateMu.Lock()
	defer c.gateMu.Unlock()
	for c.paused {
		if c.stepPending {
			c.stepPending = false
			return
		}
		c.gateCond.Wait()
	}
}

// SetPaused sets the cooperative pause flag. Pausing takes effect at the
// next tick boundary; resuming wakes a suspended run loop.
func (c *Controller) SetPaused(paused bool) {
	c.gateMu.Lock()
	c.paused = paused
	c.gateMu.Unlock()
	c.gateCond.Broadcast()
}

// SignalStep advances exactly one tick while paused, then re-suspends.
func (c *Controller) SignalStep() {
	c.gateMu.Lock()
	c.stepPending = true
	c.gateMu.Unlock()
	c.gateCond.Broadcast()
}

// Paused reports the current state of the pause flag.
func (c *Controller) Paused() bool {
	c.gateMu.Lock()
	defer c.gateMu.Unlock()
	return c.paused
}

// Submit queues a task for the engine. Safe to call while a run is active;
// the task is never dropped, duplicated, or observed mid-mutation.
func (c *Controller) Submit(t *Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Submit(t)
}

// SwitchAlgorithm replaces the active policy; takes effect next tick.
func (c *Controller) SwitchAlgorithm(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.SwitchAlgorithm(name)
}

// Snapshot returns a consistent copied view of the engine.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Snapshot()
}

// Metrics computes metrics under the tick boundary.
func (c *Controller) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.ComputeMetrics()
}

// ExecutionLog returns a copy of the execution log so far.
func (c *Controller) ExecutionLog() []trace.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Trace.Records()
}

// Idle reports whether the engine has reached its termination condition.
func (c *Controller) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Idle()
}
