package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestController_RunDrainsOneShotSet(t *testing.T) {
	e := newTestEngine("EDF", 2)
	e.Submit(NewTask("a", 3, 0, 50, 1))
	e.Submit(NewTask("b", 4, 0, 50, 1))
	c := NewController(e)

	ticks := c.Run()

	assert.Equal(t, 5, ticks)
	assert.True(t, c.Idle())
	assert.Equal(t, 2, c.Metrics().TotalReleases)
}

func TestController_MaxTicksBoundsPeriodicSet(t *testing.T) {
	e := newTestEngine("EDF", 1)
	e.Submit(NewTask("A", 3, 4, 4, 1))
	e.Submit(NewTask("B", 3, 4, 4, 1))
	c := NewController(e, WithMaxTicks(150))

	ticks := c.Run()

	assert.Equal(t, 150, ticks)
	assert.False(t, c.Idle(), "overloaded periodic set should still be busy at the budget")
}

func TestController_PauseStepResume(t *testing.T) {
	e := newTestEngine("FCFS", 1)
	e.Submit(NewTask("solo", 3, 0, 20, 1))
	c := NewController(e)
	c.SetPaused(true)

	done := make(chan int, 1)
	go func() { done <- c.Run() }()

	// Paused before the first tick: the clock must not move.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0.0, c.Snapshot().CurrentTime)
	assert.True(t, c.Paused())

	// One step advances exactly one tick, then re-suspends.
	c.SignalStep()
	eventually(t, func() bool { return c.Snapshot().CurrentTime == 1.0 }, "step did not advance the clock")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1.0, c.Snapshot().CurrentTime, "clock moved past the single step while paused")

	c.SetPaused(false)
	ticks := <-done
	assert.Equal(t, 4, ticks)
	assert.True(t, c.Idle())
}

func TestController_SubmitDuringRun(t *testing.T) {
	e := newTestEngine("FCFS", 1)
	e.Submit(NewTask("long", 200, 0, 1000, 1))
	c := NewController(e, WithPace(time.Millisecond), WithMaxTicks(1000))

	done := make(chan int, 1)
	go func() { done <- c.Run() }()

	eventually(t, func() bool { return c.Snapshot().CurrentTime >= 5 }, "run did not start")
	late := NewTask("late", 1, 0, 1000, 1)
	require.True(t, c.Submit(late))

	<-done
	assert.True(t, c.Idle())
	m := c.Metrics()
	assert.Equal(t, 2, m.TotalReleases)
	assert.NotEmpty(t, e.Trace.ForTask("late"), "late submission never executed")
}

func TestController_ConcurrentReadersDoNotRace(t *testing.T) {
	e := newTestEngine("RR", 2)
	e.Submit(NewTask("a", 50, 0, 500, 1))
	e.Submit(NewTask("b", 50, 0, 500, 2))
	c := NewController(e, WithMaxTicks(500))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Run()
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.Snapshot()
				_ = c.Metrics()
				_ = c.ExecutionLog()
			}
		}()
	}
	wg.Wait()
	assert.True(t, c.Idle())
}

func TestController_SwitchAlgorithmMidRun(t *testing.T) {
	e := newTestEngine("FCFS", 1)
	c := NewController(e)
	c.SwitchAlgorithm("LLF")
	assert.Equal(t, "LLF", c.Snapshot().Algorithm)
}
