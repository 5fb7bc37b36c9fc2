// Package sched provides the core tick-driven simulation engine for
// preemptive multi-core real-time task scheduling.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - task.go: Task lifecycle (pending → ready → running → {ready | completed})
//   - policy.go: The nine scheduling policies and the Decision they produce
//   - engine.go: The tick loop — arrivals, re-release, thermal update,
//     progress accounting, policy application
//
// # Architecture
//
// The engine itself is single-threaded and cooperative: one tick is the
// atomic unit of progress. Concurrent drivers (HTTP observers, interactive
// controls) go through Controller, which serializes ticks, snapshots, and
// submissions behind one boundary and implements pause/resume/single-step.
//
// # Key Interfaces
//
// The extension point is SchedulingPolicy: a pure selection rule mapping
// {ready tasks, per-core occupancy, current time} to assignments and
// preemptions. Adding a policy never touches the tick loop.
//
// Execution intervals are recorded in sched/trace, a dependency-free data
// package consumed by metrics, persistence, and observers.
package sched
