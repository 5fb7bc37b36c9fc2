// Derives summary statistics from completed tasks and the execution log.

package sched

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about a simulation for final reporting.
// Migrations, FaultsDetected, and HardMisses are reserved fields that are
// always zero in this core.
type Metrics struct {
	TotalCompletionTime float64 `json:"total_completion_time"`
	AvgTurnaround       float64 `json:"avg_turnaround"`
	AvgWait             float64 `json:"avg_wait"`
	CPUUtil             float64 `json:"cpu_util"`
	EnergyConsumed      float64 `json:"energy_consumed"`
	AvgTemperature      float64 `json:"avg_temperature"`
	Migrations          int     `json:"migrations"`
	Preemptions         int     `json:"preemptions"`
	FaultsDetected      int     `json:"faults_detected"`
	TotalMisses         int     `json:"total_misses"`
	HardMisses          int     `json:"hard_misses"`
	MissRatio           float64 `json:"miss_ratio"`
	TotalReleases       int     `json:"total_releases"`
}

// ComputeMetrics derives metrics from the completed-task history and the
// execution log. Pure with respect to engine state: calling it twice with
// no intervening tick returns identical results.
func (e *Engine) ComputeMetrics() Metrics {
	m := Metrics{
		EnergyConsumed: e.Thermal.TotalEnergy,
		Preemptions:    e.Preemptions,
		TotalReleases:  e.TotalReleases,
	}

	if e.Clock > 0 {
		m.CPUUtil = e.Trace.BusyTime() / (e.Clock * float64(e.numCores)) * 100
	}
	if e.numCores > 0 {
		m.AvgTemperature = stat.Mean(e.Thermal.CoreTemperatures, nil)
	}

	if len(e.Completed) > 0 {
		turnarounds := make([]float64, 0, len(e.Completed))
		waits := make([]float64, 0, len(e.Completed))
		for _, t := range e.Completed {
			turnaround := t.CompletionTime - t.ArrivalTime
			turnarounds = append(turnarounds, turnaround)
			waits = append(waits, turnaround-t.ExecutionTime)
			if t.CompletionTime > m.TotalCompletionTime {
				m.TotalCompletionTime = t.CompletionTime
			}
			// A miss is judged against the deadline value at completion time.
			if t.CompletionTime > t.NextDeadline {
				m.TotalMisses++
			}
		}
		m.AvgTurnaround = stat.Mean(turnarounds, nil)
		m.AvgWait = stat.Mean(waits, nil)
	}

	if e.TotalReleases > 0 {
		m.MissRatio = float64(m.TotalMisses) / float64(e.TotalReleases)
	}
	return m
}

// Print displays aggregated metrics at the end of the simulation.
func (m Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Total Completion Time : %.2f ticks\n", m.TotalCompletionTime)
	fmt.Printf("Average Turnaround    : %.2f ticks\n", m.AvgTurnaround)
	fmt.Printf("Average Wait          : %.2f ticks\n", m.AvgWait)
	fmt.Printf("CPU Utilization       : %.2f%%\n", m.CPUUtil)
	fmt.Printf("Energy Consumed       : %.2f J\n", m.EnergyConsumed)
	fmt.Printf("Average Temperature   : %.2f C\n", m.AvgTemperature)
	fmt.Printf("Preemptions           : %d\n", m.Preemptions)
	fmt.Printf("Deadline Misses       : %d (ratio %.2f)\n", m.TotalMisses, m.MissRatio)
	fmt.Printf("Total Releases        : %d\n", m.TotalReleases)
}
