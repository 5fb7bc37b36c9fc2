package cmd

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsched/rtsched/internal/server"
	"github.com/rtsched/rtsched/internal/store"
	"github.com/rtsched/rtsched/sched"
)

var (
	// CLI flags for the simulation engine
	algorithm       string        // Scheduling policy name
	numCores        int           // Number of simulated cores
	contextOverhead float64       // Base context switch overhead (stored, reported)
	faultTolerance  bool          // Reserved flag; no behavioral effect
	quantum         float64       // Round-robin time slice in ticks
	seed            int64         // Seed for execution-time jitter
	jitter          bool          // Sample jittered execution times on re-release
	maxTicks        int           // Tick budget bounding the run
	logLevel        string        // Log verbosity level
	pace            time.Duration // Wall-clock delay between ticks

	// CLI flags for inputs and outputs
	scenarioPath string   // YAML scenario file
	taskSpecs    []string // Inline task specs: "name exec period deadline priority [arrival]"
	httpAddr     string   // Observer/control API listen address (empty = off)
	dbPath       string   // SQLite results database (empty = off)
	startPaused  bool     // Begin suspended, waiting for resume/step
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "rtsched",
	Short: "Tick-driven simulator for preemptive multi-core real-time scheduling",
}

// runCmd executes a simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		engine, err := buildEngine()
		if err != nil {
			logrus.Fatalf("configuring simulation: %v", err)
		}

		ctrl := sched.NewController(engine,
			sched.WithMaxTicks(maxTicks),
			sched.WithPace(pace),
		)
		if startPaused {
			ctrl.SetPaused(true)
		}

		if httpAddr != "" {
			srv := server.New(ctrl)
			go func() {
				logrus.Infof("observer API listening on %s", httpAddr)
				if err := http.ListenAndServe(httpAddr, srv.Handler()); err != nil {
					logrus.Fatalf("observer API: %v", err)
				}
			}()
		}

		logrus.Infof("Starting simulation: algorithm=%s cores=%d maxTicks=%d",
			engine.Policy().Name(), engine.NumCores(), maxTicks)
		ticks := ctrl.Run()
		logrus.Infof("Simulation ended after %d ticks", ticks)

		printLog(ctrl)
		metrics := ctrl.Metrics()
		metrics.Print()

		if dbPath != "" {
			if err := saveRun(ctrl, engine, metrics); err != nil {
				logrus.Fatalf("saving run: %v", err)
			}
		}
	},
}

// buildEngine assembles the engine from a scenario file, inline task specs,
// or both. Flag values configure the engine when no scenario file is given;
// a scenario file wins for the settings it carries.
func buildEngine() (*sched.Engine, error) {
	if scenarioPath != "" {
		scenario, err := sched.LoadScenario(scenarioPath)
		if err != nil {
			return nil, err
		}
		engine, err := scenario.Build()
		if err != nil {
			return nil, err
		}
		return engine, addInlineTasks(engine)
	}

	scenario := &sched.Scenario{
		Algorithm:           algorithm,
		Cores:               numCores,
		BaseContextOverhead: contextOverhead,
		FaultTolerance:      faultTolerance,
		Quantum:             quantum,
		Seed:                seed,
		ExecutionJitter:     jitter,
	}
	engine, err := scenario.Build()
	if err != nil {
		return nil, err
	}
	return engine, addInlineTasks(engine)
}

func addInlineTasks(engine *sched.Engine) error {
	for _, spec := range taskSpecs {
		task, err := parseTaskSpec(spec)
		if err != nil {
			return err
		}
		engine.Submit(task)
		logrus.Infof("Added task: %s", task)
	}
	return nil
}

func printLog(ctrl *sched.Controller) {
	records := ctrl.ExecutionLog()
	if len(records) == 0 {
		return
	}
	logrus.Info("Execution log:")
	for _, r := range records {
		reason := ""
		if r.Reason != "" {
			reason = " (" + string(r.Reason) + ")"
		}
		logrus.Infof("  %s on core %d: %.1f to %.1f%s", r.Task, r.Core, r.Start, r.End, reason)
	}
}

func saveRun(ctrl *sched.Controller, engine *sched.Engine, metrics sched.Metrics) error {
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	snap := ctrl.Snapshot()
	run := store.NewRunRecord(snap.Algorithm, engine.NumCores(), snap.CurrentTime, metrics, ctrl.ExecutionLog())
	if err := st.SaveRun(ctx, run); err != nil {
		return err
	}
	logrus.Infof("Saved run %s to %s", run.ID, dbPath)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&algorithm, "algorithm", "EDF", "Scheduling policy (FCFS, SJF, SRTF, EDF, RR, PRIORITY, RMS, LLF, HYBRID)")
	runCmd.Flags().IntVar(&numCores, "cores", 2, "Number of simulated CPU cores")
	runCmd.Flags().Float64Var(&contextOverhead, "context-overhead", 0.1, "Base context switch overhead")
	runCmd.Flags().BoolVar(&faultTolerance, "fault-tolerance", false, "Enable the reserved fault tolerance extension point")
	runCmd.Flags().Float64Var(&quantum, "quantum", sched.DefaultQuantum, "Round-robin time slice in ticks")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for execution-time jitter")
	runCmd.Flags().BoolVar(&jitter, "jitter", false, "Sample jittered execution times on periodic re-release")
	runCmd.Flags().IntVar(&maxTicks, "max-ticks", 100000, "Tick budget bounding the run (0 = unbounded)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().DurationVar(&pace, "pace", 0, "Wall-clock delay between ticks (simulated granularity stays 1.0)")

	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file")
	runCmd.Flags().StringArrayVar(&taskSpecs, "task", nil, "Task spec: \"name exec_time period deadline priority [arrival]\" (repeatable)")
	runCmd.Flags().StringVar(&httpAddr, "http", "", "Observer/control API listen address (empty = disabled)")
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite results database path (empty = no persistence)")
	runCmd.Flags().BoolVar(&startPaused, "paused", false, "Start suspended; resume or step via the control API")

	rootCmd.AddCommand(runCmd)
}
