package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/haulage-sim/haulage-sim/sim"
	"github.com/haulage-sim/haulage-sim/sim/policy"
	"github.com/haulage-sim/haulage-sim/sim/trace"
)

var (
	// CLI flags for the simulation run
	seed         int64   // Seed for duration sampling
	horizon      float64 // Total simulation time
	logLevel     string  // Log verbosity level
	configPath   string  // Mine layout YAML file
	distribution string  // Duration distribution (normal, uniform, deterministic)

	// CLI flags for policy selection
	dispatcher  string // Dispatch policy name
	lightPolicy string // Light policy name
	greenTime   float64 // Green duration for the timed light policy
	endOfShift  float64 // Park trucks dispatched after this time (0 = never)

	// CLI flags for decision tracing
	traceLevel  string // Trace verbosity (none, decisions)
	traceOutput string // File to write the JSON trace to
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "haulage-sim",
	Short: "Discrete-event simulator for open-pit mine truck haulage",
}

// runCmd executes one shift simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a haulage shift simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if configPath == "" {
			logrus.Fatalf("Mine layout not provided. Exiting simulation.")
		}
		file, err := sim.LoadMineFile(configPath)
		if err != nil {
			logrus.Fatalf("Unable to read mine layout: %v", err)
		}
		layout, err := file.Build()
		if err != nil {
			logrus.Fatalf("Invalid mine layout: %v", err)
		}

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		st := trace.NewSimulationTrace(trace.TraceLevel(traceLevel))

		d, err := policy.NewDispatcher(dispatcher, layout, nil)
		if err != nil {
			logrus.Fatalf("Invalid dispatcher: %v", err)
		}
		l, err := policy.NewLightPolicy(lightPolicy, greenTime)
		if err != nil {
			logrus.Fatalf("Invalid light policy: %v", err)
		}
		con := policy.NewController(layout, d, l).WithTrace(st).WithEndOfShift(endOfShift)

		rng := sim.NewPartitionedRNG(sim.SimulationKey(seed))
		tgen, err := newDistribution(distribution, rng)
		if err != nil {
			logrus.Fatalf("Invalid distribution: %v", err)
		}

		logrus.Infof("Starting simulation with %d trucks, %d shovels, %d crusher locations, horizon=%.1f",
			layout.NumTrucks, len(layout.Shovels), len(layout.Crushers), horizon)

		startTime := time.Now()

		s := sim.NewSimulator(layout, tgen)
		s.LoadController(con)
		s.Initialise()
		s.Run(horizon)

		s.Metrics().Print(s.Empties(), horizon)
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))

		if traceOutput != "" {
			if err := writeTrace(st, traceOutput); err != nil {
				logrus.Fatalf("Unable to write trace: %v", err)
			}
			summary := trace.Summarize(st)
			logrus.Infof("Trace written to %s (%d dispatches over %d routes)",
				traceOutput, summary.TotalDispatches, summary.UniqueRoutes)
		}
	},
}

// writeTrace serializes the collected trace as JSON.
func writeTrace(st *trace.SimulationTrace, path string) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for duration sampling")
	runCmd.Flags().Float64Var(&horizon, "horizon", 28800, "Total simulation horizon")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Mine layout YAML file")
	runCmd.Flags().StringVar(&distribution, "distribution", "normal", "Duration distribution (normal, uniform, deterministic)")

	runCmd.Flags().StringVar(&dispatcher, "dispatcher", "round-robin", "Dispatch policy (round-robin, fixed-route)")
	runCmd.Flags().StringVar(&lightPolicy, "light-policy", "greedy", "Light policy (greedy, timed)")
	runCmd.Flags().Float64Var(&greenTime, "green-time", 60, "Green duration for the timed light policy")
	runCmd.Flags().Float64Var(&endOfShift, "end-of-shift", 0, "Park trucks dispatched after this time (0 = never)")

	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, decisions)")
	runCmd.Flags().StringVar(&traceOutput, "trace-output", "", "File to write the JSON decision trace to")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
