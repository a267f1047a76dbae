package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drivethru-sim/drivethru-sim/sim/restaurant"
)

var (
	// CLI flags for the driver
	cfgFile       string // YAML file with restaurant configuration keys
	scenarioName  string // preset used as the base configuration
	logLevel      string // Log verbosity level
	iterations    int    // Number of independent runs
	exportParquet string // Per-customer parquet output path
	exportCSV     string // Per-customer CSV output path
	metricsFile   string // Prometheus textfile output path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "drivethru-sim",
	Short: "Discrete-event simulator for drive-thru restaurants",
}

// runCmd executes the simulation using the resolved configuration
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the drive-thru simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		scenario, err := LookupScenario(BuiltinScenarios(), scenarioName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		v := viper.New()
		if err := bindConfigFlags(v, cmd.Flags()); err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg, err := LoadConfig(v, cfgFile, scenario.Config)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if cfg.Trace && !logrus.IsLevelEnabled(logrus.DebugLevel) {
			// the event trace is written at debug level
			logrus.SetLevel(logrus.DebugLevel)
		}

		logrus.Infof("Starting %d run(s) of scenario %q: stations=%d/%d/%d rate=%v customers=%d horizon=%v seed=%d",
			iterations, scenarioName, cfg.OrderStations, cfg.PayStations, cfg.PickupStations,
			cfg.ArrivalRate, cfg.Customers, cfg.Horizon, cfg.Seed)

		startTime := time.Now()
		_, err = RunIterations(cfg, RunOptions{
			Iterations:    iterations,
			ExportParquet: exportParquet,
			ExportCSV:     exportCSV,
			MetricsFile:   metricsFile,
			Progress:      os.Stderr,
		}, os.Stdout)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// scenariosCmd lists the built-in presets
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the built-in scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		scenarios := BuiltinScenarios()
		for _, name := range ScenarioNames(scenarios) {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, scenarios[name].Description)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&cfgFile, "config", "", "YAML file with configuration keys (e.g. arrival_rate: 4)")
	runCmd.Flags().StringVar(&scenarioName, "scenario", DefaultScenario,
		"Preset used as the base configuration ("+strings.Join(ScenarioNames(BuiltinScenarios()), ", ")+")")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().IntVar(&iterations, "iterations", 5, "Number of independent runs; run i uses seed+i")
	runCmd.Flags().StringVar(&exportParquet, "export-parquet", "", "Write per-customer results to this parquet file")
	runCmd.Flags().StringVar(&exportCSV, "export-csv", "", "Write per-customer results to this CSV file")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write prometheus metrics to this textfile")

	// Restaurant configuration; every flag can also be set as DRIVETHRU_<KEY> or in --config
	registerConfigFlags(runCmd.Flags(), restaurant.DefaultConfig())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenariosCmd)
}
