package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	sim "github.com/facility-sim/facility-sim/sim"
)

var (
	cfgFile    string // Path to a yaml config file merged under the CLI flags
	presetFile string // Path to the scenario preset catalogue
	preset     string // Name of a preset from the catalogue
	logLevel   string // Log verbosity level
	outputPath string // Where to write the JSON report ("" = pretty stdout)
	noProgress bool   // Disable the replication progress bar
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "facility-sim",
	Short: "Monte-Carlo discrete-event simulator for traffic and facility calculators",
	Long: `facility-sim runs seeded discrete-event simulations of shared facilities:
shared-lane passing zones, lift dispatch, and queuing, blocking or mechanical
car parks. Each calculator is a configuration over one common engine.`,
}

// runCmd executes the simulation using parameters from flags, an optional
// config file, or a named preset.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured simulation and print the aggregate report",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("Could not build configuration: %v", err)
		}
		// The validation collaborator's role: infeasible input never
		// reaches the engine.
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}

		controller := sim.NewReplicationController(cfg)
		if !noProgress && outputPath != "" {
			bar := progressbar.Default(int64(cfg.Replications), "replications")
			controller.OnProgress(func(done, total int) {
				_ = bar.Set(done)
			})
		}

		report, err := controller.Run()
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := emitReport(report); err != nil {
			logrus.Fatalf("Could not write report: %v", err)
		}
	},
}

// buildConfig merges, in ascending precedence: preset, config file, flags.
// With a preset the bound flag defaults must not clobber the catalogue
// values, so only flags the user explicitly set are overlaid.
func buildConfig(cmd *cobra.Command) (sim.SimulationConfig, error) {
	var cfg sim.SimulationConfig
	if preset != "" {
		p, err := LoadPreset(presetFile, preset)
		if err != nil {
			return cfg, err
		}
		cfg = p
		overlayChangedFlags(cmd, &cfg)
		return cfg, nil
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if len(cfg.Classes) == 0 {
		cfg.Classes = classesFromFlags()
	}
	return cfg, nil
}

func overlayChangedFlags(cmd *cobra.Command, cfg *sim.SimulationConfig) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "capacity":
			cfg.Capacity = viper.GetInt(f.Name)
		case "policy":
			cfg.Policy = viper.GetString(f.Name)
		case "priority_class":
			cfg.PriorityClass = viper.GetInt(f.Name)
		case "mixed_classes":
			cfg.MixedClasses = viper.GetBool(f.Name)
		case "block_when_full":
			cfg.BlockWhenFull = viper.GetBool(f.Name)
		case "service.kind":
			cfg.Service.Kind = viper.GetString(f.Name)
		case "service.seconds":
			cfg.Service.Seconds = viper.GetFloat64(f.Name)
		case "service.per_unit_seconds":
			cfg.Service.PerUnitSeconds = viper.GetFloat64(f.Name)
		case "service.overhead_seconds":
			cfg.Service.OverheadSeconds = viper.GetFloat64(f.Name)
		case "horizon_hours":
			cfg.HorizonHours = viper.GetFloat64(f.Name)
		case "replications":
			cfg.Replications = viper.GetInt(f.Name)
		case "seed_mode":
			cfg.SeedMode = viper.GetString(f.Name)
		case "seed":
			cfg.Seed = viper.GetInt64(f.Name)
		case "workers":
			cfg.Workers = viper.GetInt(f.Name)
		case "max_events":
			cfg.MaxEvents = viper.GetInt64(f.Name)
		}
	})
}

// classesFromFlags assembles the two-class shorthand most calculators use.
func classesFromFlags() []sim.ClassConfig {
	classes := []sim.ClassConfig{{
		Name:               "class A",
		ArrivalRatePerHour: viper.GetFloat64("arrival_rate_a"),
		MinGapSeconds:      viper.GetFloat64("min_gap_seconds"),
		MinFollowUpSeconds: viper.GetFloat64("min_follow_up_seconds"),
	}}
	if rateB := viper.GetFloat64("arrival_rate_b"); rateB > 0 {
		classes = append(classes, sim.ClassConfig{
			Name:               "class B",
			ArrivalRatePerHour: rateB,
			MinGapSeconds:      viper.GetFloat64("min_gap_seconds"),
			MinFollowUpSeconds: viper.GetFloat64("min_follow_up_seconds"),
		})
	}
	return classes
}

func emitReport(report *sim.AggregateReport) error {
	if outputPath == "" {
		fmt.Print(report.String())
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&cfgFile, "config", "", "yaml config file with a full SimulationConfig")
	runCmd.Flags().StringVar(&presetFile, "presets", "scenarios.yaml", "scenario preset catalogue")
	runCmd.Flags().StringVar(&preset, "preset", "", "named preset from the catalogue")
	runCmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "write the JSON report to this path instead of stdout")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the replication progress bar")

	runCmd.Flags().Float64("arrival_rate_a", 100, "class A arrival rate (entities/hour)")
	runCmd.Flags().Float64("arrival_rate_b", 0, "class B arrival rate (entities/hour)")
	runCmd.Flags().Float64("min_gap_seconds", 0, "minimum inter-arrival gap (seconds)")
	runCmd.Flags().Float64("min_follow_up_seconds", 0, "minimum same-class re-admission interval (seconds)")
	runCmd.Flags().Int("capacity", 1, "facility capacity")
	runCmd.Flags().String("policy", "fcfs", "admission policy (fcfs, priority, nearest)")
	runCmd.Flags().Int("priority_class", 0, "class index the priority policy drains first")
	runCmd.Flags().Bool("mixed_classes", false, "allow different classes to occupy the facility concurrently")
	runCmd.Flags().Bool("block_when_full", false, "reject arrivals to a full facility instead of queuing")
	runCmd.Flags().String("service.kind", "fixed", "service time kind (fixed, exponential, distance)")
	runCmd.Flags().Float64("service.seconds", 5, "fixed service time or exponential mean (seconds)")
	runCmd.Flags().Float64("service.per_unit_seconds", 0, "travel seconds per position step (distance service)")
	runCmd.Flags().Float64("service.overhead_seconds", 0, "fixed per-trip overhead (distance service)")
	runCmd.Flags().Float64("horizon_hours", 1, "simulation horizon (hours)")
	runCmd.Flags().Int("replications", 100, "number of independent replications")
	runCmd.Flags().String("seed_mode", "fixed", "seed mode (fixed, random)")
	runCmd.Flags().Int64("seed", 1, "base seed in fixed mode")
	runCmd.Flags().Int("workers", 0, "parallel replication workers (0 = NumCPU)")
	runCmd.Flags().Int64("max_events", 0, "per-replication event cap (0 = derive from horizon)")

	cobra.OnInitialize(initConfig)
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		logrus.Fatalf("Could not bind flags: %v", err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".facility-sim")
	}

	viper.SetEnvPrefix("FACILITY_SIM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logrus.Infof("Using config file: %s", viper.ConfigFileUsed())
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
