package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sim "github.com/facility-sim/facility-sim/sim"
)

// presetCatalogue is the yaml shape of the scenario file: a name to
// SimulationConfig mapping.
type presetCatalogue struct {
	Scenarios map[string]sim.SimulationConfig `yaml:"scenarios"`
}

// LoadPreset reads the catalogue and returns the named scenario config.
func LoadPreset(path, name string) (sim.SimulationConfig, error) {
	catalogue, err := loadCatalogue(path)
	if err != nil {
		return sim.SimulationConfig{}, err
	}
	cfg, ok := catalogue.Scenarios[name]
	if !ok {
		return sim.SimulationConfig{}, fmt.Errorf("no preset %q in %s", name, path)
	}
	return cfg, nil
}

func loadCatalogue(path string) (presetCatalogue, error) {
	var catalogue presetCatalogue
	data, err := os.ReadFile(path)
	if err != nil {
		return catalogue, err
	}
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return catalogue, fmt.Errorf("parsing %s: %w", path, err)
	}
	return catalogue, nil
}

// presetsCmd lists the scenarios available in the catalogue.
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the scenario presets in the catalogue",
	Run: func(cmd *cobra.Command, args []string) {
		catalogue, err := loadCatalogue(presetFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not read presets: %v\n", err)
			os.Exit(1)
		}
		names := make([]string, 0, len(catalogue.Scenarios))
		for name := range catalogue.Scenarios {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cfg := catalogue.Scenarios[name]
			fmt.Printf("%-24s %d class(es), capacity %d, policy %s\n",
				name, len(cfg.Classes), cfg.Capacity, cfg.Policy)
		}
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().StringVar(&presetFile, "presets", "scenarios.yaml", "scenario preset catalogue")
}
