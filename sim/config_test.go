package sim

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTwoWayConfig() SimulationConfig {
	return SimulationConfig{
		Classes: []ClassConfig{
			{Name: "northbound", ArrivalRatePerHour: 100, MinGapSeconds: 4},
			{Name: "southbound", ArrivalRatePerHour: 100, MinGapSeconds: 4},
		},
		Service:      ServiceConfig{Kind: ServiceFixed, Seconds: 10},
		Capacity:     1,
		Policy:       PolicyFCFS,
		HorizonHours: 10,
		Replications: 5,
		SeedMode:     SeedModeFixed,
	}
}

func TestValidate_AcceptsStableConfig(t *testing.T) {
	assert.NoError(t, validTwoWayConfig().Validate())
}

func TestValidate_RejectsUnstableInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SimulationConfig)
		wantSub string
	}{
		{
			"no classes",
			func(c *SimulationConfig) { c.Classes = nil },
			"at least one demand class",
		},
		{
			"zero capacity",
			func(c *SimulationConfig) { c.Capacity = 0 },
			"capacity",
		},
		{
			"negative horizon",
			func(c *SimulationConfig) { c.HorizonHours = -1 },
			"horizon",
		},
		{
			"zero replications",
			func(c *SimulationConfig) { c.Replications = 0 },
			"replication count",
		},
		{
			"unknown seed mode",
			func(c *SimulationConfig) { c.SeedMode = "dice" },
			"seed mode",
		},
		{
			"unknown policy",
			func(c *SimulationConfig) { c.Policy = "lifo" },
			"policy",
		},
		{
			"unknown service kind",
			func(c *SimulationConfig) { c.Service.Kind = "uniform" },
			"service kind",
		},
		{
			"negative arrival rate",
			func(c *SimulationConfig) { c.Classes[0].ArrivalRatePerHour = -5 },
			"arrival rate",
		},
		{
			// 2000/h leaves a 1.8s mean gap; a 1.75s minimum gap starves
			// the exponential remainder
			"minimum gap too close to mean inter-arrival",
			func(c *SimulationConfig) {
				c.Classes[0].ArrivalRatePerHour = 2000
				c.Classes[0].MinGapSeconds = 1.75
			},
			"minimum gap",
		},
		{
			"follow-up exceeds service time",
			func(c *SimulationConfig) { c.Classes[0].MinFollowUpSeconds = 11 },
			"follow-up",
		},
		{
			// 2 classes x 1000/h x 10s on one slot = 555% load
			"combined utilization over capacity",
			func(c *SimulationConfig) {
				c.Classes[0].ArrivalRatePerHour = 1000
				c.Classes[0].MinGapSeconds = 0
				c.Classes[1].ArrivalRatePerHour = 1000
				c.Classes[1].MinGapSeconds = 0
			},
			"utilization",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTwoWayConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			require.Error(t, err)
			var cerr *ConfigError
			assert.True(t, errors.As(err, &cerr), "expected a ConfigError, got %T", err)
			assert.True(t, strings.Contains(err.Error(), tt.wantSub),
				"error %q does not mention %q", err.Error(), tt.wantSub)
		})
	}
}

func TestValidate_ZeroRateClassSkipsStabilityChecks(t *testing.T) {
	// A silent class (rate 0) never generates arrivals, so its gap and
	// follow-up settings cannot destabilize anything.
	cfg := validTwoWayConfig()
	cfg.Classes[1].ArrivalRatePerHour = 0
	cfg.Classes[1].MinGapSeconds = 1e9

	assert.NoError(t, cfg.Validate())
}

func TestMeanServiceSeconds_DistanceKind(t *testing.T) {
	cfg := SimulationConfig{Service: ServiceConfig{
		Kind: ServiceDistance, PerUnitSeconds: 4, OverheadSeconds: 5,
	}}

	got := cfg.meanServiceSeconds(ClassConfig{Origin: 2, Dest: 6})

	assert.InDelta(t, 4*4+5, got, 1e-9)
}

func TestDemandClasses_AssignsAscendingIDsAndDefaultNames(t *testing.T) {
	cfg := validTwoWayConfig()
	cfg.Classes[1].Name = ""

	classes := cfg.demandClasses()

	require.Len(t, classes, 2)
	assert.Equal(t, 0, classes[0].ID)
	assert.Equal(t, "northbound", classes[0].Name)
	assert.Equal(t, 1, classes[1].ID)
	assert.Equal(t, "class 1", classes[1].Name)
}

func TestVariantConfigs_AllValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  SimulationConfig
	}{
		{"passing zone", NewPassingZoneConfig(PassingZoneParams{
			ArrivalRateAPerHour: 100, ArrivalRateBPerHour: 100,
			TraverseSeconds: 10, MinGapSeconds: 4,
			HorizonHours: 10, Replications: 5, SeedMode: SeedModeFixed,
		})},
		{"lift", NewLiftConfig(LiftParams{
			Floors: 4, LobbyFloor: 0, UpRatePerHour: 12, DownRatePerHour: 12,
			PerFloorSeconds: 4, OverheadSeconds: 5,
			HorizonHours: 10, Replications: 5, SeedMode: SeedModeFixed,
		})},
		{"queueing car park", NewQueueingCarParkConfig(CarParkParams{
			ArrivalRatePerHour: 60, StaySeconds: 900, Spaces: 20,
			HorizonHours: 10, Replications: 5, SeedMode: SeedModeFixed,
		})},
		{"blocking car park", NewBlockingCarParkConfig(CarParkParams{
			ArrivalRatePerHour: 60, StaySeconds: 900, Spaces: 20,
			HorizonHours: 10, Replications: 5, SeedMode: SeedModeFixed,
		})},
		{"mechanical car park", NewMechanicalCarParkConfig(MechanicalCarParkParams{
			EntryRatePerHour: 15, ExitRatePerHour: 15, CycleSeconds: 90,
			HorizonHours: 10, Replications: 5, SeedMode: SeedModeFixed,
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.cfg.Validate())
		})
	}
}
