package sim

import "fmt"

// Calculator variants. Each calculator endpoint is a thin configuration
// object over the one shared engine: no variant reimplements scheduling,
// arbitration or statistics.

// PassingZoneParams configures a shared-lane passing zone: two opposing
// traffic directions contend for a single-vehicle lane.
type PassingZoneParams struct {
	ArrivalRateAPerHour float64
	ArrivalRateBPerHour float64
	TraverseSeconds     float64
	MinGapSeconds       float64
	MinFollowUpSeconds  float64
	HorizonHours        float64
	Replications        int
	SeedMode            string
	Seed                int64
}

// NewPassingZoneConfig builds the passing-zone calculator's config: strict
// mutual exclusion, global FCFS between directions, fixed traverse time,
// same-direction platooning governed by the follow-up interval.
func NewPassingZoneConfig(p PassingZoneParams) SimulationConfig {
	return SimulationConfig{
		Classes: []ClassConfig{
			{Name: "direction A", ArrivalRatePerHour: p.ArrivalRateAPerHour,
				MinGapSeconds: p.MinGapSeconds, MinFollowUpSeconds: p.MinFollowUpSeconds},
			{Name: "direction B", ArrivalRatePerHour: p.ArrivalRateBPerHour,
				MinGapSeconds: p.MinGapSeconds, MinFollowUpSeconds: p.MinFollowUpSeconds},
		},
		Service:      ServiceConfig{Kind: ServiceFixed, Seconds: p.TraverseSeconds},
		Capacity:     1,
		Policy:       PolicyFCFS,
		HorizonHours: p.HorizonHours,
		Replications: p.Replications,
		SeedMode:     p.SeedMode,
		Seed:         p.Seed,
	}
}

// LiftParams configures a single-cab lift serving floors from a lobby.
type LiftParams struct {
	Floors             int
	LobbyFloor         int
	UpRatePerHour      float64 // lobby → each upper floor
	DownRatePerHour    float64 // each upper floor → lobby
	PerFloorSeconds    float64
	OverheadSeconds    float64 // doors, selection, levelling
	HorizonHours       float64
	Replications       int
	SeedMode           string
	Seed               int64
	MinGapSeconds      float64
	MinFollowUpSeconds float64
}

// NewLiftConfig builds the lift dispatch calculator's config: one class per
// travel request stream (up from the lobby to each floor, down from each
// floor to the lobby), nearest-request dispatch, distance-based service.
func NewLiftConfig(p LiftParams) SimulationConfig {
	var classes []ClassConfig
	for floor := 0; floor < p.Floors; floor++ {
		if floor == p.LobbyFloor {
			continue
		}
		classes = append(classes,
			ClassConfig{
				Name:               fmt.Sprintf("lobby to floor %d", floor),
				ArrivalRatePerHour: p.UpRatePerHour,
				MinGapSeconds:      p.MinGapSeconds,
				MinFollowUpSeconds: p.MinFollowUpSeconds,
				Origin:             p.LobbyFloor,
				Dest:               floor,
			},
			ClassConfig{
				Name:               fmt.Sprintf("floor %d to lobby", floor),
				ArrivalRatePerHour: p.DownRatePerHour,
				MinGapSeconds:      p.MinGapSeconds,
				MinFollowUpSeconds: p.MinFollowUpSeconds,
				Origin:             floor,
				Dest:               p.LobbyFloor,
			})
	}
	return SimulationConfig{
		Classes: classes,
		Service: ServiceConfig{Kind: ServiceDistance,
			PerUnitSeconds: p.PerFloorSeconds, OverheadSeconds: p.OverheadSeconds},
		Capacity:        1,
		Policy:          PolicyNearest,
		InitialPosition: p.LobbyFloor,
		HorizonHours:    p.HorizonHours,
		Replications:    p.Replications,
		SeedMode:        p.SeedMode,
		Seed:            p.Seed,
	}
}

// CarParkParams configures the car-park calculators.
type CarParkParams struct {
	ArrivalRatePerHour float64
	StaySeconds        float64
	Spaces             int
	HorizonHours       float64
	Replications       int
	SeedMode           string
	Seed               int64
}

// NewQueueingCarParkConfig builds the queuing car park: arrivals finding a
// full park wait in a FIFO line for the next free space.
func NewQueueingCarParkConfig(p CarParkParams) SimulationConfig {
	return SimulationConfig{
		Classes: []ClassConfig{
			{Name: "parking", ArrivalRatePerHour: p.ArrivalRatePerHour},
		},
		Service:      ServiceConfig{Kind: ServiceFixed, Seconds: p.StaySeconds},
		Capacity:     p.Spaces,
		Policy:       PolicyFCFS,
		MixedClasses: true,
		HorizonHours: p.HorizonHours,
		Replications: p.Replications,
		SeedMode:     p.SeedMode,
		Seed:         p.Seed,
	}
}

// NewBlockingCarParkConfig builds the Erlang-blocking car park: arrivals
// finding a full park are turned away and never queue.
func NewBlockingCarParkConfig(p CarParkParams) SimulationConfig {
	cfg := NewQueueingCarParkConfig(p)
	cfg.BlockWhenFull = true
	return cfg
}

// MechanicalCarParkParams configures a mechanical parking structure where
// entering and exiting cars share one transfer bay.
type MechanicalCarParkParams struct {
	EntryRatePerHour   float64
	ExitRatePerHour    float64
	CycleSeconds       float64 // one full store-or-retrieve cycle of the bay
	MinFollowUpSeconds float64
	HorizonHours       float64
	Replications       int
	SeedMode           string
	Seed               int64
}

// NewMechanicalCarParkConfig builds the mechanical car-park calculator:
// capacity-1 transfer bay, exits drained with priority so the structure
// never deadlocks on full occupancy.
func NewMechanicalCarParkConfig(p MechanicalCarParkParams) SimulationConfig {
	return SimulationConfig{
		Classes: []ClassConfig{
			{Name: "entries", ArrivalRatePerHour: p.EntryRatePerHour,
				MinFollowUpSeconds: p.MinFollowUpSeconds},
			{Name: "exits", ArrivalRatePerHour: p.ExitRatePerHour,
				MinFollowUpSeconds: p.MinFollowUpSeconds},
		},
		Service:       ServiceConfig{Kind: ServiceFixed, Seconds: p.CycleSeconds},
		Capacity:      1,
		Policy:        PolicyPriority,
		PriorityClass: 1,
		HorizonHours:  p.HorizonHours,
		Replications:  p.Replications,
		SeedMode:      p.SeedMode,
		Seed:          p.Seed,
	}
}
