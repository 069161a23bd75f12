package sim

import (
	"fmt"
	"math"
)

// ConfigError reports a stability or feasibility violation found before any
// simulation starts. The numeric routines still degrade safely if a bad
// value slips through, but a ConfigError is the expected surfacing path.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// Seed modes accepted in SimulationConfig.
const (
	SeedModeFixed  = "fixed"
	SeedModeRandom = "random"
)

// Service time kinds accepted in ServiceConfig.
const (
	ServiceFixed       = "fixed"
	ServiceExponential = "exponential"
	ServiceDistance    = "distance"
)

// ClassConfig describes one demand class of the facility.
type ClassConfig struct {
	Name               string  `yaml:"name" mapstructure:"name" json:"name"`
	ArrivalRatePerHour float64 `yaml:"arrival_rate_per_hour" mapstructure:"arrival_rate_per_hour" json:"arrival_rate_per_hour"`
	MinGapSeconds      float64 `yaml:"min_gap_seconds" mapstructure:"min_gap_seconds" json:"min_gap_seconds"`
	MinFollowUpSeconds float64 `yaml:"min_follow_up_seconds" mapstructure:"min_follow_up_seconds" json:"min_follow_up_seconds"`
	Origin             int     `yaml:"origin" mapstructure:"origin" json:"origin"`
	Dest               int     `yaml:"dest" mapstructure:"dest" json:"dest"`
}

// ServiceConfig selects the service-time function.
type ServiceConfig struct {
	Kind            string  `yaml:"kind" mapstructure:"kind" json:"kind"`
	Seconds         float64 `yaml:"seconds" mapstructure:"seconds" json:"seconds"`
	PerUnitSeconds  float64 `yaml:"per_unit_seconds" mapstructure:"per_unit_seconds" json:"per_unit_seconds"`
	OverheadSeconds float64 `yaml:"overhead_seconds" mapstructure:"overhead_seconds" json:"overhead_seconds"`
}

// SimulationConfig is the single value object the engine is invoked with.
// It is transport-agnostic: plain fields, no behavior beyond validation and
// graph construction.
type SimulationConfig struct {
	Classes         []ClassConfig `yaml:"classes" mapstructure:"classes" json:"classes"`
	Service         ServiceConfig `yaml:"service" mapstructure:"service" json:"service"`
	Capacity        int           `yaml:"capacity" mapstructure:"capacity" json:"capacity"`
	Policy          string        `yaml:"policy" mapstructure:"policy" json:"policy"`
	PriorityClass   int           `yaml:"priority_class" mapstructure:"priority_class" json:"priority_class"`
	MixedClasses    bool          `yaml:"mixed_classes" mapstructure:"mixed_classes" json:"mixed_classes"`
	BlockWhenFull   bool          `yaml:"block_when_full" mapstructure:"block_when_full" json:"block_when_full"`
	InitialPosition int           `yaml:"initial_position" mapstructure:"initial_position" json:"initial_position"`

	HorizonHours float64 `yaml:"horizon_hours" mapstructure:"horizon_hours" json:"horizon_hours"`
	Replications int     `yaml:"replications" mapstructure:"replications" json:"replications"`
	SeedMode     string  `yaml:"seed_mode" mapstructure:"seed_mode" json:"seed_mode"`
	Seed         int64   `yaml:"seed" mapstructure:"seed" json:"seed"`
	Workers      int     `yaml:"workers" mapstructure:"workers" json:"workers"`
	// MaxEvents caps the events processed per replication; 0 derives a
	// generous bound from the horizon.
	MaxEvents int64 `yaml:"max_events" mapstructure:"max_events" json:"max_events"`
}

// Validation thresholds. Minimum gaps close to the mean inter-arrival time,
// near-critical utilization, or follow-ups close to the inter-arrival mean
// all drive queue growth without bound, so they are rejected up front.
const (
	maxGapShareOfMean      = 0.95
	maxCombinedUtilization = 0.99
	maxFollowUpShareOfMean = 0.90
)

// Validate checks stability and feasibility before any replication starts.
func (c SimulationConfig) Validate() error {
	if len(c.Classes) == 0 {
		return configErrorf("at least one demand class is required")
	}
	if c.Capacity < 1 {
		return configErrorf("capacity must be >= 1, got %d", c.Capacity)
	}
	if c.HorizonHours <= 0 {
		return configErrorf("horizon must be positive, got %g hours", c.HorizonHours)
	}
	if c.Replications < 1 {
		return configErrorf("replication count must be >= 1, got %d", c.Replications)
	}
	switch c.SeedMode {
	case SeedModeFixed, SeedModeRandom, "":
	default:
		return configErrorf("unknown seed mode %q", c.SeedMode)
	}
	if _, err := NewAdmissionPolicy(c.Policy, c.PriorityClass); err != nil {
		return configErrorf("%v", err)
	}
	if _, err := c.serviceFunc(); err != nil {
		return configErrorf("%v", err)
	}

	combined := 0.0
	for i, cc := range c.Classes {
		if cc.ArrivalRatePerHour < 0 {
			return configErrorf("class %d: arrival rate must not be negative", i)
		}
		if cc.ArrivalRatePerHour == 0 {
			continue
		}
		mean := secondsPerHour / cc.ArrivalRatePerHour
		if cc.MinGapSeconds >= maxGapShareOfMean*mean {
			return configErrorf("class %d: minimum gap %.2fs is not below %.0f%% of the mean inter-arrival time %.2fs",
				i, cc.MinGapSeconds, maxGapShareOfMean*100, mean)
		}
		service := c.meanServiceSeconds(cc)
		if cc.MinFollowUpSeconds > service {
			return configErrorf("class %d: follow-up interval %.2fs exceeds the service time %.2fs",
				i, cc.MinFollowUpSeconds, service)
		}
		if cc.MinFollowUpSeconds >= maxFollowUpShareOfMean*mean {
			return configErrorf("class %d: follow-up interval %.2fs is not below %.0f%% of the mean inter-arrival time %.2fs",
				i, cc.MinFollowUpSeconds, maxFollowUpShareOfMean*100, mean)
		}
		combined += cc.ArrivalRatePerHour * service / secondsPerHour / float64(c.Capacity)
	}
	if combined >= maxCombinedUtilization {
		return configErrorf("combined utilization %.0f%% is not below %.0f%%",
			combined*100, maxCombinedUtilization*100)
	}
	return nil
}

// meanServiceSeconds estimates a class's mean service time for the
// feasibility checks.
func (c SimulationConfig) meanServiceSeconds(cc ClassConfig) float64 {
	switch c.Service.Kind {
	case ServiceDistance:
		return math.Abs(float64(cc.Dest-cc.Origin))*c.Service.PerUnitSeconds + c.Service.OverheadSeconds
	default:
		return c.Service.Seconds
	}
}

// serviceFunc builds the configured service-time function.
func (c SimulationConfig) serviceFunc() (ServiceTimeFunc, error) {
	switch c.Service.Kind {
	case ServiceFixed, "":
		return FixedService(c.Service.Seconds), nil
	case ServiceExponential:
		return ExponentialService(c.Service.Seconds), nil
	case ServiceDistance:
		return DistanceService(c.Service.PerUnitSeconds, c.Service.OverheadSeconds), nil
	default:
		return nil, fmt.Errorf("unknown service kind %q", c.Service.Kind)
	}
}

// demandClasses converts the class configs into engine demand classes with
// ascending IDs.
func (c SimulationConfig) demandClasses() []DemandClass {
	classes := make([]DemandClass, 0, len(c.Classes))
	for i, cc := range c.Classes {
		name := cc.Name
		if name == "" {
			name = fmt.Sprintf("class %d", i)
		}
		classes = append(classes, DemandClass{
			ID:          i,
			Name:        name,
			RatePerHour: cc.ArrivalRatePerHour,
			MinGap:      cc.MinGapSeconds,
			MinFollowUp: cc.MinFollowUpSeconds,
			Origin:      cc.Origin,
			Dest:        cc.Dest,
		})
	}
	return classes
}

// horizonSeconds converts the configured horizon.
func (c SimulationConfig) horizonSeconds() float64 {
	return c.HorizonHours * secondsPerHour
}
