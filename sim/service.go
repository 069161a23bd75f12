package sim

import "math"

// ServiceTimeFunc computes the service duration in seconds for admitting an
// entity. position is the facility's current location (meaningful only for
// location-aware variants such as the lift; 0 elsewhere). The arbiter is
// parameterized over this function so elevator-style and parking-style
// variants share the same admission/release machinery.
type ServiceTimeFunc func(rng *RandomStream, e *Entity, position int) float64

// FixedService serves every entity in exactly seconds.
func FixedService(seconds float64) ServiceTimeFunc {
	return func(*RandomStream, *Entity, int) float64 {
		return seconds
	}
}

// ExponentialService draws service times from an exponential distribution
// with the given mean in seconds.
func ExponentialService(meanSeconds float64) ServiceTimeFunc {
	return func(rng *RandomStream, _ *Entity, _ int) float64 {
		if meanSeconds <= 0 {
			return 0
		}
		return rng.Exponential(1.0 / meanSeconds)
	}
}

// DistanceService models a cab travelling between positions: travel from the
// current position to the entity's origin, then origin to destination, at
// perUnitSeconds per position step, plus a fixed overhead per trip for
// doors, selection and levelling.
func DistanceService(perUnitSeconds, overheadSeconds float64) ServiceTimeFunc {
	return func(_ *RandomStream, e *Entity, position int) float64 {
		pickup := math.Abs(float64(position-e.Origin)) * perUnitSeconds
		carry := math.Abs(float64(e.Dest-e.Origin)) * perUnitSeconds
		return pickup + carry + overheadSeconds
	}
}
