package sim

import (
	"fmt"
	"math"
)

// AdmissionPolicy decides which waiting entity the facility serves next and
// whether a fresh arrival must queue even though capacity is free. Policies
// only select; timing constraints (capacity, class compatibility, follow-up)
// are enforced by the arbiter.
type AdmissionPolicy interface {
	Name() string

	// SelectNext returns the ID of the class whose queue head should be
	// admitted next, or -1 when nothing is waiting.
	SelectNext(f *FacilityArbiter) int

	// MustQueue reports whether a newly arrived entity has to join its
	// class queue even if the facility could otherwise admit it (e.g. FCFS
	// requires the waiting line for all classes to be empty).
	MustQueue(f *FacilityArbiter, e *Entity) bool
}

// Policy identifiers accepted in SimulationConfig.
const (
	PolicyFCFS     = "fcfs"
	PolicyPriority = "priority"
	PolicyNearest  = "nearest"
)

// NewAdmissionPolicy builds a policy from its config identifier.
// priorityClass is only meaningful for PolicyPriority.
func NewAdmissionPolicy(name string, priorityClass int) (AdmissionPolicy, error) {
	switch name {
	case PolicyFCFS, "":
		return fcfsPolicy{}, nil
	case PolicyPriority:
		return priorityPolicy{class: priorityClass}, nil
	case PolicyNearest:
		return nearestPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown admission policy %q", name)
	}
}

// fcfsPolicy serves the globally earliest-arrived waiting entity across all
// classes.
type fcfsPolicy struct{}

func (fcfsPolicy) Name() string { return PolicyFCFS }

func (fcfsPolicy) SelectNext(f *FacilityArbiter) int {
	best := -1
	bestTime := math.Inf(1)
	for _, class := range f.classIDs {
		head := f.queues[class].Peek()
		if head != nil && head.ArrivalTime < bestTime {
			bestTime = head.ArrivalTime
			best = class
		}
	}
	return best
}

func (fcfsPolicy) MustQueue(f *FacilityArbiter, _ *Entity) bool {
	// Everyone already waiting arrived earlier than this entity.
	return f.TotalWaiting() > 0
}

// priorityPolicy drains one class whenever it has waiting entities; other
// classes are served FCFS among themselves.
type priorityPolicy struct {
	class int
}

func (priorityPolicy) Name() string { return PolicyPriority }

func (p priorityPolicy) SelectNext(f *FacilityArbiter) int {
	if q, ok := f.queues[p.class]; ok && q.Len() > 0 {
		return p.class
	}
	best := -1
	bestTime := math.Inf(1)
	for _, class := range f.classIDs {
		if class == p.class {
			continue
		}
		head := f.queues[class].Peek()
		if head != nil && head.ArrivalTime < bestTime {
			bestTime = head.ArrivalTime
			best = class
		}
	}
	return best
}

func (p priorityPolicy) MustQueue(f *FacilityArbiter, e *Entity) bool {
	if f.queues[e.ClassID].Len() > 0 {
		return true
	}
	if e.ClassID == p.class {
		return false
	}
	// A waiting priority entity always goes first, even when the facility
	// sits idle (the blocked-with-empty-facility artifact).
	if q, ok := f.queues[p.class]; ok && q.Len() > 0 {
		return true
	}
	return false
}

// nearestPolicy serves the outstanding request closest to the facility's
// current position (lift dispatch).
type nearestPolicy struct{}

func (nearestPolicy) Name() string { return PolicyNearest }

func (nearestPolicy) SelectNext(f *FacilityArbiter) int {
	best := -1
	bestDist := math.Inf(1)
	bestArrival := math.Inf(1)
	for _, class := range f.classIDs {
		head := f.queues[class].Peek()
		if head == nil {
			continue
		}
		dist := math.Abs(float64(f.position - head.Origin))
		// Ties between equidistant floors go to the earlier arrival.
		if dist < bestDist || (dist == bestDist && head.ArrivalTime < bestArrival) {
			bestDist = dist
			bestArrival = head.ArrivalTime
			best = class
		}
	}
	return best
}

func (nearestPolicy) MustQueue(f *FacilityArbiter, _ *Entity) bool {
	return f.TotalWaiting() > 0
}
