package sim

import "github.com/sirupsen/logrus"

// DemandProcess generates the arrival stream for one demand class. On each
// arrival it builds an Entity, hands it to the arbiter, and always re-arms
// the next arrival: arrivals are never suppressed, only admission may be
// deferred via queuing. Re-arming stops once the next arrival would fall
// beyond the horizon.
type DemandProcess struct {
	class   DemandClass
	rng     *RandomStream
	horizon float64
}

// NewDemandProcess creates the process and schedules its first arrival at
// t = 0 + AdjustedInterarrival(...). Classes with a zero rate schedule
// nothing.
func NewDemandProcess(class DemandClass, rng *RandomStream, horizon float64, sched *EventScheduler) *DemandProcess {
	d := &DemandProcess{class: class, rng: rng, horizon: horizon}
	if class.RatePerHour > 0 {
		d.arm(0, sched)
	}
	return d
}

// OnArrival handles one arrival event: it creates the entity, re-arms the
// next arrival and returns the entity for admission.
func (d *DemandProcess) OnArrival(now float64, sched *EventScheduler) *Entity {
	e := &Entity{
		ClassID:     d.class.ID,
		Origin:      d.class.Origin,
		Dest:        d.class.Dest,
		ArrivalTime: now,
	}
	d.arm(now, sched)
	return e
}

func (d *DemandProcess) arm(now float64, sched *EventScheduler) {
	next := now + d.rng.AdjustedInterarrival(d.class.ratePerSecond(), d.class.MinGap)
	if next > d.horizon {
		logrus.Debugf("class %d: next arrival %.2fs beyond horizon, stopping", d.class.ID, next)
		return
	}
	sched.Push(&Event{Time: next, Kind: EventArrival, ClassID: d.class.ID})
}
