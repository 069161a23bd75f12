package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// maxEventDensityPerSecond bounds how many events per simulated second a
// well-behaved replication can plausibly process. The derived cap guarantees
// termination under pathological input (near-critical utilization growing
// queues without bound) while staying far above any feasible workload.
const maxEventDensityPerSecond = 64

// minDerivedEventCap keeps the derived cap sane for very short horizons.
const minDerivedEventCap = 1 << 16

// Simulation is one replication's graph: scheduler, random stream, demand
// processes, arbiter and statistics, all created fresh for a single seed and
// discarded after the summary is extracted. The run loop is single-threaded
// and strictly event-ordered; once started it runs to completion
// synchronously.
type Simulation struct {
	Clock   float64
	Horizon float64

	cfg     SimulationConfig
	seed    int64
	rng     *RandomStream
	sched   *EventScheduler
	stats   *StatisticsCollector
	arbiter *FacilityArbiter
	demand  map[int]*DemandProcess
	classes map[int]DemandClass

	maxEvents       int64
	eventsProcessed int64
	truncated       bool
}

// NewSimulation builds a fresh simulation graph for one seed. The config is
// assumed validated; construction only fails on unknown policy or service
// identifiers.
func NewSimulation(cfg SimulationConfig, seed int64) (*Simulation, error) {
	policy, err := NewAdmissionPolicy(cfg.Policy, cfg.PriorityClass)
	if err != nil {
		return nil, err
	}
	serviceFn, err := cfg.serviceFunc()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		Horizon:   cfg.horizonSeconds(),
		cfg:       cfg,
		seed:      seed,
		rng:       NewRandomStream(seed),
		sched:     NewEventScheduler(),
		demand:    make(map[int]*DemandProcess),
		classes:   make(map[int]DemandClass),
		maxEvents: cfg.MaxEvents,
	}
	if s.maxEvents <= 0 {
		s.maxEvents = int64(math.Max(s.Horizon*maxEventDensityPerSecond, minDerivedEventCap))
	}

	classes := cfg.demandClasses()
	classIDs := make([]int, 0, len(classes))
	for _, c := range classes {
		s.classes[c.ID] = c
		classIDs = append(classIDs, c.ID)
	}
	s.stats = NewStatisticsCollector(classIDs)
	s.arbiter = NewFacilityArbiter(ArbiterParams{
		Capacity:      cfg.Capacity,
		MixedClasses:  cfg.MixedClasses,
		BlockWhenFull: cfg.BlockWhenFull,
		Policy:        policy,
		ServiceTime:   serviceFn,
		Classes:       classes,
		Position:      cfg.InitialPosition,
	}, s.rng, s.sched, s.stats)
	for _, c := range classes {
		s.demand[c.ID] = NewDemandProcess(c, s.rng, s.Horizon, s.sched)
	}
	return s, nil
}

// Run executes the replication to the horizon, an empty scheduler, or the
// event cap, and reduces the raw counters into a ReplicationSummary.
func (s *Simulation) Run() ReplicationSummary {
	for {
		ev := s.sched.PopEarliest()
		if ev == nil {
			break
		}
		if ev.Time > s.Horizon {
			break
		}
		// Charge the elapsed interval to the queue lengths as they were
		// before this event mutates them.
		s.stats.Accrue(ev.Time, s.arbiter.QueueLen)
		s.Clock = ev.Time
		s.eventsProcessed++

		switch ev.Kind {
		case EventArrival:
			e := s.demand[ev.ClassID].OnArrival(ev.Time, s.sched)
			s.stats.RecordArrival(e.ClassID)
			s.arbiter.TryAdmit(e, ev.Time)
		case EventRelease:
			s.arbiter.OnRelease(ev.Entity, ev.Time)
			s.arbiter.AdmitNext(ev.Time)
		case EventRetry:
			s.arbiter.ClearRetry()
			s.arbiter.AdmitNext(ev.Time)
		}

		if s.eventsProcessed >= s.maxEvents {
			// Terminate rather than hang; the partial statistics are still
			// folded into the aggregate.
			s.truncated = true
			logrus.Warnf("seed %d: event cap %d reached at t=%.1fs, ending replication early",
				s.seed, s.maxEvents, s.Clock)
			break
		}
	}

	end := s.Horizon
	if s.truncated {
		end = s.Clock
	}
	s.stats.Finish(end, s.arbiter.QueueLen)

	summary := s.stats.Summarize(s.seed, end, s.classes)
	summary.EventsProcessed = s.eventsProcessed
	summary.Truncated = s.truncated
	logrus.Debugf("seed %d: %d events, %d arrivals, util %.2f%%",
		s.seed, s.eventsProcessed, int64(summary.TotalArrivals), summary.Utilization)
	return summary
}
