package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// BlockageKind classifies why an arriving entity had to queue. The
// empty-facility case is a pure queuing-discipline artifact (a policy or
// follow-up constraint forces queuing even with an idle facility) and is
// reported as its own category, never merged into opposite-class blocking.
type BlockageKind int

const (
	BlockedSameClass BlockageKind = iota
	BlockedOppositeClass
	BlockedFacilityEmpty
)

// FacilityArbiter is the shared-resource state machine: it owns the per-class
// waiting queues, enforces capacity and class compatibility, applies the
// admission policy and the same-class follow-up constraint, and schedules
// release events for admitted entities.
//
// Invariant: 0 <= occupantCount <= capacity at every simulated instant. With
// capacity 1 this is strict mutual exclusion; with capacity > 1 and
// mixedClasses false, concurrent occupants always belong to a single class
// (e.g. both directions never share the facility).
type FacilityArbiter struct {
	capacity      int
	mixedClasses  bool
	blockWhenFull bool
	policy        AdmissionPolicy
	serviceTime   ServiceTimeFunc

	rng   *RandomStream
	sched *EventScheduler
	stats *StatisticsCollector

	classes  map[int]DemandClass
	classIDs []int // ascending, for deterministic iteration
	queues   map[int]*FIFOQueue

	occupantCount    int
	occupantsByClass map[int]int
	occupyingClass   int // -1 when empty
	position         int

	// pendingReleases holds the outstanding release times in ascending
	// order, updated incrementally on each admission and release; its head
	// is the cached next-release time. Never longer than capacity.
	pendingReleases []float64

	lastAdmissionTime map[int]float64
	lastAdmittedClass int
	retryPending      bool
}

// ArbiterParams carries everything a FacilityArbiter needs from the
// simulation graph.
type ArbiterParams struct {
	Capacity      int
	MixedClasses  bool
	BlockWhenFull bool
	Policy        AdmissionPolicy
	ServiceTime   ServiceTimeFunc
	Classes       []DemandClass
	Position      int
}

// NewFacilityArbiter wires the arbiter into one replication's graph.
func NewFacilityArbiter(p ArbiterParams, rng *RandomStream, sched *EventScheduler, stats *StatisticsCollector) *FacilityArbiter {
	f := &FacilityArbiter{
		capacity:          p.Capacity,
		mixedClasses:      p.MixedClasses,
		blockWhenFull:     p.BlockWhenFull,
		policy:            p.Policy,
		serviceTime:       p.ServiceTime,
		rng:               rng,
		sched:             sched,
		stats:             stats,
		classes:           make(map[int]DemandClass, len(p.Classes)),
		queues:            make(map[int]*FIFOQueue, len(p.Classes)),
		occupantsByClass:  make(map[int]int, len(p.Classes)),
		occupyingClass:    -1,
		position:          p.Position,
		lastAdmissionTime: make(map[int]float64, len(p.Classes)),
		lastAdmittedClass: -1,
	}
	for _, c := range p.Classes {
		f.classes[c.ID] = c
		f.queues[c.ID] = &FIFOQueue{}
		f.classIDs = append(f.classIDs, c.ID)
	}
	sort.Ints(f.classIDs)
	return f
}

// TryAdmit attempts to admit a freshly arrived entity. It returns true when
// the entity was admitted immediately; otherwise the entity either joined
// its class queue (classified for statistics) or, in blocking mode with a
// full facility, was rejected outright.
func (f *FacilityArbiter) TryAdmit(e *Entity, now float64) bool {
	if f.hasSpareCapacity(e.ClassID) && f.followUpSatisfied(e.ClassID, now) && !f.policy.MustQueue(f, e) {
		f.admit(e, now, true)
		return true
	}
	if f.blockWhenFull && !f.hasSpareCapacity(e.ClassID) {
		f.stats.RecordRejected(e.ClassID)
		return false
	}
	f.queues[e.ClassID].Enqueue(e)
	f.stats.RecordBlocked(e.ClassID, f.blockageKind(e.ClassID))
	// An idle facility with a backlog can still start service on this
	// arrival (e.g. the queue head belongs to another class).
	f.AdmitNext(now)
	return false
}

// OnRelease handles an admitted entity leaving the facility.
func (f *FacilityArbiter) OnRelease(e *Entity, now float64) {
	e.ExitTime = now
	e.Released = true
	f.stats.RecordRelease(e.ClassID)

	f.occupantCount--
	f.occupantsByClass[e.ClassID]--
	f.dropNextRelease()
	if f.occupantsByClass[e.ClassID] == 0 {
		f.stats.OnClassVacate(e.ClassID, now)
	}
	if f.occupantCount == 0 {
		f.stats.OnVacate(now)
		f.occupyingClass = -1
	} else if f.occupantsByClass[f.occupyingClass] == 0 {
		// The released slot's class differs from the remaining occupants';
		// hand ownership to a class that still holds the facility.
		for _, class := range f.classIDs {
			if f.occupantsByClass[class] > 0 {
				f.occupyingClass = class
				break
			}
		}
	}
}

// AdmitNext applies the admission policy to start service for as many
// waiting entities as capacity, compatibility and follow-up timing allow.
// When the selected entity is blocked by follow-up timing alone, a retry
// event is scheduled at the earliest permissible instant.
func (f *FacilityArbiter) AdmitNext(now float64) {
	for {
		if f.occupantCount >= f.capacity {
			return
		}
		class := f.policy.SelectNext(f)
		if class < 0 {
			return
		}
		if !f.classCompatible(class) {
			return
		}
		if !f.followUpSatisfied(class, now) {
			f.scheduleRetry(f.lastAdmissionTime[class] + f.classes[class].MinFollowUp)
			return
		}
		e := f.queues[class].Dequeue()
		f.admit(e, now, false)
	}
}

// ClearRetry marks the pending follow-up retry as consumed. The simulator
// calls it when a retry event executes, before re-running AdmitNext.
func (f *FacilityArbiter) ClearRetry() {
	f.retryPending = false
}

// QueueLen returns the number of waiting entities for a class.
func (f *FacilityArbiter) QueueLen(classID int) int {
	return f.queues[classID].Len()
}

// TotalWaiting returns the number of waiting entities across all classes.
func (f *FacilityArbiter) TotalWaiting() int {
	total := 0
	for _, q := range f.queues {
		total += q.Len()
	}
	return total
}

// OccupantCount returns the current number of entities inside the facility.
func (f *FacilityArbiter) OccupantCount() int {
	return f.occupantCount
}

// Capacity returns the configured facility capacity.
func (f *FacilityArbiter) Capacity() int {
	return f.capacity
}

// OccupyingClass returns the class currently owning the facility, or -1
// when empty.
func (f *FacilityArbiter) OccupyingClass() int {
	return f.occupyingClass
}

// NextReleaseTime returns the cached earliest outstanding release time, or
// +Inf when the facility is empty.
func (f *FacilityArbiter) NextReleaseTime() float64 {
	if len(f.pendingReleases) == 0 {
		return math.Inf(1)
	}
	return f.pendingReleases[0]
}

// Position returns the facility's current location (lift variant).
func (f *FacilityArbiter) Position() int {
	return f.position
}

func (f *FacilityArbiter) admit(e *Entity, now float64, immediate bool) {
	e.AdmissionTime = now
	e.Admitted = true
	f.stats.RecordAdmission(e, immediate)

	if f.occupantCount == 0 {
		f.stats.OnOccupy(now)
	}
	if f.occupantsByClass[e.ClassID] == 0 {
		f.stats.OnClassOccupy(e.ClassID, now)
	}
	f.occupantCount++
	f.occupantsByClass[e.ClassID]++
	f.occupyingClass = e.ClassID
	f.lastAdmissionTime[e.ClassID] = now
	f.lastAdmittedClass = e.ClassID

	service := f.serviceTime(f.rng, e, f.position)
	if service < 0 || math.IsNaN(service) || math.IsInf(service, 0) {
		logrus.Warnf("service time for class %d degenerate (%v), substituting 0", e.ClassID, service)
		service = 0
	}
	f.position = e.Dest

	release := now + service
	f.insertRelease(release)
	f.sched.Push(&Event{Time: release, Kind: EventRelease, ClassID: e.ClassID, Entity: e})
	logrus.Debugf("admitted class %d at %.3f (service %.3fs, immediate=%v)", e.ClassID, now, service, immediate)
}

// hasSpareCapacity reports whether an entity of the class could physically
// enter the facility right now.
func (f *FacilityArbiter) hasSpareCapacity(classID int) bool {
	if f.occupantCount >= f.capacity {
		return false
	}
	return f.classCompatible(classID)
}

func (f *FacilityArbiter) classCompatible(classID int) bool {
	if f.occupantCount == 0 || f.mixedClasses {
		return true
	}
	return f.occupyingClass == classID
}

// followUpSatisfied enforces the minimum re-admission interval between two
// consecutive same-class admissions. The first admission after a class
// switch is never restricted.
func (f *FacilityArbiter) followUpSatisfied(classID int, now float64) bool {
	if f.lastAdmittedClass != classID {
		return true
	}
	followUp := f.classes[classID].MinFollowUp
	if followUp <= 0 {
		return true
	}
	return now-f.lastAdmissionTime[classID] >= followUp
}

func (f *FacilityArbiter) blockageKind(classID int) BlockageKind {
	switch {
	case f.occupantCount == 0:
		return BlockedFacilityEmpty
	case f.occupyingClass == classID:
		return BlockedSameClass
	default:
		return BlockedOppositeClass
	}
}

func (f *FacilityArbiter) scheduleRetry(at float64) {
	if f.retryPending {
		return
	}
	f.retryPending = true
	f.sched.Push(&Event{Time: at, Kind: EventRetry})
}

func (f *FacilityArbiter) insertRelease(t float64) {
	i := sort.SearchFloat64s(f.pendingReleases, t)
	f.pendingReleases = append(f.pendingReleases, 0)
	copy(f.pendingReleases[i+1:], f.pendingReleases[i:])
	f.pendingReleases[i] = t
}

func (f *FacilityArbiter) dropNextRelease() {
	if len(f.pendingReleases) > 0 {
		f.pendingReleases = f.pendingReleases[1:]
	}
}
