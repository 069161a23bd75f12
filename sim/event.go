package sim

import "fmt"

// EventKind identifies what an event does when the simulator executes it.
type EventKind int

const (
	// EventArrival is the arrival of a new entity of some class; the demand
	// process that produced it immediately re-arms the next arrival.
	EventArrival EventKind = iota
	// EventRelease is an admitted entity finishing service and leaving the
	// facility.
	EventRelease
	// EventRetry re-runs facility admission at the earliest instant the
	// same-class follow-up constraint permits. Scheduled only when a waiting
	// entity is blocked by follow-up timing alone, so an otherwise idle
	// simulation cannot strand queued entities.
	EventRetry
)

func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "arrival"
	case EventRelease:
		return "release"
	case EventRetry:
		return "retry"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one pending simulation occurrence. Events are totally ordered by
// (Time, seq): seq is assigned by the scheduler on push, so two events at the
// same simulated instant pop in insertion order. Two classes can legitimately
// generate events at identical instants and arbitrary reordering there
// changes the statistics.
type Event struct {
	Time    float64
	Kind    EventKind
	ClassID int
	Entity  *Entity // release events carry the entity leaving the facility

	seq uint64 // insertion sequence, owned by the EventScheduler
}
