package sim

import (
	"fmt"
	"strings"
)

// Entity is one unit of demand (a vehicle, a passenger) competing for the
// shared facility. Created on arrival, mutated once on admission and once on
// release, never afterward. An entity is exclusively owned by the class queue
// holding it until the arbiter admits it.
type Entity struct {
	ClassID     int
	Origin      int // position the entity waits at (floor index; 0 elsewhere)
	Dest        int // position the entity travels to
	ArrivalTime float64

	AdmissionTime float64
	Admitted      bool
	ExitTime      float64
	Released      bool
}

// Delay returns how long the entity waited between arrival and admission,
// or 0 if it has not been admitted.
func (e *Entity) Delay() float64 {
	if !e.Admitted {
		return 0
	}
	return e.AdmissionTime - e.ArrivalTime
}

// DemandClass is the static configuration of one category of competing
// demand: a traffic direction, a floor, an entry stream.
type DemandClass struct {
	ID   int
	Name string

	// RatePerHour is the arrival rate in entities per hour.
	RatePerHour float64
	// MinGap is the minimum inter-arrival gap in seconds.
	MinGap float64
	// MinFollowUp is the minimum interval in seconds between two consecutive
	// same-class admissions (platooning constraint). It does not apply to
	// the first admission after the facility switches to this class.
	MinFollowUp float64

	// Origin and Dest position entities of this class for distance-based
	// service times. Both are 0 for position-less variants.
	Origin int
	Dest   int
}

// ratePerSecond converts the configured hourly rate.
func (c DemandClass) ratePerSecond() float64 {
	return c.RatePerHour / 3600.0
}

// FIFOQueue holds the entities of one class waiting for admission, ordered
// by arrival time. The queue is never reordered: admission order within a
// class is always earliest-arrived-first.
type FIFOQueue struct {
	entities []*Entity
}

// Enqueue adds an entity to the back of the queue.
func (q *FIFOQueue) Enqueue(e *Entity) {
	q.entities = append(q.entities, e)
}

// Peek returns the entity at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (q *FIFOQueue) Peek() *Entity {
	if len(q.entities) == 0 {
		return nil
	}
	return q.entities[0]
}

// Dequeue removes and returns the front entity, or nil when empty.
func (q *FIFOQueue) Dequeue() *Entity {
	if len(q.entities) == 0 {
		return nil
	}
	e := q.entities[0]
	q.entities = q.entities[1:]
	return e
}

// Len returns the number of waiting entities.
func (q *FIFOQueue) Len() int {
	return len(q.entities)
}

func (q *FIFOQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range q.entities {
		sb.WriteString(fmt.Sprintf("c%d@%.2f", e.ClassID, e.ArrivalTime))
		if i < len(q.entities)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
