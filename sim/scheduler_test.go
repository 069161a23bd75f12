package sim

import (
	"math/rand"
	"testing"
)

func TestEventScheduler_PopOrder_NonDecreasing(t *testing.T) {
	// GIVEN a scheduler loaded with events at random times
	sched := NewEventScheduler()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		sched.Push(&Event{Time: rng.Float64() * 3600, Kind: EventArrival})
	}

	// WHEN all events are popped
	// THEN the observed order is non-decreasing in (time, insertion sequence)
	var lastTime float64 = -1
	var lastSeq uint64
	for ev := sched.PopEarliest(); ev != nil; ev = sched.PopEarliest() {
		if ev.Time < lastTime {
			t.Fatalf("pop order regressed: %v after %v", ev.Time, lastTime)
		}
		if ev.Time == lastTime && ev.seq < lastSeq {
			t.Fatalf("tie at t=%v broke insertion order: seq %d after %d", ev.Time, ev.seq, lastSeq)
		}
		lastTime = ev.Time
		lastSeq = ev.seq
	}
}

func TestEventScheduler_TiedTimes_PopInInsertionOrder(t *testing.T) {
	// GIVEN events for different classes at the identical instant
	sched := NewEventScheduler()
	for class := 0; class < 5; class++ {
		sched.Push(&Event{Time: 42.0, Kind: EventArrival, ClassID: class})
	}

	// WHEN they are popped
	// THEN the FIFO tie-break preserves insertion order
	for want := 0; want < 5; want++ {
		ev := sched.PopEarliest()
		if ev == nil {
			t.Fatal("scheduler drained early")
		}
		if ev.ClassID != want {
			t.Errorf("tie-break: got class %d, want %d", ev.ClassID, want)
		}
	}
}

func TestEventScheduler_PopEarliest_Empty_ReturnsNil(t *testing.T) {
	sched := NewEventScheduler()
	if ev := sched.PopEarliest(); ev != nil {
		t.Errorf("PopEarliest on empty scheduler: got %v, want nil", ev)
	}
}

func TestEventScheduler_InterleavedPushPop(t *testing.T) {
	// GIVEN pushes interleaved with pops
	sched := NewEventScheduler()
	sched.Push(&Event{Time: 10})
	sched.Push(&Event{Time: 5})
	if got := sched.PopEarliest().Time; got != 5 {
		t.Fatalf("first pop: got t=%v, want 5", got)
	}

	sched.Push(&Event{Time: 1})
	sched.Push(&Event{Time: 20})

	// THEN pops still come out earliest-first
	for _, want := range []float64{1, 10, 20} {
		if got := sched.PopEarliest().Time; got != want {
			t.Errorf("pop: got t=%v, want %v", got, want)
		}
	}
	if sched.Len() != 0 {
		t.Errorf("Len after draining: got %d, want 0", sched.Len())
	}
}
