package sim

import "container/heap"

// EventScheduler is a binary-heap priority queue of pending events with
// deterministic ordering.
// Ordering: time → insertion sequence (stable FIFO tie-break).
type EventScheduler struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventScheduler creates an empty scheduler.
func NewEventScheduler() *EventScheduler {
	s := &EventScheduler{events: make(eventHeap, 0)}
	heap.Init(&s.events)
	return s
}

// Push schedules an event, stamping it with the next insertion sequence.
func (s *EventScheduler) Push(ev *Event) {
	ev.seq = s.nextSeq
	s.nextSeq++
	heap.Push(&s.events, ev)
}

// PopEarliest removes and returns the earliest pending event, or nil when
// the scheduler is empty.
func (s *EventScheduler) PopEarliest() *Event {
	if len(s.events) == 0 {
		return nil
	}
	return heap.Pop(&s.events).(*Event)
}

// Len returns the number of pending events.
func (s *EventScheduler) Len() int {
	return len(s.events)
}

// eventHeap implements heap.Interface. The backing slice is exclusively
// owned by the scheduler; nothing outside this file aliases it.
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}
