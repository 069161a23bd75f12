package sim

import "math"

// secondsPerHour converts between the config's hourly units and the engine's
// internal seconds.
const secondsPerHour = 3600.0

// StatisticsCollector accumulates one replication's raw statistics:
// time-weighted queue-length histograms, per-hour maximum queue lengths,
// occupancy intervals and running delay sums. Memory per class is O(1) in
// the entity count: delays are running sums, never per-entity arrays.
type StatisticsCollector struct {
	classIDs []int
	lastTime float64

	// histogram[class][length] = accumulated seconds the class queue spent
	// at that length. Missing keys default to 0.
	queueHist map[int]map[int]float64
	// hourlyMax[class][maxLength] = number of hours whose running maximum
	// queue length was maxLength.
	hourlyMax     map[int]map[int]float64
	curHour       int
	curHourMax    map[int]int
	hoursObserved float64

	arrivals            map[int]int64
	admittedImmediately map[int]int64
	enqueued            map[int]int64
	blockedSame         map[int]int64
	blockedOpposite     map[int]int64
	blockedEmpty        map[int]int64
	rejected            map[int]int64
	admitted            map[int]int64
	served              map[int]int64

	totalDelay  map[int]float64
	queuedDelay map[int]float64
	queuedCount map[int]int64

	// Facility occupancy intervals: opened on empty→occupied, closed on
	// occupied→empty; a still-open interval is closed at the horizon.
	busySeconds float64
	busyStart   float64
	occupied    bool

	classBusySeconds map[int]float64
	classBusyStart   map[int]float64
	classOccupied    map[int]bool
}

// NewStatisticsCollector creates a collector for the given class IDs.
func NewStatisticsCollector(classIDs []int) *StatisticsCollector {
	s := &StatisticsCollector{
		classIDs:            append([]int(nil), classIDs...),
		queueHist:           make(map[int]map[int]float64, len(classIDs)),
		hourlyMax:           make(map[int]map[int]float64, len(classIDs)),
		curHourMax:          make(map[int]int, len(classIDs)),
		arrivals:            make(map[int]int64, len(classIDs)),
		admittedImmediately: make(map[int]int64, len(classIDs)),
		enqueued:            make(map[int]int64, len(classIDs)),
		blockedSame:         make(map[int]int64, len(classIDs)),
		blockedOpposite:     make(map[int]int64, len(classIDs)),
		blockedEmpty:        make(map[int]int64, len(classIDs)),
		rejected:            make(map[int]int64, len(classIDs)),
		admitted:            make(map[int]int64, len(classIDs)),
		served:              make(map[int]int64, len(classIDs)),
		totalDelay:          make(map[int]float64, len(classIDs)),
		queuedDelay:         make(map[int]float64, len(classIDs)),
		queuedCount:         make(map[int]int64, len(classIDs)),
		classBusySeconds:    make(map[int]float64, len(classIDs)),
		classBusyStart:      make(map[int]float64, len(classIDs)),
		classOccupied:       make(map[int]bool, len(classIDs)),
	}
	for _, id := range s.classIDs {
		s.queueHist[id] = make(map[int]float64)
		s.hourlyMax[id] = make(map[int]float64)
	}
	return s
}

// Accrue charges the time since the last recorded instant to each class's
// current queue length and rolls the per-hour maxima across any hour
// boundaries crossed. The simulator calls it before processing every event,
// while queue lengths still reflect the elapsed interval.
func (s *StatisticsCollector) Accrue(now float64, queueLen func(classID int) int) {
	if now < s.lastTime {
		return
	}
	dt := now - s.lastTime
	for _, id := range s.classIDs {
		length := queueLen(id)
		if dt > 0 {
			s.queueHist[id][length] += dt
		}
		if length > s.curHourMax[id] {
			s.curHourMax[id] = length
		}
	}
	// Queue lengths are constant between events, so every completed hour
	// since the last event carries the current length as its maximum.
	for hour := int(now / secondsPerHour); s.curHour < hour; s.curHour++ {
		s.flushHour(queueLen)
	}
	s.lastTime = now
}

// RecordArrival counts one generated entity for a class.
func (s *StatisticsCollector) RecordArrival(classID int) {
	s.arrivals[classID]++
}

// RecordAdmission accumulates the entity's delay into the running sums.
func (s *StatisticsCollector) RecordAdmission(e *Entity, immediate bool) {
	s.admitted[e.ClassID]++
	if immediate {
		s.admittedImmediately[e.ClassID]++
	}
	delay := e.Delay()
	s.totalDelay[e.ClassID] += delay
	if delay > 0 {
		s.queuedCount[e.ClassID]++
		s.queuedDelay[e.ClassID] += delay
	}
}

// RecordBlocked counts a queued entity under its blockage classification.
func (s *StatisticsCollector) RecordBlocked(classID int, kind BlockageKind) {
	s.enqueued[classID]++
	switch kind {
	case BlockedSameClass:
		s.blockedSame[classID]++
	case BlockedOppositeClass:
		s.blockedOpposite[classID]++
	case BlockedFacilityEmpty:
		s.blockedEmpty[classID]++
	}
}

// RecordRejected counts an entity turned away by a full blocking facility.
func (s *StatisticsCollector) RecordRejected(classID int) {
	s.rejected[classID]++
}

// RecordRelease counts a served entity.
func (s *StatisticsCollector) RecordRelease(classID int) {
	s.served[classID]++
}

// OnOccupy opens the overall occupancy interval (empty → occupied).
func (s *StatisticsCollector) OnOccupy(now float64) {
	s.occupied = true
	s.busyStart = now
}

// OnVacate closes the overall occupancy interval (occupied → empty).
func (s *StatisticsCollector) OnVacate(now float64) {
	if s.occupied {
		s.busySeconds += now - s.busyStart
		s.occupied = false
	}
}

// OnClassOccupy opens a class's directional occupancy interval.
func (s *StatisticsCollector) OnClassOccupy(classID int, now float64) {
	s.classOccupied[classID] = true
	s.classBusyStart[classID] = now
}

// OnClassVacate closes a class's directional occupancy interval.
func (s *StatisticsCollector) OnClassVacate(classID int, now float64) {
	if s.classOccupied[classID] {
		s.classBusySeconds[classID] += now - s.classBusyStart[classID]
		s.classOccupied[classID] = false
	}
}

// Finish accrues the remaining time up to end, closes any still-open
// occupancy intervals and flushes the final (possibly partial) hour.
func (s *StatisticsCollector) Finish(end float64, queueLen func(classID int) int) {
	s.Accrue(end, queueLen)
	s.OnVacate(end)
	for _, id := range s.classIDs {
		s.OnClassVacate(id, end)
	}
	if end > float64(s.curHour)*secondsPerHour {
		s.flushHour(queueLen)
	}
}

func (s *StatisticsCollector) flushHour(queueLen func(classID int) int) {
	for _, id := range s.classIDs {
		s.hourlyMax[id][s.curHourMax[id]]++
		s.curHourMax[id] = queueLen(id)
	}
	s.hoursObserved++
}

// safeDiv returns a/b, or 0 when the denominator is zero — rates and
// utilizations are 0, never NaN or Inf, under degenerate input.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// clampPct bounds a percentage to [0, 100] and squashes non-finite values
// to 0.
func clampPct(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

// HistogramPercentile returns the smallest bucket key whose cumulative
// weight reaches pct percent of the histogram's total weight, or 0 for an
// empty histogram.
func HistogramPercentile(hist map[int]float64, pct float64) int {
	total := 0.0
	maxKey := 0
	for k, w := range hist {
		total += w
		if k > maxKey {
			maxKey = k
		}
	}
	if total == 0 {
		return 0
	}
	target := total * pct / 100.0
	cum := 0.0
	for k := 0; k <= maxKey; k++ {
		cum += hist[k]
		if cum >= target {
			return k
		}
	}
	return maxKey
}
