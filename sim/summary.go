package sim

import (
	"fmt"
	"sort"
	"strings"
)

// ClassReport holds one class's reduced statistics. All histogram values are
// percentages; counts are float64 so replication averages stay exact.
type ClassReport struct {
	ClassID int    `json:"class_id"`
	Name    string `json:"name"`

	// QueueLengthPct maps queue length to the percentage of simulated time
	// the queue spent at that length.
	QueueLengthPct map[int]float64 `json:"queue_length_pct"`
	// HourlyMaxPct maps a maximum queue length to the percentage of hours
	// whose running maximum was that length.
	HourlyMaxPct map[int]float64 `json:"hourly_max_pct"`

	Utilization     float64 `json:"utilization_pct"`
	MeanDelayAll    float64 `json:"mean_delay_all_s"`
	MeanDelayQueued float64 `json:"mean_delay_queued_s"`

	Arrivals            float64 `json:"arrivals"`
	AdmittedImmediately float64 `json:"admitted_immediately"`
	Queued              float64 `json:"queued"`
	BlockedSameClass    float64 `json:"blocked_same_class"`
	BlockedOpposite     float64 `json:"blocked_opposite_class"`
	BlockedEmpty        float64 `json:"blocked_facility_empty"`
	Rejected            float64 `json:"rejected"`
	Served              float64 `json:"served"`
}

// ReplicationSummary reduces one replication's raw counters into a pure
// value object. The replication's entire data model is discarded once its
// summary is folded into the aggregate.
type ReplicationSummary struct {
	Seed    int64         `json:"seed"`
	Classes []ClassReport `json:"classes"`

	Utilization   float64 `json:"utilization_pct"`
	TotalArrivals float64 `json:"total_arrivals"`
	TotalServed   float64 `json:"total_served"`
	TotalQueued   float64 `json:"total_queued"`
	TotalRejected float64 `json:"total_rejected"`

	EventsProcessed int64 `json:"events_processed"`
	Truncated       bool  `json:"truncated"`
}

// Summarize reduces the collector's raw accumulators for a replication that
// observed `end` seconds of simulated time.
func (s *StatisticsCollector) Summarize(seed int64, end float64, classes map[int]DemandClass) ReplicationSummary {
	sum := ReplicationSummary{Seed: seed}
	for _, id := range s.classIDs {
		cr := ClassReport{
			ClassID:        id,
			Name:           classes[id].Name,
			QueueLengthPct: make(map[int]float64, len(s.queueHist[id])),
			HourlyMaxPct:   make(map[int]float64, len(s.hourlyMax[id])),
		}
		for length, t := range s.queueHist[id] {
			cr.QueueLengthPct[length] = clampPct(safeDiv(t, end) * 100)
		}
		for length, hours := range s.hourlyMax[id] {
			cr.HourlyMaxPct[length] = clampPct(safeDiv(hours, s.hoursObserved) * 100)
		}
		cr.Utilization = clampPct(safeDiv(s.classBusySeconds[id], end) * 100)
		cr.MeanDelayAll = safeDiv(s.totalDelay[id], float64(s.admitted[id]))
		cr.MeanDelayQueued = safeDiv(s.queuedDelay[id], float64(s.queuedCount[id]))
		cr.Arrivals = float64(s.arrivals[id])
		cr.AdmittedImmediately = float64(s.admittedImmediately[id])
		cr.Queued = float64(s.enqueued[id])
		cr.BlockedSameClass = float64(s.blockedSame[id])
		cr.BlockedOpposite = float64(s.blockedOpposite[id])
		cr.BlockedEmpty = float64(s.blockedEmpty[id])
		cr.Rejected = float64(s.rejected[id])
		cr.Served = float64(s.served[id])
		sum.Classes = append(sum.Classes, cr)

		sum.TotalArrivals += cr.Arrivals
		sum.TotalServed += cr.Served
		sum.TotalQueued += cr.Queued
		sum.TotalRejected += cr.Rejected
	}
	sum.Utilization = clampPct(safeDiv(s.busySeconds, end) * 100)
	return sum
}

// AggregateReport is the running online mean of N replication summaries. No
// raw results are retained: each summary is folded as it arrives and
// discarded. The whole report stays representable as plain nested
// maps/arrays for the surrounding serialization layer.
type AggregateReport struct {
	Replications          int           `json:"replications"`
	TruncatedReplications int           `json:"truncated_replications"`
	Classes               []ClassReport `json:"classes"`

	Utilization   float64 `json:"utilization_pct"`
	TotalArrivals float64 `json:"total_arrivals"`
	TotalServed   float64 `json:"total_served"`
	TotalQueued   float64 `json:"total_queued"`
	TotalRejected float64 `json:"total_rejected"`
}

// Fold merges one replication summary into the running means. Folding is
// commutative in value but performed in replication order so fixed-seed runs
// reproduce bit-identically. A histogram key absent from a given replication
// contributes 0 to that key's mean for that replication; the denominator is
// never skipped.
func (r *AggregateReport) Fold(s ReplicationSummary) {
	r.Replications++
	n := float64(r.Replications)
	if s.Truncated {
		r.TruncatedReplications++
	}

	if r.Classes == nil {
		for _, cr := range s.Classes {
			r.Classes = append(r.Classes, ClassReport{
				ClassID:        cr.ClassID,
				Name:           cr.Name,
				QueueLengthPct: make(map[int]float64),
				HourlyMaxPct:   make(map[int]float64),
			})
		}
	}
	for i := range r.Classes {
		agg := &r.Classes[i]
		cr := s.Classes[i]
		foldHistogram(agg.QueueLengthPct, cr.QueueLengthPct, n)
		foldHistogram(agg.HourlyMaxPct, cr.HourlyMaxPct, n)
		foldMean(&agg.Utilization, cr.Utilization, n)
		foldMean(&agg.MeanDelayAll, cr.MeanDelayAll, n)
		foldMean(&agg.MeanDelayQueued, cr.MeanDelayQueued, n)
		foldMean(&agg.Arrivals, cr.Arrivals, n)
		foldMean(&agg.AdmittedImmediately, cr.AdmittedImmediately, n)
		foldMean(&agg.Queued, cr.Queued, n)
		foldMean(&agg.BlockedSameClass, cr.BlockedSameClass, n)
		foldMean(&agg.BlockedOpposite, cr.BlockedOpposite, n)
		foldMean(&agg.BlockedEmpty, cr.BlockedEmpty, n)
		foldMean(&agg.Rejected, cr.Rejected, n)
		foldMean(&agg.Served, cr.Served, n)
	}
	foldMean(&r.Utilization, s.Utilization, n)
	foldMean(&r.TotalArrivals, s.TotalArrivals, n)
	foldMean(&r.TotalServed, s.TotalServed, n)
	foldMean(&r.TotalQueued, s.TotalQueued, n)
	foldMean(&r.TotalRejected, s.TotalRejected, n)
}

// foldMean applies one Welford-style incremental mean update.
func foldMean(mean *float64, x, n float64) {
	*mean += (x - *mean) / n
}

// foldHistogram applies the incremental mean per bucket key. Keys seen in
// earlier replications but absent now fold a 0; keys appearing for the
// first time at replication n start at x/n, accounting for the n-1
// replications that observed 0.
func foldHistogram(agg map[int]float64, x map[int]float64, n float64) {
	for k, mean := range agg {
		agg[k] = mean + (x[k]-mean)/n
	}
	for k, v := range x {
		if _, seen := agg[k]; !seen {
			agg[k] = v / n
		}
	}
}

// String renders the report for terminal output.
func (r *AggregateReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Aggregate Report (%d replications", r.Replications)
	if r.TruncatedReplications > 0 {
		fmt.Fprintf(&sb, ", %d truncated", r.TruncatedReplications)
	}
	sb.WriteString(") ===\n")
	fmt.Fprintf(&sb, "Overall utilization   : %.2f%%\n", r.Utilization)
	fmt.Fprintf(&sb, "Arrivals / served     : %.1f / %.1f\n", r.TotalArrivals, r.TotalServed)
	fmt.Fprintf(&sb, "Queued / rejected     : %.1f / %.1f\n", r.TotalQueued, r.TotalRejected)
	for _, cr := range r.Classes {
		fmt.Fprintf(&sb, "--- %s ---\n", cr.Name)
		fmt.Fprintf(&sb, "Utilization           : %.2f%%\n", cr.Utilization)
		fmt.Fprintf(&sb, "Mean delay all/queued : %.2fs / %.2fs\n", cr.MeanDelayAll, cr.MeanDelayQueued)
		fmt.Fprintf(&sb, "Blocked same/opp/empty: %.1f / %.1f / %.1f\n",
			cr.BlockedSameClass, cr.BlockedOpposite, cr.BlockedEmpty)
		sb.WriteString("Queue length time share:\n")
		for _, k := range sortedKeys(cr.QueueLengthPct) {
			fmt.Fprintf(&sb, "  %3d: %6.2f%%\n", k, cr.QueueLengthPct[k])
		}
		sb.WriteString("Hourly max distribution:\n")
		for _, k := range sortedKeys(cr.HourlyMaxPct) {
			fmt.Fprintf(&sb, "  %3d: %6.2f%%\n", k, cr.HourlyMaxPct[k])
		}
	}
	return sb.String()
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
