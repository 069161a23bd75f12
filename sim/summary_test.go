package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryWith(util float64, queuePct map[int]float64) ReplicationSummary {
	return ReplicationSummary{
		Classes: []ClassReport{{
			ClassID:        0,
			Name:           "direction A",
			QueueLengthPct: queuePct,
			HourlyMaxPct:   map[int]float64{},
			Utilization:    util,
		}},
		Utilization: util,
	}
}

func TestFold_OnlineMeanMatchesArithmeticMean(t *testing.T) {
	var r AggregateReport
	for _, u := range []float64{10, 20, 60} {
		r.Fold(summaryWith(u, map[int]float64{0: 100}))
	}

	assert.Equal(t, 3, r.Replications)
	assert.InDelta(t, 30.0, r.Utilization, 1e-9)
	assert.InDelta(t, 30.0, r.Classes[0].Utilization, 1e-9)
}

func TestFold_AbsentHistogramKeysContributeZero(t *testing.T) {
	// GIVEN two replications with disjoint queue-length keys
	var r AggregateReport
	r.Fold(summaryWith(0, map[int]float64{0: 80, 1: 20}))
	r.Fold(summaryWith(0, map[int]float64{0: 70, 3: 30}))

	// Key 1 appeared only in the first replication, key 3 only in the
	// second; both average over the full denominator of 2.
	hist := r.Classes[0].QueueLengthPct
	assert.InDelta(t, 75.0, hist[0], 1e-9)
	assert.InDelta(t, 10.0, hist[1], 1e-9)
	assert.InDelta(t, 15.0, hist[3], 1e-9)
}

func TestFold_KeyFirstSeenInLaterReplication(t *testing.T) {
	// A key first observed at replication 3 starts at x/3, charging the two
	// earlier replications with implicit zeros.
	var r AggregateReport
	r.Fold(summaryWith(0, map[int]float64{0: 100}))
	r.Fold(summaryWith(0, map[int]float64{0: 100}))
	r.Fold(summaryWith(0, map[int]float64{0: 40, 2: 60}))

	assert.InDelta(t, 20.0, r.Classes[0].QueueLengthPct[2], 1e-9)
}

func TestFold_CountsTruncatedReplications(t *testing.T) {
	var r AggregateReport
	r.Fold(ReplicationSummary{Classes: []ClassReport{}, Truncated: true})
	r.Fold(ReplicationSummary{Classes: []ClassReport{}})

	assert.Equal(t, 2, r.Replications)
	assert.Equal(t, 1, r.TruncatedReplications)
}

func TestSummarize_ZeroObservations(t *testing.T) {
	// A replication with no arrivals must report zeros, never NaN.
	s := NewStatisticsCollector([]int{0})
	s.Finish(3600, func(int) int { return 0 })

	sum := s.Summarize(7, 3600, map[int]DemandClass{0: {ID: 0, Name: "idle"}})

	require.Len(t, sum.Classes, 1)
	assert.Equal(t, int64(7), sum.Seed)
	assert.Equal(t, 0.0, sum.Utilization)
	assert.Equal(t, 0.0, sum.Classes[0].MeanDelayAll)
	assert.Equal(t, 0.0, sum.Classes[0].MeanDelayQueued)
	assert.Equal(t, 0.0, sum.TotalArrivals)
}

func TestSummarize_ConvertsSecondsToPercentages(t *testing.T) {
	// GIVEN one hour in which the queue spent 900s at length 1 and the
	// facility was busy for 1800s
	s := NewStatisticsCollector([]int{0})
	s.OnOccupy(0)
	s.OnClassOccupy(0, 0)
	length := 1
	s.Accrue(900, func(int) int { return length })
	length = 0
	s.OnVacate(1800)
	s.OnClassVacate(0, 1800)
	s.Finish(3600, func(int) int { return length })

	sum := s.Summarize(1, 3600, map[int]DemandClass{0: {ID: 0, Name: "parking"}})

	assert.InDelta(t, 50.0, sum.Utilization, 1e-9)
	assert.InDelta(t, 50.0, sum.Classes[0].Utilization, 1e-9)
	assert.InDelta(t, 25.0, sum.Classes[0].QueueLengthPct[1], 1e-9)
	assert.InDelta(t, 75.0, sum.Classes[0].QueueLengthPct[0], 1e-9)
}

func TestAggregateReport_StringRendersSortedHistogram(t *testing.T) {
	var r AggregateReport
	r.Fold(summaryWith(42, map[int]float64{2: 5, 0: 90, 1: 5}))

	out := r.String()

	assert.Contains(t, out, "1 replications")
	assert.Contains(t, out, "direction A")
	// buckets render in ascending key order
	i0 := strings.Index(out, "  0:")
	i1 := strings.Index(out, "  1:")
	i2 := strings.Index(out, "  2:")
	require.True(t, i0 >= 0 && i1 >= 0 && i2 >= 0)
	assert.True(t, i0 < i1 && i1 < i2, "histogram keys not sorted: %s", out)
}
