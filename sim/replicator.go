package sim

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProgressFunc is invoked after each replication completes with the number
// finished so far and the total. Callbacks may arrive from worker
// goroutines but never concurrently.
type ProgressFunc func(done, total int)

// ReplicationController runs N independent replications and folds their
// summaries into a single AggregateReport. Replications share no mutable
// state, so they execute in parallel on a bounded worker pool; folding
// happens afterwards, sequentially in replication order, which keeps
// fixed-seed aggregates bit-identical across runs.
type ReplicationController struct {
	cfg        SimulationConfig
	onProgress ProgressFunc
	mu         sync.Mutex
	done       int
}

// NewReplicationController creates a controller for a validated config.
func NewReplicationController(cfg SimulationConfig) *ReplicationController {
	return &ReplicationController{cfg: cfg}
}

// OnProgress registers a progress callback (e.g. a CLI progress bar).
func (rc *ReplicationController) OnProgress(fn ProgressFunc) {
	rc.onProgress = fn
}

// Run executes all replications and returns the aggregate report. A panic
// inside any replication indicates an invariant violation, not a transient
// condition, and is reported as an error to the caller; no error kind aborts
// the controller mid-flight without draining the pool.
func (rc *ReplicationController) Run() (*AggregateReport, error) {
	n := rc.cfg.Replications
	seeds := rc.deriveSeeds(n)

	workers := rc.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	summaries := make([]ReplicationSummary, n)
	errs := make([]error, n)
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				summaries[i], errs[i] = rc.runOne(seeds[i])
				rc.notifyProgress(n)
			}
		}()
	}
	start := time.Now()
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("replication %d (seed %d): %w", i+1, seeds[i], err)
		}
	}

	report := &AggregateReport{}
	for i := range summaries {
		report.Fold(summaries[i])
	}
	logrus.Infof("%d replications in %s (%d workers, %d truncated)",
		n, time.Since(start).Round(time.Millisecond), workers, report.TruncatedReplications)
	return report, nil
}

// runOne executes a single replication, converting a panic into an error.
func (rc *ReplicationController) runOne(seed int64) (summary ReplicationSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = configErrorf("replication with seed %d panicked: %v", seed, r)
		}
	}()
	s, err := NewSimulation(rc.cfg, seed)
	if err != nil {
		return ReplicationSummary{}, err
	}
	return s.Run(), nil
}

// deriveSeeds produces one seed per replication: sequential integers from
// the configured base in fixed mode, uniform random otherwise.
func (rc *ReplicationController) deriveSeeds(n int) []int64 {
	seeds := make([]int64, n)
	switch rc.cfg.SeedMode {
	case SeedModeRandom:
		src := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := range seeds {
			seeds[i] = src.Int63()
		}
	default:
		base := rc.cfg.Seed
		if base == 0 {
			base = 1
		}
		for i := range seeds {
			seeds[i] = base + int64(i)
		}
	}
	return seeds
}

func (rc *ReplicationController) notifyProgress(total int) {
	if rc.onProgress == nil {
		return
	}
	rc.mu.Lock()
	rc.done++
	done := rc.done
	fn := rc.onProgress
	fn(done, total)
	rc.mu.Unlock()
}
