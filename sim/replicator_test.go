package sim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplicationController_FixedSeedsReproduceBitIdentically(t *testing.T) {
	// GIVEN parallel workers racing over the same fixed seed sequence
	cfg := validTwoWayConfig()
	cfg.Replications = 8
	cfg.Workers = 4

	first, err := NewReplicationController(cfg).Run()
	require.NoError(t, err)
	second, err := NewReplicationController(cfg).Run()
	require.NoError(t, err)

	// Folding happens in replication order regardless of completion order,
	// so the aggregates match exactly, not just statistically.
	assert.Equal(t, first, second)
}

func TestReplicationController_WorkerCountDoesNotChangeResult(t *testing.T) {
	cfg := validTwoWayConfig()
	cfg.Replications = 6

	cfg.Workers = 1
	serial, err := NewReplicationController(cfg).Run()
	require.NoError(t, err)

	cfg.Workers = 6
	parallel, err := NewReplicationController(cfg).Run()
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestReplicationController_ProgressReachesTotal(t *testing.T) {
	cfg := validTwoWayConfig()
	cfg.Replications = 5
	cfg.Workers = 3

	var mu sync.Mutex
	var calls []int
	rc := NewReplicationController(cfg)
	rc.OnProgress(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 5, total)
		calls = append(calls, done)
	})

	_, err := rc.Run()
	require.NoError(t, err)

	require.Len(t, calls, 5)
	// done counts monotonically even with workers reporting concurrently
	for i, d := range calls {
		assert.Equal(t, i+1, d)
	}
}

func TestReplicationController_SingleReplicationMatchesDirectRun(t *testing.T) {
	cfg := validTwoWayConfig()
	cfg.Replications = 1
	cfg.Seed = 42

	report, err := NewReplicationController(cfg).Run()
	require.NoError(t, err)

	direct := runSeed(t, cfg, 42)
	assert.InDelta(t, direct.Utilization, report.Utilization, 1e-9)
	assert.InDelta(t, direct.TotalArrivals, report.TotalArrivals, 1e-9)
}

func TestReplicationController_RandomSeedsVaryBetweenRuns(t *testing.T) {
	cfg := validTwoWayConfig()
	cfg.SeedMode = SeedModeRandom
	cfg.Replications = 3

	rc := NewReplicationController(cfg)
	seeds := rc.deriveSeeds(3)

	assert.Len(t, seeds, 3)
	assert.NotEqual(t, seeds[0], seeds[1])
}

func TestDeriveSeeds_FixedModeIsSequentialFromBase(t *testing.T) {
	cfg := validTwoWayConfig()
	cfg.Seed = 100

	seeds := NewReplicationController(cfg).deriveSeeds(4)

	assert.Equal(t, []int64{100, 101, 102, 103}, seeds)
}

func TestDeriveSeeds_ZeroBaseDefaultsToOne(t *testing.T) {
	cfg := validTwoWayConfig()

	seeds := NewReplicationController(cfg).deriveSeeds(3)

	assert.Equal(t, []int64{1, 2, 3}, seeds)
}

func TestReplicationController_SurfacesConstructionError(t *testing.T) {
	// Validate would normally catch this; the controller still fails
	// cleanly if an unvalidated config slips through.
	cfg := validTwoWayConfig()
	cfg.Policy = "lifo"
	cfg.Replications = 2

	_, err := NewReplicationController(cfg).Run()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "replication 1")
}
