package simulation

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randytsao24/binwatch/internal/location"
	"github.com/randytsao24/binwatch/internal/models"
)

type recordingNotifier struct {
	mu        sync.Mutex
	snapshots []models.Snapshot
}

func (n *recordingNotifier) Broadcast(snapshot models.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, snapshot)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.snapshots)
}

func TestNextFillLevel_StaysBelowCeiling(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	starts := []float64{0, 10, 50, 85, 89.7, 89.99, 90, 95, 250}

	for _, start := range starts {
		level := start
		for i := 0; i < 5000; i++ {
			level = NextFillLevel(level, rng)
			require.GreaterOrEqual(t, level, 0.0, "start %v step %d", start, i)
			require.Less(t, level, 90.0, "start %v step %d", start, i)
		}
	}
}

func TestNextFillLevel_IncrementRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		next := NextFillLevel(20, rng)
		assert.GreaterOrEqual(t, next, 20.0)
		assert.Less(t, next, 20.3)
	}
}

func TestNextFillLevel_BouncesIntoHighEighties(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		next := NextFillLevel(95, rng)
		assert.GreaterOrEqual(t, next, 85.0)
		assert.Less(t, next, 90.0)
	}
}

func TestTick_InvariantAcrossManyTicks(t *testing.T) {
	store := location.NewBinStore([]models.Bin{
		{ID: "a", FillLevel: 0},
		{ID: "b", FillLevel: 89.9},
		{ID: "c", FillLevel: 120},
		{ID: "d", FillLevel: 60},
	})
	notifier := &recordingNotifier{}
	sim := New(store, notifier, rand.New(rand.NewSource(1)))

	for i := 0; i < 500; i++ {
		snap := sim.Tick()
		for _, b := range snap.Bins {
			require.GreaterOrEqual(t, b.FillLevel, 0.0)
			require.Less(t, b.FillLevel, 90.0, "bin %s after tick %d", b.ID, i+1)
		}
	}

	assert.Equal(t, 500, notifier.count())
	assert.Equal(t, uint64(501), store.Snapshot().Version)
}

func TestTick_OnlyFillLevelChanges(t *testing.T) {
	original := models.Bin{
		ID: "a", Lat: 1.5, Lng: 2.5, Address: "Main St",
		FillLevel: 10, Capacity: 240, WasteType: "mixed", MaintenanceStatus: "ok",
	}
	store := location.NewBinStore([]models.Bin{original})
	sim := New(store, nil, rand.New(rand.NewSource(9)))

	snap := sim.Tick()
	require.Len(t, snap.Bins, 1)

	got := snap.Bins[0]
	assert.NotEqual(t, original.FillLevel, got.FillLevel)
	got.FillLevel = original.FillLevel
	assert.Equal(t, original, got)
}

func TestTick_EmptyStoreStillNotifies(t *testing.T) {
	store := location.NewBinStore(nil)
	notifier := &recordingNotifier{}
	sim := New(store, notifier, nil)

	snap := sim.Tick()
	assert.Equal(t, 0, snap.Len())
	assert.Equal(t, 1, notifier.count())
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	store := location.NewBinStore([]models.Bin{{ID: "a"}})
	notifier := &recordingNotifier{}
	sim := New(store, notifier, rand.New(rand.NewSource(5)))
	sim.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return notifier.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_DefaultsToFixedInterval(t *testing.T) {
	sim := New(location.NewBinStore(nil), nil, nil)
	assert.Equal(t, 5*time.Second, sim.interval)
	assert.NotNil(t, sim.rng)
}
