// Package simulation drives the periodic fill-level updates for all bins
package simulation

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/randytsao24/binwatch/internal/models"
)

const (
	// TickInterval is the fixed period between simulation updates
	TickInterval = 5 * time.Second

	maxIncrement = 0.3
	fillCeiling  = 90.0
	bounceFloor  = 85.0
)

// Store is the part of the bin store the simulator writes through
type Store interface {
	Update(fn func(current []models.Bin) []models.Bin) models.Snapshot
}

// Notifier receives every snapshot the simulator publishes
type Notifier interface {
	Broadcast(snapshot models.Snapshot)
}

// Simulator slowly fills bins without ever letting them reach the ceiling.
//
// The random source is only touched inside Store.Update, which serialises
// writers, so a *rand.Rand (not goroutine-safe) can be shared with Tick calls
// from any goroutine.
type Simulator struct {
	store    Store
	notifier Notifier
	rng      *rand.Rand
	interval time.Duration
}

// New creates a simulator. A nil rng gets a time-seeded source.
func New(store Store, notifier Notifier, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		store:    store,
		notifier: notifier,
		rng:      rng,
		interval: TickInterval,
	}
}

// Run ticks every TickInterval until ctx is cancelled
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("simulation started", "interval", s.interval.String())
	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-ctx.Done():
			slog.Info("simulation stopped")
			return
		}
	}
}

// Tick advances every bin once, publishes the new snapshot and returns it
func (s *Simulator) Tick() models.Snapshot {
	snapshot := s.store.Update(func(current []models.Bin) []models.Bin {
		next := make([]models.Bin, len(current))
		for i, bin := range current {
			bin.FillLevel = NextFillLevel(bin.FillLevel, s.rng)
			next[i] = bin
		}
		return next
	})

	slog.Debug("simulation tick", "version", snapshot.Version, "bins", snapshot.Len())
	if s.notifier != nil {
		s.notifier.Broadcast(snapshot)
	}
	return snapshot
}

// NextFillLevel adds a random increment in [0, 0.3). A result at or above
// the ceiling is replaced by a random value in [85, 90) so bins hover just
// below full instead of sticking at the cap.
func NextFillLevel(current float64, rng *rand.Rand) float64 {
	next := current + rng.Float64()*maxIncrement
	if next >= fillCeiling {
		next = bounceFloor + rng.Float64()*(fillCeiling-bounceFloor)
		// float rounding can land exactly on the ceiling
		if next >= fillCeiling {
			next = math.Nextafter(fillCeiling, bounceFloor)
		}
	}
	return next
}
