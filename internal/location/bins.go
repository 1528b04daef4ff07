// Package location handles bin storage and nearest-bin lookups
package location

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randytsao24/binwatch/internal/cache"
	"github.com/randytsao24/binwatch/internal/models"
)

// BinStore holds the current bin snapshot. Readers load the snapshot pointer
// without locking; writers build a fresh slice and swap it in, serialised by
// writeMu so a tick and a reset cannot overwrite each other.
type BinStore struct {
	current atomic.Pointer[models.Snapshot]
	writeMu sync.Mutex
	nearest *cache.Cache[nearestEntry]
}

// maxNearestEntries bounds the nearest cache, since keys come from client
// supplied coordinates
const maxNearestEntries = 4096

type nearestEntry struct {
	bin   models.NearestBin
	found bool
}

// StoreOption configures a BinStore
type StoreOption func(*BinStore)

// WithNearestCache memoises nearest lookups per snapshot version for ttl.
// At most maxNearestEntries positions are kept. A non-positive ttl disables
// the cache.
func WithNearestCache(ttl time.Duration) StoreOption {
	return func(s *BinStore) {
		if ttl > 0 {
			s.nearest = cache.NewBounded[nearestEntry](ttl, maxNearestEntries)
		}
	}
}

// NewBinStore creates a store whose first snapshot holds bins in the given order
func NewBinStore(bins []models.Bin, opts ...StoreOption) *BinStore {
	s := &BinStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&models.Snapshot{Version: 1, Bins: cloneBins(bins)})
	return s
}

// Close stops the nearest cache's cleanup goroutine, if any
func (s *BinStore) Close() {
	if s.nearest != nil {
		s.nearest.Close()
	}
}

// Snapshot returns the current snapshot. The returned bins must not be modified.
func (s *BinStore) Snapshot() models.Snapshot {
	return *s.current.Load()
}

// Count returns the number of bins in the current snapshot
func (s *BinStore) Count() int {
	return s.current.Load().Len()
}

// Update replaces the snapshot with the result of fn. fn receives the current
// bins read-only and must return a newly allocated slice.
func (s *BinStore) Update(fn func(current []models.Bin) []models.Bin) models.Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.current.Load()
	next := &models.Snapshot{
		Version: old.Version + 1,
		Bins:    fn(old.Bins),
	}
	s.current.Store(next)
	return *next
}

// ReplaceAll swaps in a copy of bins as the new snapshot
func (s *BinStore) ReplaceAll(bins []models.Bin) models.Snapshot {
	replacement := cloneBins(bins)
	return s.Update(func([]models.Bin) []models.Bin {
		return replacement
	})
}

// ResetFillLevels sets every bin's fill level to zero
func (s *BinStore) ResetFillLevels() models.Snapshot {
	return s.Update(func(current []models.Bin) []models.Bin {
		next := cloneBins(current)
		for i := range next {
			next[i].FillLevel = 0
		}
		return next
	})
}

// Nearest returns the bin closest to (lat, lng) in the current snapshot.
// found is false when the store is empty.
func (s *BinStore) Nearest(lat, lng float64) (models.NearestBin, bool) {
	snap := s.current.Load()

	if s.nearest == nil {
		return FindNearest(snap.Bins, lat, lng)
	}

	key := strconv.FormatUint(snap.Version, 10) + ":" +
		strconv.FormatFloat(lat, 'g', -1, 64) + "," +
		strconv.FormatFloat(lng, 'g', -1, 64)
	entry := s.nearest.GetOrSet(key, func() nearestEntry {
		bin, found := FindNearest(snap.Bins, lat, lng)
		return nearestEntry{bin: bin, found: found}
	})
	return entry.bin, entry.found
}

// CacheStats reports nearest cache counters; ok is false when caching is off
func (s *BinStore) CacheStats() (stats cache.Stats, ok bool) {
	if s.nearest == nil {
		return cache.Stats{}, false
	}
	return s.nearest.Stats(), true
}

func cloneBins(bins []models.Bin) []models.Bin {
	out := make([]models.Bin, len(bins))
	copy(out, bins)
	return out
}
