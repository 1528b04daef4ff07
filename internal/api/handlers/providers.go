package handlers

import (
	"github.com/randytsao24/binwatch/internal/cache"
	"github.com/randytsao24/binwatch/internal/models"
)

// BinProvider abstracts the bin store for testability.
type BinProvider interface {
	Snapshot() models.Snapshot
	Nearest(lat, lng float64) (models.NearestBin, bool)
	ResetFillLevels() models.Snapshot
	CacheStats() (cache.Stats, bool)
}

// Broadcaster abstracts the push channel.
type Broadcaster interface {
	Broadcast(snapshot models.Snapshot)
	ClientCount() int
}
