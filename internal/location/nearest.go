package location

import (
	"math"

	"github.com/randytsao24/binwatch/internal/models"
)

// FindNearest scans bins in order and returns the one closest to (lat, lng).
// Ties keep the earlier bin. Returns false for an empty list.
func FindNearest(bins []models.Bin, lat, lng float64) (models.NearestBin, bool) {
	best := -1
	minDist := math.Inf(1)

	for i := range bins {
		dist := Haversine(lat, lng, bins[i].Lat, bins[i].Lng)
		if dist < minDist {
			minDist = dist
			best = i
		}
	}

	if best < 0 {
		return models.NearestBin{}, false
	}

	return models.NearestBin{
		Bin:            bins[best],
		DistanceMeters: minDist,
		DistanceMiles:  MetersToMiles(minDist),
	}, true
}
