// Package models defines shared data types
package models

// Bin represents a single waste bin and its current state
type Bin struct {
	ID                string  `json:"id" yaml:"id"`
	Lat               float64 `json:"lat" yaml:"lat"`
	Lng               float64 `json:"lng" yaml:"lng"`
	Address           string  `json:"address" yaml:"address"`
	FillLevel         float64 `json:"fill_level" yaml:"fill_level"`
	Capacity          float64 `json:"capacity" yaml:"capacity"`
	WasteType         string  `json:"wasteType" yaml:"wasteType"`
	MaintenanceStatus string  `json:"maintenanceStatus" yaml:"maintenanceStatus"`
}

// NearestBin is a Bin with its distance from a query point
type NearestBin struct {
	Bin
	DistanceMeters float64 `json:"distance"`
	DistanceMiles  float64 `json:"distance_miles"`
}

// Snapshot is one complete, immutable view of the bin store.
// Bins must not be modified once the snapshot is published.
type Snapshot struct {
	Version uint64
	Bins    []Bin
}

// Len returns the number of bins in the snapshot
func (s Snapshot) Len() int {
	return len(s.Bins)
}
