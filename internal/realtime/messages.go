// Package realtime implements the websocket push channel: a hub that fans
// snapshots out to every client and answers per-client nearest-bin queries.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Server to client events
const (
	EventInitialData = "initialData"
	EventDataUpdate  = "dataUpdate"
	EventNearestBin  = "nearestBin"
	EventError       = "error"
)

// EventPositionUpdate is the only client to server event
const EventPositionUpdate = "positionUpdate"

// Outbound is a message pushed to a client. Data is always present on the
// wire; a nearestBin with no result carries "data": null.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// Inbound is a message received from a client
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

var errBadPosition = errors.New("position must be a [latitude, longitude] pair of numbers")

// parsePosition decodes a positionUpdate payload of the form [lat, lng]
func parsePosition(raw json.RawMessage) (lat, lng float64, err error) {
	if len(raw) == 0 {
		return 0, 0, errBadPosition
	}

	var coords []*float64
	if err := json.Unmarshal(raw, &coords); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errBadPosition, err)
	}
	if len(coords) != 2 || coords[0] == nil || coords[1] == nil {
		return 0, 0, errBadPosition
	}

	lat, lng = *coords[0], *coords[1]
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return 0, 0, errBadPosition
	}
	return lat, lng, nil
}
