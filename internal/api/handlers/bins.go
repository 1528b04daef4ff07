package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
)

type BinHandler struct {
	bins BinProvider
	hub  Broadcaster
}

func NewBinHandler(bins BinProvider, hub Broadcaster) *BinHandler {
	return &BinHandler{
		bins: bins,
		hub:  hub,
	}
}

// ListBins returns the current snapshot in load order
func (h *BinHandler) ListBins(w http.ResponseWriter, r *http.Request) {
	snapshot := h.bins.Snapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"version": snapshot.Version,
		"count":   snapshot.Len(),
		"bins":    snapshot.Bins,
	})
}

// GetNearest returns the bin closest to lat/lng coordinates
func (h *BinHandler) GetNearest(w http.ResponseWriter, r *http.Request) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")

	if latStr == "" || lngStr == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "lat and lng query parameters are required",
		})
		return
	}

	lat, err := parseCoordinate(latStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Invalid lat parameter",
		})
		return
	}

	lng, err := parseCoordinate(lngStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Invalid lng parameter",
		})
		return
	}

	nearest, found := h.bins.Nearest(lat, lng)
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"lat":     lat,
			"lng":     lng,
			"bin":     nil,
			"message": "No bins loaded",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"lat":     lat,
		"lng":     lng,
		"bin":     nearest,
	})
}

// Reset empties every bin and pushes the result to all connected clients
func (h *BinHandler) Reset(w http.ResponseWriter, r *http.Request) {
	snapshot := h.bins.ResetFillLevels()
	h.hub.Broadcast(snapshot)

	slog.Info("bins reset", "count", snapshot.Len(), "version", snapshot.Version)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "All bins reset to zero!",
		"count":   snapshot.Len(),
	})
}

func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
