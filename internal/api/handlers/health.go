// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	startTime time.Time
	bins      BinProvider
	hub       Broadcaster
}

func NewHealthHandler(bins BinProvider, hub Broadcaster) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		bins:      bins,
		hub:       hub,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	snapshot := h.bins.Snapshot()

	body := map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"uptime":    time.Since(h.startTime).String(),
		"bins":      snapshot.Len(),
		"snapshot":  snapshot.Version,
		"clients":   h.hub.ClientCount(),
	}
	if stats, ok := h.bins.CacheStats(); ok {
		body["nearest_cache"] = stats
	}

	writeJSON(w, http.StatusOK, body)
}
