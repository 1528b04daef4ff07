package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "binwatch",
		"description": "Live waste bin fill levels and nearest-bin lookup",
		"version":     "1.0.0",
		"endpoints": map[string]string{
			"GET /":                           "API information",
			"GET /health":                     "Health check",
			"GET /ws":                         "Websocket push channel (initialData, dataUpdate, nearestBin)",
			"GET /api/bins":                   "Current bin snapshot",
			"GET /api/bins/nearest?lat=&lng=": "Nearest bin to a position",
			"GET /reset-bins":                 "Reset all fill levels to zero",
			"POST /api/admin/reset":           "Reset all fill levels to zero",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check the root endpoint (/) for available routes",
	})
}
