package api

import (
	"net/http"

	"github.com/randytsao24/binwatch/internal/api/handlers"
	"github.com/randytsao24/binwatch/internal/config"
)

// PushChannel is the websocket hub as seen by the router
type PushChannel interface {
	handlers.Broadcaster
	http.Handler
}

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(cfg *config.Config, store handlers.BinProvider, push PushChannel) http.Handler {
	routes := http.NewServeMux()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(store, push)
	rootHandler := handlers.NewRootHandler()
	binHandler := handlers.NewBinHandler(store, push)

	// Core routes
	routes.HandleFunc("GET /{$}", rootHandler.Index)
	routes.HandleFunc("GET /api", rootHandler.Index)
	routes.HandleFunc("GET /health", healthHandler.Health)

	// Bin routes
	routes.HandleFunc("GET /api/bins", binHandler.ListBins)
	routes.HandleFunc("GET /api/bins/nearest", binHandler.GetNearest)

	// Admin
	routes.HandleFunc("GET /reset-bins", binHandler.Reset)
	routes.HandleFunc("POST /api/admin/reset", binHandler.Reset)

	routes.HandleFunc("/", rootHandler.NotFound)

	// The websocket route bypasses Timeout, which would break the hijack
	mux := http.NewServeMux()
	mux.Handle("GET /ws", push)
	mux.Handle("/", Timeout(cfg.HTTPTimeout)(routes))

	// Apply middleware stack
	handler := Chain(mux,
		RequestID,
		Recovery,
		Logging,
		CORS(cfg.CORSOrigin),
	)

	return handler
}
