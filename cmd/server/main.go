// Package main is the entry point for the binwatch server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/randytsao24/binwatch/internal/api"
	"github.com/randytsao24/binwatch/internal/config"
	"github.com/randytsao24/binwatch/internal/location"
	"github.com/randytsao24/binwatch/internal/realtime"
	"github.com/randytsao24/binwatch/internal/simulation"
)

var (
	port     string // Overrides PORT
	dataPath string // Overrides DATA_PATH
	logLevel string // Overrides LOG_LEVEL
)

// rootCmd loads the dataset and serves until interrupted
var rootCmd = &cobra.Command{
	Use:           "binwatch",
	Short:         "Live waste bin fill levels over websockets",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		if cmd.Flags().Changed("data") {
			cfg.DataPath = dataPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		setupLogging(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&port, "port", "", "HTTP listen port (default from PORT or 3000)")
	rootCmd.Flags().StringVar(&dataPath, "data", "", "Bin dataset: .json, .yaml/.yml or .xlsx (default from DATA_PATH)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("binwatch exited", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func serve(ctx context.Context, cfg *config.Config) error {
	bins, err := location.LoadDataset(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.DataPath, err)
	}
	slog.Info("bins loaded", "count", len(bins), "path", cfg.DataPath)

	store := location.NewBinStore(bins, location.WithNearestCache(cfg.CacheTTL))
	defer store.Close()

	hub := realtime.NewHub(store)
	go hub.Run(ctx)

	sim := simulation.New(store, hub, nil)
	go sim.Run(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(cfg, store, hub),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("binwatch server starting", "port", cfg.Port, "env", cfg.Env,
			"url", "http://localhost:"+cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
