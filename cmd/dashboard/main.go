package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/quake-dashboard/internal/adapter/http"
	"github.com/couchcryptid/quake-dashboard/internal/adapter/shapefile"
	"github.com/couchcryptid/quake-dashboard/internal/adapter/usgs"
	"github.com/couchcryptid/quake-dashboard/internal/chart"
	"github.com/couchcryptid/quake-dashboard/internal/config"
	"github.com/couchcryptid/quake-dashboard/internal/dashboard"
	"github.com/couchcryptid/quake-dashboard/internal/domain"
	"github.com/couchcryptid/quake-dashboard/internal/feed"
	"github.com/couchcryptid/quake-dashboard/internal/observability"
	"github.com/couchcryptid/quake-dashboard/internal/session"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Charts still render without country outlines.
	basemap, err := shapefile.LoadBasemap(cfg.BasemapPath)
	if err != nil {
		logger.Warn("basemap unavailable, maps will have no boundaries", "path", cfg.BasemapPath, "error", err)
	} else {
		logger.Info("basemap loaded", "path", cfg.BasemapPath, "rings", len(basemap))
	}

	client := usgs.NewClient(cfg.FeedTimeout, cfg.FeedRateLimit, metrics, logger)
	loader := feed.NewLoader(client, domain.DefaultSources(cfg.FeedBaseURL), nil, logger, metrics)
	controller := dashboard.NewController(loader, chart.NewRenderer(basemap), logger, metrics)
	sessions := session.NewStore(cfg.SessionCapacity, cfg.SessionTTL, nil)

	srv := httpadapter.NewServer(cfg.HTTPAddr, controller, sessions, loader, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Expire idle sessions.
	go sessions.RunSweeper(ctx, sweepInterval, func(remaining int) {
		metrics.SessionsActive.Set(float64(remaining))
	})

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
