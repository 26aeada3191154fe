// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

// Package main is the entry point for the OceanLens aggregator.
//
// OceanLens combines three live data layers behind one GeoJSON API: vessel
// positions streamed from an AIS WebSocket feed, air-quality stations from a
// station-index upstream, and marine wave conditions from a forecast
// upstream. A web map client queries all three with viewport bounding boxes
// and subscribes to a WebSocket for live position updates.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: load settings from environment variables and config file (Koanf v2)
//  2. Vessel store: in-memory spatial index of the latest position per vessel
//  3. Response cache: unified TTL+LRU cache shared by all layer endpoints
//  4. Upstream clients: AQI and wave fetchers with circuit breakers and rate limits
//  5. WebSocket hub: fanout of live positions to connected map clients
//  6. AIS ingest: resilient WebSocket consumer feeding the store and the hub
//  7. HTTP server: Chi router with the layer endpoints, health probes, and /metrics
//
// All long-running pieces run under a suture supervision tree with three
// layers (data, feed, api) so a crashing feed component restarts without
// disturbing the HTTP server.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables
//   - Config file (config.yaml)
//   - Built-in defaults
//
// The AIS feed requires AIS_API_KEY when AIS_ENABLED=true (the default).
// The AQI and wave layers are optional; when disabled their endpoints serve
// empty collections.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Disconnects the AIS feed and closes WebSocket clients
//
// # Example Usage
//
// Vessel layer only:
//
//	export AIS_API_KEY=your-aisstream-key
//	export AIS_REGIONS="50.0,2.0,54.0,7.0"
//	./oceanlens
//
// All three layers:
//
//	export AIS_API_KEY=your-aisstream-key
//	export AQI_ENABLED=true
//	export AQI_TOKEN=your-waqi-token
//	export WAVES_ENABLED=true
//	./oceanlens
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/oceanlens/oceanlens/internal/api"
	"github.com/oceanlens/oceanlens/internal/cache"
	"github.com/oceanlens/oceanlens/internal/config"
	"github.com/oceanlens/oceanlens/internal/ingest"
	"github.com/oceanlens/oceanlens/internal/logging"
	"github.com/oceanlens/oceanlens/internal/supervisor"
	"github.com/oceanlens/oceanlens/internal/supervisor/services"
	"github.com/oceanlens/oceanlens/internal/upstream"
	"github.com/oceanlens/oceanlens/internal/vessels"
	ws "github.com/oceanlens/oceanlens/internal/websocket"
)

func main() {
	// === CONFIGURATION ===

	cfg, err := config.Load()
	if err != nil {
		logging.Init(logging.Config{Level: "info", Format: "console"})
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Msg("Starting OceanLens with supervisor tree")
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Bool("ais", cfg.AIS.Enabled).
		Bool("aqi", cfg.AQI.Enabled).
		Bool("waves", cfg.Waves.Enabled).
		Msg("Configuration loaded")

	// === DATA LAYER ===

	store := vessels.New(cfg.AIS.StaleAfter)
	responseCache := cache.New(cfg.Cache.Capacity, cfg.Cache.TTL)
	logging.Info().
		Int("capacity", cfg.Cache.Capacity).
		Dur("ttl", cfg.Cache.TTL).
		Float64("snap_degrees", cfg.Cache.SnapDegrees).
		Msg("Response cache initialized")

	// === UPSTREAM CLIENTS ===

	// Handlers treat nil fetchers as disabled layers, so only assign the
	// interfaces when the layer is on.
	var aqiClient api.AQIFetcher
	if cfg.AQI.Enabled {
		aqiClient = upstream.NewAQIClient(cfg.AQI)
		logging.Info().Str("url", cfg.AQI.URL).Msg("AQI layer enabled")
	}
	var waveClient api.WaveFetcher
	if cfg.Waves.Enabled {
		waveClient = upstream.NewWaveClient(cfg.Waves)
		logging.Info().Str("url", cfg.Waves.URL).Msg("Wave layer enabled")
	}

	// === FEED LAYER ===

	hub := ws.NewHub()

	var aisClient *ingest.Client
	var ingestStatus api.IngestStatus
	if cfg.AIS.Enabled {
		aisClient = ingest.New(cfg.AIS, store, hub, ingest.NewDialer())
		ingestStatus = aisClient
		logging.Info().
			Str("url", cfg.AIS.URL).
			Int("regions", len(cfg.AIS.Regions)).
			Msg("AIS ingest enabled")
	} else {
		logging.Warn().Msg("AIS ingest disabled, vessel layer will stay empty")
	}

	// === API LAYER ===

	handler := api.NewHandler(cfg, store, responseCache, aqiClient, waveClient, ingestStatus, hub)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// === SUPERVISOR TREE ===

	treeConfig := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)

	tree.AddDataService(services.NewSweeperService(store, cfg.AIS.SweepInterval))
	tree.AddDataService(services.NewJanitorService(responseCache, cfg.Cache.SweepInterval))

	tree.AddFeedService(services.NewHubService(hub))
	if aisClient != nil {
		tree.AddFeedService(services.NewIngestService(aisClient))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, treeConfig.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === RUN UNTIL SIGNALED ===

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
