// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

// Package api provides the HTTP surface of the aggregator: the GeoJSON layer
// endpoints, health probes, and the WebSocket upgrade, routed with Chi.
package api

import (
	"context"
	"time"

	"github.com/oceanlens/oceanlens/internal/cache"
	"github.com/oceanlens/oceanlens/internal/config"
	"github.com/oceanlens/oceanlens/internal/models"
	"github.com/oceanlens/oceanlens/internal/vessels"
	"github.com/oceanlens/oceanlens/internal/websocket"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// AQIFetcher fetches air-quality stations for a bounding box.
type AQIFetcher interface {
	FetchStations(ctx context.Context, box models.BBox) ([]models.AQIStation, error)
}

// WaveFetcher fetches marine wave conditions.
type WaveFetcher interface {
	FetchGrid(ctx context.Context, box models.BBox) ([]models.WaveSample, error)
	FetchPoint(ctx context.Context, lat, lon float64) (models.WaveSample, error)
}

// IngestStatus reports the health of the position feed.
type IngestStatus interface {
	Connected() bool
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	cfg       *config.Config
	store     *vessels.Store
	cache     *cache.Cache
	aqi       AQIFetcher   // nil when the AQI layer is disabled
	waves     WaveFetcher  // nil when the wave layer is disabled
	ingest    IngestStatus // nil when ingestion is disabled
	hub       *websocket.Hub
	startTime time.Time
}

// NewHandler creates the handler set. Upstream clients and the ingest client
// may be nil when their layer is disabled in config; the matching endpoints
// then serve empty collections.
func NewHandler(cfg *config.Config, store *vessels.Store, c *cache.Cache, aqi AQIFetcher, waves WaveFetcher, ingest IngestStatus, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		cache:     c,
		aqi:       aqi,
		waves:     waves,
		ingest:    ingest,
		hub:       hub,
		startTime: time.Now(),
	}
}
