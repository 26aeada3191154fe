// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package api

import (
	"net/http"
	"time"

	"github.com/oceanlens/oceanlens/internal/models"
)

// Health handles GET /api/health with the full aggregator status. A dead
// position feed degrades the status but keeps serving: the map still renders
// stale vessels and the other layers are independent of the feed.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	connected := h.ingest != nil && h.ingest.Connected()
	status := "healthy"
	if h.cfg.AIS.Enabled && !connected {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:          status,
		Version:         Version,
		IngestConnected: connected,
		TrackedVessels:  h.store.Size(),
		CacheEntries:    h.cache.Len(),
		Uptime:          time.Since(h.startTime).Seconds(),
	}
	if last, ok := h.store.LastUpdated(); ok {
		health.LastPosition = &last
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: newMetadata(start, false),
	})
}

// HealthLive handles GET /api/health/live. Answering at all means the
// process is alive.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// HealthReady handles GET /api/health/ready. The aggregator is ready as soon
// as it serves HTTP; the feed reconnects on its own and never gates traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
