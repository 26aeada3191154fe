// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package models

import "time"

// APIResponse is the envelope used by the health and operational endpoints.
// Data endpoints (/api/vessels etc.) return raw GeoJSON instead, because the
// map client feeds responses straight into its layer sources.
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response timing information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError describes a failed operational request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// HealthStatus is the body of the /api/health endpoint.
type HealthStatus struct {
	Status          string     `json:"status"`
	Version         string     `json:"version"`
	IngestConnected bool       `json:"ingest_connected"`
	TrackedVessels  int        `json:"tracked_vessels"`
	CacheEntries    int        `json:"cache_entries"`
	LastPosition    *time.Time `json:"last_position,omitempty"`
	Uptime          float64    `json:"uptime_seconds"`
}
