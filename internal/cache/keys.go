// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"math"

	"github.com/goccy/go-json"

	"github.com/oceanlens/oceanlens/internal/models"
)

// Cache key derivation. Coordinates are snapped to a coarse grid before
// hashing so nearby viewports share entries: a map client panning a few
// hundred meters should hit the same key, not mint a new one per pixel.

// Key kinds, one per cacheable endpoint. Vessel responses are never cached;
// that path always reads the live store, so there is no vessel kind.
const (
	KindAQI       = "aqi"
	KindWaves     = "waves"
	KindWavePoint = "wave_point"
)

// Snap quantizes a coordinate to the given grid size in degrees.
func Snap(v, gridDeg float64) float64 {
	if gridDeg <= 0 {
		return v
	}
	return math.Round(v/gridDeg) * gridDeg
}

// SnapBBox quantizes all four bounds of a box.
func SnapBBox(box models.BBox, gridDeg float64) models.BBox {
	return models.BBox{
		MinLat: Snap(box.MinLat, gridDeg),
		MinLon: Snap(box.MinLon, gridDeg),
		MaxLat: Snap(box.MaxLat, gridDeg),
		MaxLon: Snap(box.MaxLon, gridDeg),
	}
}

// BBoxKey derives the cache key for a bounding-box query.
func BBoxKey(kind string, box models.BBox, gridDeg float64) string {
	return keyFor(kind, SnapBBox(box, gridDeg))
}

// PointKey derives the cache key for a single-point query.
func PointKey(kind string, lat, lon, gridDeg float64) string {
	params := struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}{Snap(lat, gridDeg), Snap(lon, gridDeg)}
	return keyFor(kind, params)
}

// keyFor builds "kind:hash" from the canonical JSON of the snapped params.
// The hash is truncated to 16 hex chars; collisions across a 100-entry cache
// are not a realistic concern at that width.
func keyFor(kind string, params any) string {
	payload, err := json.Marshal(params)
	if err != nil {
		// Params are plain float structs; Marshal cannot fail on them.
		return kind + ":unhashable"
	}
	sum := sha256.Sum256(payload)
	return kind + ":" + hex.EncodeToString(sum[:])[:16]
}
