// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package models

// BBox is an axis-aligned rectangle in latitude/longitude used to scope a
// query. Bounds are inclusive. Callers are expected to normalize longitude
// order; an inverted box (min > max) is treated as an empty viewport, not an
// error, because client-supplied viewports can be malformed transiently.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// InRange reports whether all four bounds are within valid geographic ranges.
func (b BBox) InRange() bool {
	return b.MinLat >= -90 && b.MinLat <= 90 &&
		b.MaxLat >= -90 && b.MaxLat <= 90 &&
		b.MinLon >= -180 && b.MinLon <= 180 &&
		b.MaxLon >= -180 && b.MaxLon <= 180
}

// Inverted reports whether the box is out of order (min > max on either axis).
func (b BBox) Inverted() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}

// Contains reports whether the point falls within the inclusive rectangle.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
