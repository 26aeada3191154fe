// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/oceanlens/oceanlens/internal/models"
)

// parseBBox reads the four bounding-box query parameters. Any missing,
// malformed, out-of-range, or inverted bound is an error; callers answer
// such requests with an empty collection rather than a 4xx, because the map
// client treats a transiently broken viewport as "nothing to draw".
func parseBBox(r *http.Request) (models.BBox, error) {
	minLat, err := parseFloatParam(r, "min_lat")
	if err != nil {
		return models.BBox{}, err
	}
	minLon, err := parseFloatParam(r, "min_lon")
	if err != nil {
		return models.BBox{}, err
	}
	maxLat, err := parseFloatParam(r, "max_lat")
	if err != nil {
		return models.BBox{}, err
	}
	maxLon, err := parseFloatParam(r, "max_lon")
	if err != nil {
		return models.BBox{}, err
	}

	box := models.BBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
	if !box.InRange() {
		return models.BBox{}, fmt.Errorf("bounding box out of range: %+v", box)
	}
	if box.Inverted() {
		return models.BBox{}, fmt.Errorf("bounding box inverted: %+v", box)
	}
	return box, nil
}

// parsePoint reads lat/lon query parameters for the single-point endpoint.
func parsePoint(r *http.Request) (lat, lon float64, err error) {
	lat, err = parseFloatParam(r, "lat")
	if err != nil {
		return 0, 0, err
	}
	lon, err = parseFloatParam(r, "lon")
	if err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("point out of range: %g,%g", lat, lon)
	}
	return lat, lon, nil
}

func parseFloatParam(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, fmt.Errorf("missing query parameter %q", key)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid query parameter %q: %w", key, err)
	}
	return value, nil
}
