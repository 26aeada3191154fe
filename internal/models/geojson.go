// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package models

import "time"

// GeoJSON type definitions for the map client contract.
// Coordinates follow the GeoJSON convention: [lon, lat].

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type Feature struct {
	Type       string   `json:"type"`
	Geometry   Geometry `json:"geometry"`
	Properties any      `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns a collection that serializes with an empty
// (never null) features array, which the map client relies on.
func NewFeatureCollection(features []Feature) *FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

// EmptyFeatureCollection is the defined fallback for malformed input and
// upstream failure: a valid, empty answer instead of an error status.
func EmptyFeatureCollection() *FeatureCollection {
	return NewFeatureCollection(nil)
}

// VesselProperties are the per-feature properties of the vessels layer.
type VesselProperties struct {
	MMSI        int64     `json:"mmsi"`
	Speed       float64   `json:"speed"`
	Course      float64   `json:"course"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	LastUpdated time.Time `json:"last_updated"`
}

// AQIProperties are the per-feature properties of the air-quality layer.
type AQIProperties struct {
	AQI         int       `json:"aqi"`
	Name        string    `json:"name"`
	LastUpdated time.Time `json:"last_updated"`
}

// WaveProperties are the per-feature properties of the wave layer, and the
// body of the single-point wave endpoint.
type WaveProperties struct {
	WaveHeight      float64 `json:"wave_height"`
	WaveDirection   float64 `json:"wave_direction"`
	WavePeriod      float64 `json:"wave_period"`
	SwellWaveHeight float64 `json:"swell_wave_height"`
	Condition       string  `json:"condition"`
}

func pointFeature(lat, lon float64, props any) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Point", Coordinates: []float64{lon, lat}},
		Properties: props,
	}
}

// VesselFeature builds a GeoJSON point feature from a position record.
func VesselFeature(rec PositionRecord) Feature {
	return pointFeature(rec.Lat, rec.Lon, VesselProperties{
		MMSI:        rec.MMSI,
		Speed:       rec.Speed,
		Course:      rec.Course,
		Lat:         rec.Lat,
		Lon:         rec.Lon,
		LastUpdated: rec.LastUpdated,
	})
}

// AQIFeature builds a GeoJSON point feature from a normalized station.
func AQIFeature(st AQIStation) Feature {
	return pointFeature(st.Lat, st.Lon, AQIProperties{
		AQI:         st.AQI,
		Name:        st.Name,
		LastUpdated: st.LastUpdated,
	})
}

// WaveFeature builds a GeoJSON point feature from a wave sample.
func WaveFeature(s WaveSample) Feature {
	return pointFeature(s.Lat, s.Lon, WaveProperties{
		WaveHeight:      s.WaveHeight,
		WaveDirection:   s.WaveDirection,
		WavePeriod:      s.WavePeriod,
		SwellWaveHeight: s.SwellWaveHeight,
		Condition:       s.Condition,
	})
}
