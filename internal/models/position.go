// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package models

import (
	"fmt"
	"time"
)

// PositionRecord is the last-known position of one tracked vessel.
//
// Exactly one record exists per MMSI at any time (last-write-wins); the
// vessel store owns all instances and hands out copies only.
type PositionRecord struct {
	// MMSI is the Maritime Mobile Service Identity, the stable vessel key.
	MMSI int64 `json:"mmsi"`

	// Lat and Lon are decimal degrees, validated to [-90,90] / [-180,180].
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Speed is speed over ground in knots. Missing values default to 0.
	Speed float64 `json:"speed"`

	// Course is course over ground in degrees [0,360). Missing values default to 0.
	Course float64 `json:"course"`

	// LastUpdated is the time of the most recent observation for this MMSI.
	LastUpdated time.Time `json:"last_updated"`
}

// Validate reports why a record must not enter the vessel store.
// Records failing validation are dropped at ingestion, never stored.
func (p *PositionRecord) Validate() error {
	if p.MMSI <= 0 {
		return fmt.Errorf("missing or invalid mmsi: %d", p.MMSI)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude out of range: %f", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude out of range: %f", p.Lon)
	}
	if p.Speed < 0 {
		return fmt.Errorf("negative speed: %f", p.Speed)
	}
	if p.Course < 0 || p.Course >= 360 {
		return fmt.Errorf("course out of range: %f", p.Course)
	}
	return nil
}

// AQIStation is one air-quality measurement station, normalized from the
// upstream provider payload.
type AQIStation struct {
	AQI         int       `json:"aqi"`
	Name        string    `json:"name"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	LastUpdated time.Time `json:"last_updated"`
}

// WaveSample is one sampled point of marine wave conditions.
type WaveSample struct {
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	WaveHeight      float64 `json:"wave_height"`
	WaveDirection   float64 `json:"wave_direction"`
	WavePeriod      float64 `json:"wave_period"`
	SwellWaveHeight float64 `json:"swell_wave_height"`

	// Condition is a label derived from wave height (calm/moderate/rough/very_rough).
	Condition string `json:"condition"`
}
