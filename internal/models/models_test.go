// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestPositionRecordValidate(t *testing.T) {
	valid := PositionRecord{
		MMSI:        244012012,
		Lat:         51.697,
		Lon:         4.610,
		Speed:       12.3,
		Course:      271.5,
		LastUpdated: time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*PositionRecord)
	}{
		{"zero mmsi", func(p *PositionRecord) { p.MMSI = 0 }},
		{"negative mmsi", func(p *PositionRecord) { p.MMSI = -1 }},
		{"lat too high", func(p *PositionRecord) { p.Lat = 90.001 }},
		{"lat too low", func(p *PositionRecord) { p.Lat = -90.001 }},
		{"lon too high", func(p *PositionRecord) { p.Lon = 180.001 }},
		{"lon too low", func(p *PositionRecord) { p.Lon = -180.001 }},
		{"negative speed", func(p *PositionRecord) { p.Speed = -0.1 }},
		{"course 360", func(p *PositionRecord) { p.Course = 360 }},
		{"negative course", func(p *PositionRecord) { p.Course = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			if err := rec.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	// Boundary coordinates are inclusive.
	edge := valid
	edge.Lat, edge.Lon, edge.Course = 90, -180, 0
	if err := edge.Validate(); err != nil {
		t.Errorf("Validate() on boundary = %v, want nil", err)
	}
}

func TestBBoxInRange(t *testing.T) {
	tests := []struct {
		name string
		box  BBox
		want bool
	}{
		{"typical", BBox{50, 3, 53, 6}, true},
		{"full globe", BBox{-90, -180, 90, 180}, true},
		{"lat beyond pole", BBox{50, 3, 91, 6}, false},
		{"lon beyond antimeridian", BBox{50, -181, 53, 6}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.InRange(); got != tt.want {
				t.Errorf("InRange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBBoxInverted(t *testing.T) {
	if (BBox{50, 3, 53, 6}).Inverted() {
		t.Error("ordered box reported inverted")
	}
	if !(BBox{53, 3, 50, 6}).Inverted() {
		t.Error("lat-inverted box not reported")
	}
	if !(BBox{50, 6, 53, 3}).Inverted() {
		t.Error("lon-inverted box not reported")
	}
}

func TestBBoxContains(t *testing.T) {
	box := BBox{50, 3, 53, 6}
	if !box.Contains(51.5, 4.5) {
		t.Error("interior point not contained")
	}
	if !box.Contains(50, 3) || !box.Contains(53, 6) {
		t.Error("boundary points not contained, bounds are inclusive")
	}
	if box.Contains(49.999, 4.5) || box.Contains(51.5, 6.001) {
		t.Error("exterior point contained")
	}
}

func TestFeatureCollectionNeverNull(t *testing.T) {
	for _, fc := range []*FeatureCollection{
		NewFeatureCollection(nil),
		EmptyFeatureCollection(),
	} {
		body, err := json.Marshal(fc)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if !strings.Contains(string(body), `"features":[]`) {
			t.Errorf("serialized collection = %s, want empty features array", body)
		}
	}
}

func TestVesselFeatureCoordinateOrder(t *testing.T) {
	f := VesselFeature(PositionRecord{MMSI: 1, Lat: 51.697, Lon: 4.610})
	// GeoJSON order is [lon, lat]
	if f.Geometry.Coordinates[0] != 4.610 || f.Geometry.Coordinates[1] != 51.697 {
		t.Errorf("coordinates = %v, want [4.610 51.697]", f.Geometry.Coordinates)
	}
	if f.Geometry.Type != "Point" || f.Type != "Feature" {
		t.Errorf("unexpected feature envelope: %+v", f)
	}
}
