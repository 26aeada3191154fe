// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/oceanlens/oceanlens/internal/cache"
	"github.com/oceanlens/oceanlens/internal/config"
	"github.com/oceanlens/oceanlens/internal/logging"
	"github.com/oceanlens/oceanlens/internal/models"
	"github.com/oceanlens/oceanlens/internal/vessels"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

// fakeAQI scripts the air-quality upstream.
type fakeAQI struct {
	stations []models.AQIStation
	err      error
	calls    int
}

func (f *fakeAQI) FetchStations(_ context.Context, _ models.BBox) ([]models.AQIStation, error) {
	f.calls++
	return f.stations, f.err
}

// fakeWaves scripts the marine upstream.
type fakeWaves struct {
	samples []models.WaveSample
	point   models.WaveSample
	err     error
}

func (f *fakeWaves) FetchGrid(_ context.Context, _ models.BBox) ([]models.WaveSample, error) {
	return f.samples, f.err
}

func (f *fakeWaves) FetchPoint(_ context.Context, _, _ float64) (models.WaveSample, error) {
	return f.point, f.err
}

type fakeIngest struct{ connected bool }

func (f fakeIngest) Connected() bool { return f.connected }

func testConfig() *config.Config {
	return &config.Config{
		AIS: config.AISConfig{
			Enabled:    true,
			StaleAfter: 30 * time.Minute,
		},
		Cache: config.CacheConfig{
			Capacity:    100,
			TTL:         10 * time.Minute,
			SnapDegrees: 0.05,
		},
		Security: config.SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
	}
}

func newTestHandler(aqi AQIFetcher, waves WaveFetcher) (*Handler, *vessels.Store, *cache.Cache) {
	store := vessels.New(30 * time.Minute)
	c := cache.New(100, 10*time.Minute)
	h := NewHandler(testConfig(), store, c, aqi, waves, fakeIngest{connected: true}, nil)
	return h, store, c
}

func decodeCollection(t *testing.T, body []byte) models.FeatureCollection {
	t.Helper()
	var fc models.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		t.Fatalf("response is not a feature collection: %v\n%s", err, body)
	}
	return fc
}

const validBBoxQuery = "min_lat=50&min_lon=3&max_lat=53&max_lon=6"

func TestVesselsReturnsFeatures(t *testing.T) {
	h, store, _ := newTestHandler(nil, nil)
	if err := store.Upsert(models.PositionRecord{
		MMSI: 244012012, Lat: 51.697, Lon: 4.610, Speed: 6.3, Course: 157.7,
		LastUpdated: time.Now(),
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.Vessels(rec, httptest.NewRequest(http.MethodGet, "/api/vessels?"+validBBoxQuery, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	fc := decodeCollection(t, rec.Body.Bytes())
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
	coords := fc.Features[0].Geometry.Coordinates
	if coords[0] != 4.610 || coords[1] != 51.697 {
		t.Errorf("coordinates = %v, want [lon lat] order", coords)
	}
}

func TestVesselsMalformedViewportEmpty(t *testing.T) {
	h, store, _ := newTestHandler(nil, nil)
	_ = store.Upsert(models.PositionRecord{
		MMSI: 244012012, Lat: 51.697, Lon: 4.610, LastUpdated: time.Now(),
	})

	queries := []string{
		"",                                          // all params missing
		"min_lat=50&min_lon=3&max_lat=53",           // one missing
		"min_lat=abc&min_lon=3&max_lat=53&max_lon=6", // non-numeric
		"min_lat=53&min_lon=3&max_lat=50&max_lon=6", // inverted
		"min_lat=-95&min_lon=3&max_lat=53&max_lon=6", // out of range
	}
	for _, q := range queries {
		rec := httptest.NewRecorder()
		h.Vessels(rec, httptest.NewRequest(http.MethodGet, "/api/vessels?"+q, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("query %q: status = %d, want 200", q, rec.Code)
		}
		fc := decodeCollection(t, rec.Body.Bytes())
		if len(fc.Features) != 0 {
			t.Errorf("query %q: features = %d, want 0", q, len(fc.Features))
		}
	}
}

func TestVesselsNeverCached(t *testing.T) {
	h, store, c := newTestHandler(nil, nil)
	_ = store.Upsert(models.PositionRecord{
		MMSI: 244012012, Lat: 51.697, Lon: 4.610, LastUpdated: time.Now(),
	})

	rec := httptest.NewRecorder()
	h.Vessels(rec, httptest.NewRequest(http.MethodGet, "/api/vessels?"+validBBoxQuery, nil))
	if got := len(decodeCollection(t, rec.Body.Bytes()).Features); got != 1 {
		t.Fatalf("features = %d, want 1", got)
	}
	if c.Len() != 0 {
		t.Errorf("cache entries = %d, want 0: vessel responses bypass the cache", c.Len())
	}

	// A position arriving between requests is visible immediately
	_ = store.Upsert(models.PositionRecord{
		MMSI: 244660797, Lat: 52.1, Lon: 4.2, LastUpdated: time.Now(),
	})
	rec = httptest.NewRecorder()
	h.Vessels(rec, httptest.NewRequest(http.MethodGet, "/api/vessels?"+validBBoxQuery, nil))
	if got := len(decodeCollection(t, rec.Body.Bytes()).Features); got != 2 {
		t.Errorf("features = %d, want 2 after live upsert", got)
	}
}

func TestAQIReturnsFeatures(t *testing.T) {
	aqi := &fakeAQI{stations: []models.AQIStation{
		{AQI: 42, Name: "Antwerpen", Lat: 51.2, Lon: 4.4, LastUpdated: time.Now()},
	}}
	h, _, _ := newTestHandler(aqi, nil)

	rec := httptest.NewRecorder()
	h.AQI(rec, httptest.NewRequest(http.MethodGet, "/api/aqi?"+validBBoxQuery, nil))

	fc := decodeCollection(t, rec.Body.Bytes())
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
}

func TestAQIUpstreamFailureEmpty(t *testing.T) {
	aqi := &fakeAQI{err: errors.New("provider down")}
	h, _, c := newTestHandler(aqi, nil)

	rec := httptest.NewRecorder()
	h.AQI(rec, httptest.NewRequest(http.MethodGet, "/api/aqi?"+validBBoxQuery, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on upstream failure", rec.Code)
	}
	fc := decodeCollection(t, rec.Body.Bytes())
	if len(fc.Features) != 0 {
		t.Errorf("features = %d, want 0", len(fc.Features))
	}
	// Failures are never cached, so the next request retries upstream
	if c.Len() != 0 {
		t.Errorf("cache entries = %d after failure, want 0", c.Len())
	}

	aqi.err = nil
	aqi.stations = []models.AQIStation{{AQI: 42, Name: "recovered", Lat: 51, Lon: 4, LastUpdated: time.Now()}}
	rec = httptest.NewRecorder()
	h.AQI(rec, httptest.NewRequest(http.MethodGet, "/api/aqi?"+validBBoxQuery, nil))
	fc = decodeCollection(t, rec.Body.Bytes())
	if len(fc.Features) != 1 {
		t.Errorf("features after recovery = %d, want 1", len(fc.Features))
	}
}

func TestAQIDisabledEmpty(t *testing.T) {
	h, _, _ := newTestHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.AQI(rec, httptest.NewRequest(http.MethodGet, "/api/aqi?"+validBBoxQuery, nil))

	fc := decodeCollection(t, rec.Body.Bytes())
	if len(fc.Features) != 0 {
		t.Errorf("features = %d with no AQI client, want 0", len(fc.Features))
	}
}

func TestWavesReturnsFeatures(t *testing.T) {
	waves := &fakeWaves{samples: []models.WaveSample{
		{Lat: 51, Lon: 4, WaveHeight: 1.4, WavePeriod: 6.5, Condition: "moderate"},
	}}
	h, _, _ := newTestHandler(nil, waves)

	rec := httptest.NewRecorder()
	h.Waves(rec, httptest.NewRequest(http.MethodGet, "/api/waves?"+validBBoxQuery, nil))

	fc := decodeCollection(t, rec.Body.Bytes())
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
}

func TestWavesUpstreamFailureEmpty(t *testing.T) {
	waves := &fakeWaves{err: errors.New("marine api down")}
	h, _, _ := newTestHandler(nil, waves)

	rec := httptest.NewRecorder()
	h.Waves(rec, httptest.NewRequest(http.MethodGet, "/api/waves?"+validBBoxQuery, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	fc := decodeCollection(t, rec.Body.Bytes())
	if len(fc.Features) != 0 {
		t.Errorf("features = %d, want 0", len(fc.Features))
	}
}

func TestWavePointReturnsReading(t *testing.T) {
	waves := &fakeWaves{point: models.WaveSample{
		Lat: 43, Lon: -70, WaveHeight: 1.4, WaveDirection: 210, WavePeriod: 6.5,
		SwellWaveHeight: 0.9, Condition: "moderate",
	}}
	h, _, _ := newTestHandler(nil, waves)

	rec := httptest.NewRecorder()
	h.WavePoint(rec, httptest.NewRequest(http.MethodGet, "/api/wave-point?lat=43&lon=-70", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var props models.WaveProperties
	if err := json.Unmarshal(rec.Body.Bytes(), &props); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if props.WaveHeight != 1.4 || props.Condition != "moderate" {
		t.Errorf("props = %+v", props)
	}
}

func TestWavePointFailureNull(t *testing.T) {
	waves := &fakeWaves{err: errors.New("marine api down")}
	h, _, _ := newTestHandler(nil, waves)

	cases := []string{
		"lat=43&lon=-70", // upstream failure
		"lat=43",         // missing lon
		"lat=95&lon=0",   // out of range
	}
	for _, q := range cases {
		rec := httptest.NewRecorder()
		h.WavePoint(rec, httptest.NewRequest(http.MethodGet, "/api/wave-point?"+q, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("query %q: status = %d, want 200", q, rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "null" {
			t.Errorf("query %q: body = %s, want null", q, body)
		}
	}
}

func TestLayerResponsesNeverNullFeatures(t *testing.T) {
	h, _, _ := newTestHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.Vessels(rec, httptest.NewRequest(http.MethodGet, "/api/vessels?"+validBBoxQuery, nil))

	if !strings.Contains(rec.Body.String(), `"features":[]`) {
		t.Errorf("empty collection must serialize features as [], got %s", rec.Body.String())
	}
}
