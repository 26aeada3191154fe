// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oceanlens/oceanlens/internal/cache"
	"github.com/oceanlens/oceanlens/internal/vessels"
)

func newTestRouter() http.Handler {
	store := vessels.New(30 * time.Minute)
	c := cache.New(100, 10*time.Minute)
	h := NewHandler(testConfig(), store, c, nil, nil, fakeIngest{connected: true}, nil)
	return NewRouter(h).Setup()
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/vessels?min_lat=50&min_lon=3&max_lat=53&max_lon=6", http.StatusOK},
		{"/api/vessels", http.StatusOK}, // malformed viewport still answers 200
		{"/api/aqi?min_lat=50&min_lon=3&max_lat=53&max_lon=6", http.StatusOK},
		{"/api/waves?min_lat=50&min_lon=3&max_lat=53&max_lon=6", http.StatusOK},
		{"/api/wave-point?lat=43&lon=-70", http.StatusOK},
		{"/api/health", http.StatusOK},
		{"/api/health/live", http.StatusOK},
		{"/api/health/ready", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.wantStatus {
			t.Errorf("GET %s: status = %d, want %d", tt.path, rec.Code, tt.wantStatus)
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRouterSecurityHeaders(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vessels", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options header missing")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("X-Frame-Options header missing")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/vessels", nil)
	req.Header.Set("Origin", "https://map.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("preflight did not set Access-Control-Allow-Origin")
	}
}

func TestRouterRateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimitDisabled = true
	store := vessels.New(30 * time.Minute)
	h := NewHandler(cfg, store, cache.New(100, 10*time.Minute), nil, nil, nil, nil)
	router := NewRouter(h).Setup()

	// Well past the default 100/min budget; all must succeed
	for i := 0; i < 150; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vessels", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d with rate limiting disabled", i, rec.Code)
		}
	}
}

func TestRouterGeoJSONContentType(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vessels?min_lat=50&min_lon=3&max_lat=53&max_lon=6", nil))
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "geo+json") {
		t.Errorf("Content-Type = %q, want application/geo+json", ct)
	}
}
