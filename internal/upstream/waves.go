// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package upstream

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/oceanlens/oceanlens/internal/config"
	"github.com/oceanlens/oceanlens/internal/metrics"
	"github.com/oceanlens/oceanlens/internal/models"
)

// WaveClient fetches marine conditions from an Open-Meteo-compatible marine
// API. Bounding-box requests sample a coarse grid of points instead of every
// pixel the client could ask about; the provider prices per location, and
// wave fields vary slowly enough that a grid reads fine on a map.
type WaveClient struct {
	baseURL       string
	maxGridPoints int
	httpClient    *http.Client
	limiter       *rate.Limiter
	cb            *gobreaker.CircuitBreaker[any]
}

// NewWaveClient creates the marine-weather client from config.
func NewWaveClient(cfg config.WavesConfig) *WaveClient {
	return &WaveClient{
		baseURL:       cfg.URL,
		maxGridPoints: cfg.MaxGridPoints,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cb:            newBreaker("waves"),
	}
}

// waveVariables are the current-conditions fields requested per location.
const waveVariables = "wave_height,wave_direction,wave_period,swell_wave_height"

// marineResponse is one location's payload from the marine API.
type marineResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		WaveHeight      float64 `json:"wave_height"`
		WaveDirection   float64 `json:"wave_direction"`
		WavePeriod      float64 `json:"wave_period"`
		SwellWaveHeight float64 `json:"swell_wave_height"`
	} `json:"current"`
}

// FetchGrid samples wave conditions on a grid covering the bounding box. The
// grid is sized so at most maxGridPoints locations go upstream in a single
// batched request.
func (c *WaveClient) FetchGrid(ctx context.Context, box models.BBox) ([]models.WaveSample, error) {
	points := gridPoints(box, c.maxGridPoints)
	if len(points) == 0 {
		return []models.WaveSample{}, nil
	}

	start := time.Now()
	result, err := c.cb.Execute(func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.fetchLocations(ctx, points)
	})
	if err != nil {
		metrics.RecordUpstreamRequest("waves", breakerResult(err), time.Since(start))
		return nil, err
	}
	metrics.RecordUpstreamRequest("waves", "success", time.Since(start))

	responses, ok := result.([]marineResponse)
	if !ok {
		return nil, fmt.Errorf("waves: unexpected result type %T", result)
	}

	samples := make([]models.WaveSample, 0, len(responses))
	for _, resp := range responses {
		samples = append(samples, toSample(resp))
	}
	return samples, nil
}

// FetchPoint returns wave conditions for a single location.
func (c *WaveClient) FetchPoint(ctx context.Context, lat, lon float64) (models.WaveSample, error) {
	start := time.Now()
	result, err := c.cb.Execute(func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.fetchLocations(ctx, []gridPoint{{Lat: lat, Lon: lon}})
	})
	if err != nil {
		metrics.RecordUpstreamRequest("waves", breakerResult(err), time.Since(start))
		return models.WaveSample{}, err
	}
	metrics.RecordUpstreamRequest("waves", "success", time.Since(start))

	responses, ok := result.([]marineResponse)
	if !ok || len(responses) == 0 {
		return models.WaveSample{}, fmt.Errorf("waves: empty response")
	}
	return toSample(responses[0]), nil
}

type gridPoint struct {
	Lat float64
	Lon float64
}

// gridPoints lays an n-by-n grid of cell centers over the box, with n chosen
// so the total stays within maxPoints.
func gridPoints(box models.BBox, maxPoints int) []gridPoint {
	if box.Inverted() || !box.InRange() || maxPoints < 1 {
		return nil
	}

	n := int(math.Floor(math.Sqrt(float64(maxPoints))))
	if n < 1 {
		n = 1
	}

	latStep := (box.MaxLat - box.MinLat) / float64(n)
	lonStep := (box.MaxLon - box.MinLon) / float64(n)

	points := make([]gridPoint, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			points = append(points, gridPoint{
				Lat: box.MinLat + (float64(i)+0.5)*latStep,
				Lon: box.MinLon + (float64(j)+0.5)*lonStep,
			})
		}
	}
	return points
}

// fetchLocations requests current conditions for all points in one call.
// The provider returns a bare object for a single location and an array for
// several, so decoding sniffs the first byte.
func (c *WaveClient) fetchLocations(ctx context.Context, points []gridPoint) ([]marineResponse, error) {
	lats := make([]string, len(points))
	lons := make([]string, len(points))
	for i, p := range points {
		lats[i] = strconv.FormatFloat(p.Lat, 'f', 4, 64)
		lons[i] = strconv.FormatFloat(p.Lon, 'f', 4, 64)
	}

	params := url.Values{}
	params.Set("latitude", strings.Join(lats, ","))
	params.Set("longitude", strings.Join(lons, ","))
	params.Set("current", waveVariables)

	endpoint := fmt.Sprintf("%s/v1/marine?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("waves: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("waves: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("waves: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("waves: read body: %w", err)
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var many []marineResponse
		if err := json.Unmarshal(body, &many); err != nil {
			return nil, fmt.Errorf("waves: decode body: %w", err)
		}
		return many, nil
	}

	var one marineResponse
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, fmt.Errorf("waves: decode body: %w", err)
	}
	return []marineResponse{one}, nil
}

func toSample(resp marineResponse) models.WaveSample {
	return models.WaveSample{
		Lat:             resp.Latitude,
		Lon:             resp.Longitude,
		WaveHeight:      resp.Current.WaveHeight,
		WaveDirection:   resp.Current.WaveDirection,
		WavePeriod:      resp.Current.WavePeriod,
		SwellWaveHeight: resp.Current.SwellWaveHeight,
		Condition:       ConditionLabel(resp.Current.WaveHeight),
	}
}

// ConditionLabel maps significant wave height in meters to a sea-state label
// following the Douglas scale.
func ConditionLabel(waveHeightM float64) string {
	switch {
	case waveHeightM < 0.1:
		return "calm"
	case waveHeightM < 0.5:
		return "smooth"
	case waveHeightM < 1.25:
		return "slight"
	case waveHeightM < 2.5:
		return "moderate"
	case waveHeightM < 4.0:
		return "rough"
	case waveHeightM < 6.0:
		return "very rough"
	case waveHeightM < 9.0:
		return "high"
	default:
		return "very high"
	}
}
