// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/oceanlens/oceanlens/internal/config"
	"github.com/oceanlens/oceanlens/internal/logging"
	"github.com/oceanlens/oceanlens/internal/metrics"
	"github.com/oceanlens/oceanlens/internal/models"
)

// AQIClient fetches air-quality stations from a WAQI-compatible map/bounds
// endpoint.
type AQIClient struct {
	baseURL     string
	token       string
	maxStations int
	httpClient  *http.Client
	limiter     *rate.Limiter
	cb          *gobreaker.CircuitBreaker[any]
	now         func() time.Time
}

// NewAQIClient creates the air-quality client from config.
func NewAQIClient(cfg config.AQIConfig) *AQIClient {
	return &AQIClient{
		baseURL:     cfg.URL,
		token:       cfg.Token,
		maxStations: cfg.MaxStations,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cb:          newBreaker("aqi"),
		now:         time.Now,
	}
}

// aqiBoundsResponse mirrors the provider's map/bounds payload. The aqi field
// arrives as a string and is "-" for stations with no current reading.
type aqiBoundsResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		AQI     string  `json:"aqi"`
		Station struct {
			Name string `json:"name"`
			Time string `json:"time"`
		} `json:"station"`
	} `json:"data"`
}

// FetchStations returns the stations inside the bounding box, capped at the
// configured maximum. Stations with no numeric reading are skipped.
func (c *AQIClient) FetchStations(ctx context.Context, box models.BBox) ([]models.AQIStation, error) {
	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.fetchBounds(ctx, box)
	})
	if err != nil {
		metrics.RecordUpstreamRequest("aqi", breakerResult(err), time.Since(start))
		return nil, err
	}
	metrics.RecordUpstreamRequest("aqi", "success", time.Since(start))

	resp, ok := result.(*aqiBoundsResponse)
	if !ok {
		return nil, fmt.Errorf("aqi: unexpected result type %T", result)
	}
	return c.normalize(resp), nil
}

func (c *AQIClient) fetchBounds(ctx context.Context, box models.BBox) (*aqiBoundsResponse, error) {
	endpoint := fmt.Sprintf("%s/map/bounds/", c.baseURL)
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%g,%g,%g,%g", box.MinLat, box.MinLon, box.MaxLat, box.MaxLon))
	params.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("aqi: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aqi: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aqi: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("aqi: read body: %w", err)
	}

	var parsed aqiBoundsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("aqi: decode body: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("aqi: provider status %q", parsed.Status)
	}
	return &parsed, nil
}

// normalize converts raw stations to the domain model, dropping unusable
// entries rather than failing the whole batch.
func (c *AQIClient) normalize(resp *aqiBoundsResponse) []models.AQIStation {
	stations := make([]models.AQIStation, 0, len(resp.Data))
	for _, raw := range resp.Data {
		if len(stations) >= c.maxStations {
			logging.Debug().Int("cap", c.maxStations).Msg("AQI station cap reached, truncating")
			break
		}

		value, err := strconv.Atoi(raw.AQI)
		if err != nil {
			// "-" marks a station without a current reading
			continue
		}
		if raw.Lat < -90 || raw.Lat > 90 || raw.Lon < -180 || raw.Lon > 180 {
			continue
		}

		updated := c.now()
		if ts, err := time.Parse(time.RFC3339, raw.Station.Time); err == nil {
			updated = ts
		}

		stations = append(stations, models.AQIStation{
			AQI:         value,
			Name:        raw.Station.Name,
			Lat:         raw.Lat,
			Lon:         raw.Lon,
			LastUpdated: updated,
		})
	}
	return stations
}
