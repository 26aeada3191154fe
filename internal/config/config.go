// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	AIS      AISConfig      `koanf:"ais"`
	Cache    CacheConfig    `koanf:"cache"`
	AQI      AQIConfig      `koanf:"aqi"`
	Waves    WavesConfig    `koanf:"waves"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - HTTP_PORT: listen port (default: 8090)
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: read/write timeout (default: 30s)
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// AISConfig holds the AIS position stream settings.
//
// Regions are comma-separated "min_lat,min_lon,max_lat,max_lon" strings, one
// bounding box per entry, forwarded to the stream subscription so the feed
// only carries vessels inside areas of interest.
//
// Environment variables:
//   - AIS_ENABLED: enable the ingest pipeline (default: true)
//   - AIS_URL: stream endpoint (default: wss://stream.aisstream.io/v0/stream)
//   - AIS_API_KEY: stream API key (required when enabled)
//   - AIS_REGIONS: comma-separated boxes, entries separated by ';'
//   - AIS_STALE_AFTER: drop positions older than this from query results
//   - AIS_SWEEP_INTERVAL: how often stale positions are evicted from memory
type AISConfig struct {
	Enabled           bool          `koanf:"enabled"`
	URL               string        `koanf:"url"`
	APIKey            string        `koanf:"api_key"`
	Regions           []string      `koanf:"regions"`
	StaleAfter        time.Duration `koanf:"stale_after"`
	SweepInterval     time.Duration `koanf:"sweep_interval"`
	ReconnectMinDelay time.Duration `koanf:"reconnect_min_delay"`
	ReconnectMaxDelay time.Duration `koanf:"reconnect_max_delay"`
}

// Region is one parsed AIS subscription bounding box.
type Region struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// ParseRegions parses the configured region strings. Called after Validate()
// so malformed entries have already been rejected.
func (c AISConfig) ParseRegions() ([]Region, error) {
	regions := make([]Region, 0, len(c.Regions))
	for _, raw := range c.Regions {
		r, err := parseRegion(raw)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

func parseRegion(raw string) (Region, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region %q: expected 4 comma-separated values", raw)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", raw, err)
		}
		vals[i] = v
	}
	r := Region{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}
	if r.MinLat < -90 || r.MaxLat > 90 || r.MinLon < -180 || r.MaxLon > 180 {
		return Region{}, fmt.Errorf("region %q: coordinates out of range", raw)
	}
	if r.MinLat > r.MaxLat || r.MinLon > r.MaxLon {
		return Region{}, fmt.Errorf("region %q: min bound exceeds max bound", raw)
	}
	return r, nil
}

// CacheConfig holds the unified response cache settings.
//
// Environment variables:
//   - CACHE_CAPACITY: max entries before LRU eviction (default: 100)
//   - CACHE_TTL: entry lifetime (default: 10m)
//   - CACHE_SWEEP_INTERVAL: expired-entry cleanup cadence (default: 5m)
//   - CACHE_SNAP_DEGREES: coordinate quantum for cache keys (default: 0.05)
type CacheConfig struct {
	Capacity      int           `koanf:"capacity"`
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	SnapDegrees   float64       `koanf:"snap_degrees"`
}

// AQIConfig holds the air-quality upstream settings.
type AQIConfig struct {
	Enabled     bool          `koanf:"enabled"`
	URL         string        `koanf:"url"`
	Token       string        `koanf:"token"`
	MaxStations int           `koanf:"max_stations"`
	Timeout     time.Duration `koanf:"timeout"`
	RateLimit   float64       `koanf:"rate_limit"` // requests per second
}

// WavesConfig holds the marine-weather upstream settings.
type WavesConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	MaxGridPoints int           `koanf:"max_grid_points"`
	Timeout       time.Duration `koanf:"timeout"`
	RateLimit     float64       `koanf:"rate_limit"` // requests per second
}

// SecurityConfig holds CORS and rate-limit settings for the HTTP API.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAIS(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateUpstreams(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateAIS() error {
	if !c.AIS.Enabled {
		return nil
	}
	if c.AIS.URL == "" {
		return fmt.Errorf("AIS_URL is required when AIS_ENABLED=true")
	}
	if !strings.HasPrefix(c.AIS.URL, "ws://") && !strings.HasPrefix(c.AIS.URL, "wss://") {
		return fmt.Errorf("AIS_URL must be a ws:// or wss:// URL")
	}
	if c.AIS.APIKey == "" {
		return fmt.Errorf("AIS_API_KEY is required when AIS_ENABLED=true")
	}
	if c.AIS.StaleAfter <= 0 {
		return fmt.Errorf("AIS_STALE_AFTER must be positive")
	}
	if c.AIS.SweepInterval <= 0 {
		return fmt.Errorf("AIS_SWEEP_INTERVAL must be positive")
	}
	if c.AIS.ReconnectMinDelay <= 0 || c.AIS.ReconnectMaxDelay < c.AIS.ReconnectMinDelay {
		return fmt.Errorf("AIS reconnect delays must be positive with min <= max")
	}
	if _, err := c.AIS.ParseRegions(); err != nil {
		return fmt.Errorf("AIS_REGIONS invalid: %w", err)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("CACHE_CAPACITY must be at least 1, got %d", c.Cache.Capacity)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must be positive")
	}
	if c.Cache.SnapDegrees <= 0 {
		return fmt.Errorf("CACHE_SNAP_DEGREES must be positive")
	}
	return nil
}

func (c *Config) validateUpstreams() error {
	if c.AQI.Enabled {
		if c.AQI.URL == "" {
			return fmt.Errorf("AQI_URL is required when AQI_ENABLED=true")
		}
		if c.AQI.Token == "" {
			return fmt.Errorf("AQI_TOKEN is required when AQI_ENABLED=true")
		}
		if c.AQI.MaxStations < 1 {
			return fmt.Errorf("AQI_MAX_STATIONS must be at least 1")
		}
	}
	if c.Waves.Enabled {
		if c.Waves.URL == "" {
			return fmt.Errorf("WAVES_URL is required when WAVES_ENABLED=true")
		}
		if c.Waves.MaxGridPoints < 1 {
			return fmt.Errorf("WAVES_MAX_GRID_POINTS must be at least 1")
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
