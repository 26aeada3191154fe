// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/oceanlens/config.yaml",
	"/etc/oceanlens/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8090,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		AIS: AISConfig{
			Enabled:           true,
			URL:               "wss://stream.aisstream.io/v0/stream",
			APIKey:            "",
			Regions:           []string{"-90,-180,90,180"}, // whole globe
			StaleAfter:        30 * time.Minute,
			SweepInterval:     5 * time.Minute,
			ReconnectMinDelay: 1 * time.Second,
			ReconnectMaxDelay: 60 * time.Second,
		},
		Cache: CacheConfig{
			Capacity:      100,
			TTL:           10 * time.Minute,
			SweepInterval: 5 * time.Minute,
			SnapDegrees:   0.05,
		},
		AQI: AQIConfig{
			Enabled:     false, // opt-in, requires AQI_TOKEN
			URL:         "https://api.waqi.info",
			Token:       "",
			MaxStations: 250,
			Timeout:     10 * time.Second,
			RateLimit:   2.0,
		},
		Waves: WavesConfig{
			Enabled:       false, // opt-in

			URL:           "https://marine-api.open-meteo.com",
			MaxGridPoints: 25,
			Timeout:       10 * time.Second,
			RateLimit:     2.0,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if exists)
//  3. Environment variables: override any setting
//
// Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// Names are mapped to koanf paths via envTransformFunc:
	// AIS_API_KEY -> ais.api_key, HTTP_PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Slice-valued settings arrive from env as delimited strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as delimited
// slices, with the separator each uses. ais.regions uses ';' because each
// region already contains commas.
var sliceConfigPaths = map[string]string{
	"security.cors_origins": ",",
	"ais.regions":           ";",
}

// processSliceFields converts delimited string values to slices for known
// slice fields. Env vars come in as strings but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for path, sep := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, sep)
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - AIS_API_KEY -> ais.api_key
//   - HTTP_PORT -> server.port
//   - CACHE_TTL -> cache.ttl
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",

		// AIS stream mappings
		"ais_enabled":             "ais.enabled",
		"ais_url":                 "ais.url",
		"ais_api_key":             "ais.api_key",
		"ais_regions":             "ais.regions",
		"ais_stale_after":         "ais.stale_after",
		"ais_sweep_interval":      "ais.sweep_interval",
		"ais_reconnect_min_delay": "ais.reconnect_min_delay",
		"ais_reconnect_max_delay": "ais.reconnect_max_delay",

		// Cache mappings
		"cache_capacity":       "cache.capacity",
		"cache_ttl":            "cache.ttl",
		"cache_sweep_interval": "cache.sweep_interval",
		"cache_snap_degrees":   "cache.snap_degrees",

		// Air quality upstream mappings
		"aqi_enabled":      "aqi.enabled",
		"aqi_url":          "aqi.url",
		"aqi_token":        "aqi.token",
		"aqi_max_stations": "aqi.max_stations",
		"aqi_timeout":      "aqi.timeout",
		"aqi_rate_limit":   "aqi.rate_limit",

		// Marine weather upstream mappings
		"waves_enabled":         "waves.enabled",
		"waves_url":             "waves.url",
		"waves_max_grid_points": "waves.max_grid_points",
		"waves_timeout":         "waves.timeout",
		"waves_rate_limit":      "waves.rate_limit",

		// Security mappings
		"cors_origins":        "security.cors_origins",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown variables are dropped rather than guessed at, so unrelated
	// process environment never leaks into the config tree.
	return ""
}
