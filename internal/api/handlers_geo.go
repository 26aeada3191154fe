// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package api

import (
	"context"
	"net/http"

	"github.com/oceanlens/oceanlens/internal/cache"
	"github.com/oceanlens/oceanlens/internal/logging"
	"github.com/oceanlens/oceanlens/internal/models"
)

// The layer endpoints share one failure policy: a malformed viewport or a
// dead upstream yields 200 with an empty collection, never an error status.
// The map polls these endpoints continuously; an error status would make
// clients drop a whole layer over a transient glitch, while an empty
// collection just leaves the previous frame in place.

// Vessels handles GET /api/vessels. The store read is cheap and the feed
// writes continuously, so this path always reads live and never touches the
// response cache: freshness matters more than upstream cost here.
func (h *Handler) Vessels(w http.ResponseWriter, r *http.Request) {
	box, err := parseBBox(r)
	if err != nil {
		logging.Debug().Err(err).Msg("Rejecting vessel query viewport")
		respondGeoJSON(w, models.EmptyFeatureCollection())
		return
	}

	records := h.store.QueryBBox(box)
	features := make([]models.Feature, 0, len(records))
	for _, rec := range records {
		features = append(features, models.VesselFeature(rec))
	}
	respondGeoJSON(w, models.NewFeatureCollection(features))
}

// AQI handles GET /api/aqi, serving air-quality stations in the viewport.
func (h *Handler) AQI(w http.ResponseWriter, r *http.Request) {
	box, err := parseBBox(r)
	if err != nil {
		logging.Debug().Err(err).Msg("Rejecting AQI query viewport")
		respondGeoJSON(w, models.EmptyFeatureCollection())
		return
	}
	if h.aqi == nil {
		respondGeoJSON(w, models.EmptyFeatureCollection())
		return
	}

	key := cache.BBoxKey(cache.KindAQI, box, h.cfg.Cache.SnapDegrees)
	value, _, err := h.cache.GetOrFetch(r.Context(), cache.KindAQI, key, func(ctx context.Context) (any, error) {
		stations, err := h.aqi.FetchStations(ctx, box)
		if err != nil {
			return nil, err
		}
		features := make([]models.Feature, 0, len(stations))
		for _, st := range stations {
			features = append(features, models.AQIFeature(st))
		}
		return models.NewFeatureCollection(features), nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("AQI upstream fetch failed, serving empty layer")
		respondGeoJSON(w, models.EmptyFeatureCollection())
		return
	}
	respondGeoJSON(w, value)
}

// Waves handles GET /api/waves, serving a grid of wave samples for the viewport.
func (h *Handler) Waves(w http.ResponseWriter, r *http.Request) {
	box, err := parseBBox(r)
	if err != nil {
		logging.Debug().Err(err).Msg("Rejecting wave query viewport")
		respondGeoJSON(w, models.EmptyFeatureCollection())
		return
	}
	if h.waves == nil {
		respondGeoJSON(w, models.EmptyFeatureCollection())
		return
	}

	key := cache.BBoxKey(cache.KindWaves, box, h.cfg.Cache.SnapDegrees)
	value, _, err := h.cache.GetOrFetch(r.Context(), cache.KindWaves, key, func(ctx context.Context) (any, error) {
		samples, err := h.waves.FetchGrid(ctx, box)
		if err != nil {
			return nil, err
		}
		features := make([]models.Feature, 0, len(samples))
		for _, s := range samples {
			features = append(features, models.WaveFeature(s))
		}
		return models.NewFeatureCollection(features), nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("Wave upstream fetch failed, serving empty layer")
		respondGeoJSON(w, models.EmptyFeatureCollection())
		return
	}
	respondGeoJSON(w, value)
}

// WavePoint handles GET /api/wave-point, serving conditions at one location.
// Failure yields a JSON null body, the point-popup equivalent of an empty
// collection.
func (h *Handler) WavePoint(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parsePoint(r)
	if err != nil {
		logging.Debug().Err(err).Msg("Rejecting wave point query")
		respondGeoJSON(w, nil)
		return
	}
	if h.waves == nil {
		respondGeoJSON(w, nil)
		return
	}

	key := cache.PointKey(cache.KindWavePoint, lat, lon, h.cfg.Cache.SnapDegrees)
	value, _, err := h.cache.GetOrFetch(r.Context(), cache.KindWavePoint, key, func(ctx context.Context) (any, error) {
		sample, err := h.waves.FetchPoint(ctx, lat, lon)
		if err != nil {
			return nil, err
		}
		return models.WaveProperties{
			WaveHeight:      sample.WaveHeight,
			WaveDirection:   sample.WaveDirection,
			WavePeriod:      sample.WavePeriod,
			SwellWaveHeight: sample.SwellWaveHeight,
			Condition:       sample.Condition,
		}, nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("Wave point fetch failed, serving null reading")
		respondGeoJSON(w, nil)
		return
	}
	respondGeoJSON(w, value)
}
