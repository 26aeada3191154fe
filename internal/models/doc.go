// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

// Package models defines the shared data types that flow between the
// ingestion pipeline, the stores, and the HTTP surface: position records,
// bounding boxes, GeoJSON feature types, and the API response envelope.
//
// Every external payload (AIS frames, upstream provider JSON) is normalized
// into these strict types at the boundary; nothing downstream ever sees an
// unvalidated shape.
package models
