// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package services

import (
	"context"
)

// StreamConsumer matches the ingest client's Run method.
type StreamConsumer interface {
	Run(ctx context.Context) error
}

// IngestService wraps the AIS stream consumer as a supervised service. The
// consumer already reconnects internally; supervision only matters if the
// whole loop panics or exits unexpectedly.
type IngestService struct {
	client StreamConsumer
	name   string
}

// NewIngestService creates the ingest service wrapper.
func NewIngestService(client StreamConsumer) *IngestService {
	return &IngestService{
		client: client,
		name:   "ais-ingest",
	}
}

// Serve implements suture.Service.
func (s *IngestService) Serve(ctx context.Context) error {
	return s.client.Run(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (s *IngestService) String() string {
	return s.name
}
