// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package services

import (
	"context"
	"time"

	"github.com/oceanlens/oceanlens/internal/logging"
)

// StaleSweeper matches the vessel store's sweep method.
type StaleSweeper interface {
	SweepStale() int
}

// SweeperService periodically removes stale vessels from the position store.
// Reads already filter stale records lazily; the sweep bounds memory for
// vessels that stopped reporting and will never be read again.
type SweeperService struct {
	store    StaleSweeper
	interval time.Duration
	name     string
}

// NewSweeperService creates the sweeper with the given interval.
func NewSweeperService(store StaleSweeper, interval time.Duration) *SweeperService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SweeperService{
		store:    store,
		interval: interval,
		name:     "vessel-sweeper",
	}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.store.SweepStale(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("Swept stale vessels")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *SweeperService) String() string {
	return s.name
}
