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

// ExpiredCleaner matches the response cache's cleanup method.
type ExpiredCleaner interface {
	CleanupExpired() int
}

// JanitorService periodically reclaims expired response cache entries that
// no request has touched since they expired.
type JanitorService struct {
	cache    ExpiredCleaner
	interval time.Duration
	name     string
}

// NewJanitorService creates the janitor with the given interval.
func NewJanitorService(cache ExpiredCleaner, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &JanitorService{
		cache:    cache,
		interval: interval,
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (s *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.cache.CleanupExpired(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("Reclaimed expired cache entries")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *JanitorService) String() string {
	return s.name
}
