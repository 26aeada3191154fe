// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

// Package vessels provides the in-memory live position store.
//
// The store keeps the latest known position per vessel (keyed by MMSI) and
// indexes positions in a spatial hash grid so bounding-box queries only scan
// the cells the box overlaps instead of every tracked vessel.
//
// Time complexity:
//   - Upsert: O(1)
//   - QueryBBox: O(k) where k = vessels in overlapped cells
//   - SweepStale: O(n)
package vessels

import (
	"math"
	"sync"
	"time"

	"github.com/oceanlens/oceanlens/internal/metrics"
	"github.com/oceanlens/oceanlens/internal/models"
)

// DefaultCellSizeDeg is the grid cell size in degrees. One degree is roughly
// 111km at the equator, so 0.9 degrees keeps coastal cells around 100km.
const DefaultCellSizeDeg = 0.9

// cellKey is a grid cell coordinate.
type cellKey struct {
	X, Y int
}

// entry is one tracked vessel with its cached cell for fast relocation.
type entry struct {
	record models.PositionRecord
	cell   cellKey
}

// Store is the live vessel position store. Safe for concurrent use; a single
// writer (the ingest pipeline) and many readers (API handlers) is the
// expected pattern.
type Store struct {
	mu       sync.RWMutex
	cells    map[cellKey][]*entry
	vessels  map[int64]*entry
	cellSize float64
	stale    time.Duration

	// now is replaceable in tests to control staleness decisions.
	now func() time.Time
}

// New creates a position store. staleAfter bounds how old a position may be
// before queries stop returning it; the sweeper uses the same horizon to
// reclaim memory.
func New(staleAfter time.Duration) *Store {
	return &Store{
		cells:    make(map[cellKey][]*entry),
		vessels:  make(map[int64]*entry),
		cellSize: DefaultCellSizeDeg,
		stale:    staleAfter,
		now:      time.Now,
	}
}

func (s *Store) keyFor(lat, lon float64) cellKey {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return cellKey{
		X: int(math.Floor(lon / s.cellSize)),
		Y: int(math.Floor(lat / s.cellSize)),
	}
}

// Upsert records a vessel position, replacing any previous position for the
// same MMSI (last write wins). Invalid records are rejected and counted, so a
// corrupt feed message never displaces a good position.
func (s *Store) Upsert(rec models.PositionRecord) error {
	if err := rec.Validate(); err != nil {
		metrics.StoreRejected.Inc()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.vessels[rec.MMSI]; ok {
		s.removeFromCellLocked(existing)
	}

	e := &entry{record: rec, cell: s.keyFor(rec.Lat, rec.Lon)}
	s.cells[e.cell] = append(s.cells[e.cell], e)
	s.vessels[rec.MMSI] = e

	// Writes concentrate where vessels report, so reclaiming stale neighbors
	// in the written cell keeps hot cells clean between full sweeps.
	s.evictStaleInCellLocked(e.cell)

	metrics.StoreUpserts.Inc()
	metrics.StoreVessels.Set(float64(len(s.vessels)))
	return nil
}

// evictStaleInCellLocked drops stale entries from one cell (caller holds mu).
func (s *Store) evictStaleInCellLocked(key cellKey) {
	cell, ok := s.cells[key]
	if !ok {
		return
	}
	kept := cell[:0]
	for _, e := range cell {
		if s.isStaleLocked(e) {
			delete(s.vessels, e.record.MMSI)
			metrics.StoreSwept.Inc()
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		delete(s.cells, key)
	} else {
		s.cells[key] = kept
	}
}

// removeFromCellLocked unlinks an entry from its cell (caller holds mu).
func (s *Store) removeFromCellLocked(e *entry) {
	cell, ok := s.cells[e.cell]
	if !ok {
		return
	}
	for i, other := range cell {
		if other.record.MMSI == e.record.MMSI {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(s.cells, e.cell)
	} else {
		s.cells[e.cell] = cell
	}
}

// Get returns the current position for a vessel, if tracked and fresh.
func (s *Store) Get(mmsi int64) (models.PositionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.vessels[mmsi]
	if !ok || s.isStaleLocked(e) {
		return models.PositionRecord{}, false
	}
	return e.record, true
}

func (s *Store) isStaleLocked(e *entry) bool {
	return s.now().Sub(e.record.LastUpdated) > s.stale
}

// QueryBBox returns fresh positions inside the bounding box. An inverted or
// out-of-range box yields an empty result rather than an error; transient
// client viewports are not worth failing a request over. Staleness is
// applied lazily here so results stay correct between sweeps.
func (s *Store) QueryBBox(box models.BBox) []models.PositionRecord {
	start := time.Now()
	defer func() {
		metrics.StoreQueryDuration.Observe(time.Since(start).Seconds())
	}()

	if box.Inverted() || !box.InRange() {
		return []models.PositionRecord{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	minCell := s.keyFor(box.MinLat, box.MinLon)
	maxCell := s.keyFor(box.MaxLat, box.MaxLon)

	results := []models.PositionRecord{}
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for _, e := range s.cells[cellKey{X: x, Y: y}] {
				if s.isStaleLocked(e) {
					continue
				}
				if box.Contains(e.record.Lat, e.record.Lon) {
					results = append(results, e.record)
				}
			}
		}
	}
	return results
}

// SweepStale removes positions older than the staleness horizon and returns
// how many were dropped. Queries already ignore stale entries; sweeping just
// bounds memory for vessels that stopped reporting.
func (s *Store) SweepStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for mmsi, e := range s.vessels {
		if s.isStaleLocked(e) {
			s.removeFromCellLocked(e)
			delete(s.vessels, mmsi)
			removed++
		}
	}

	if removed > 0 {
		metrics.StoreSwept.Add(float64(removed))
		metrics.StoreVessels.Set(float64(len(s.vessels)))
	}
	return removed
}

// Size returns the number of tracked vessels, including not-yet-swept stale ones.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vessels)
}

// LastUpdated returns the most recent position timestamp across all tracked
// vessels, for health reporting. The bool is false when the store is empty.
func (s *Store) LastUpdated() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	for _, e := range s.vessels {
		if e.record.LastUpdated.After(latest) {
			latest = e.record.LastUpdated
		}
	}
	return latest, !latest.IsZero()
}

// SetClock replaces the time source. Tests use this to age positions without
// sleeping.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
