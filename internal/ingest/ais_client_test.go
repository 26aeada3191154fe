// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oceanlens/oceanlens/internal/config"
	"github.com/oceanlens/oceanlens/internal/models"
	"github.com/oceanlens/oceanlens/internal/vessels"
)

// fakeConn replays scripted frames, then fails reads.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	idx    int
	wrote  []any
	closed bool
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idx >= len(f.frames) {
		return 0, nil, errors.New("connection reset")
	}
	frame := f.frames[f.idx]
	f.idx++
	return 1, frame, nil
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wrote = append(f.wrote, v)
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeDialer hands out scripted connections, then fails.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	dials int
}

func (d *fakeDialer) DialContext(_ context.Context, _ string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dials >= len(d.conns) {
		return nil, errors.New("dial refused")
	}
	conn := d.conns[d.dials]
	d.dials++
	return conn, nil
}

// recordingHub captures broadcast positions.
type recordingHub struct {
	mu   sync.Mutex
	recs []models.PositionRecord
}

func (h *recordingHub) BroadcastPosition(rec models.PositionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, rec)
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.recs)
}

func testAISConfig() config.AISConfig {
	return config.AISConfig{
		Enabled:           true,
		URL:               "wss://stream.example/v0/stream",
		APIKey:            "test-key",
		Regions:           []string{"50,3,53,6"},
		StaleAfter:        30 * time.Minute,
		SweepInterval:     5 * time.Minute,
		ReconnectMinDelay: time.Millisecond,
		ReconnectMaxDelay: 5 * time.Millisecond,
	}
}

const validPositionFrame = `{
	"MessageType": "PositionReport",
	"MetaData": {"MMSI": 244012012, "latitude": 51.697, "longitude": 4.610, "time_utc": "2026-08-29 10:15:00.000000000 +0000 UTC"},
	"Message": {"PositionReport": {"Sog": 6.3, "Cog": 157.7}}
}`

func TestSubscribeFrame(t *testing.T) {
	store := vessels.New(30 * time.Minute)
	client := New(testAISConfig(), store, nil, nil)
	conn := &fakeConn{}

	if err := client.subscribe(conn); err != nil {
		t.Fatalf("subscribe() error = %v", err)
	}
	if len(conn.wrote) != 1 {
		t.Fatalf("wrote %d frames, want 1", len(conn.wrote))
	}

	frame, ok := conn.wrote[0].(subscribeFrame)
	if !ok {
		t.Fatalf("wrote %T, want subscribeFrame", conn.wrote[0])
	}
	if frame.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", frame.APIKey)
	}
	if len(frame.BoundingBoxes) != 1 {
		t.Fatalf("BoundingBoxes = %v, want 1 box", frame.BoundingBoxes)
	}
	box := frame.BoundingBoxes[0]
	if box[0] != [2]float64{50, 3} || box[1] != [2]float64{53, 6} {
		t.Errorf("box = %v, want [[50 3] [53 6]]", box)
	}
	if len(frame.FilterMessageTypes) != 1 || frame.FilterMessageTypes[0] != "PositionReport" {
		t.Errorf("FilterMessageTypes = %v", frame.FilterMessageTypes)
	}
}

func TestHandleMessageStoresAndBroadcasts(t *testing.T) {
	store := vessels.New(30 * time.Minute)
	hub := &recordingHub{}
	client := New(testAISConfig(), store, hub, nil)

	client.handleMessage([]byte(validPositionFrame))

	rec, ok := store.Get(244012012)
	if !ok {
		t.Fatal("position not stored")
	}
	if rec.Lat != 51.697 || rec.Lon != 4.610 || rec.Speed != 6.3 || rec.Course != 157.7 {
		t.Errorf("stored record = %+v", rec)
	}
	want := time.Date(2026, 8, 29, 10, 15, 0, 0, time.UTC)
	if !rec.LastUpdated.Equal(want) {
		t.Errorf("LastUpdated = %v, want %v", rec.LastUpdated, want)
	}
	if hub.count() != 1 {
		t.Errorf("broadcasts = %d, want 1", hub.count())
	}
}

func TestHandleMessageDropsGarbage(t *testing.T) {
	store := vessels.New(30 * time.Minute)
	hub := &recordingHub{}
	client := New(testAISConfig(), store, hub, nil)

	frames := []string{
		`not json at all`,
		`{"MessageType": "ShipStaticData", "MetaData": {"MMSI": 1}}`,
		`{"MessageType": "PositionReport", "MetaData": {"MMSI": 0, "latitude": 51, "longitude": 4}}`,
		`{"MessageType": "PositionReport", "MetaData": {"MMSI": 7, "latitude": 95, "longitude": 4}}`,
		`{"MessageType": "PositionReport", "MetaData": {"MMSI": 7, "latitude": 51, "longitude": -200}}`,
	}
	for _, frame := range frames {
		client.handleMessage([]byte(frame))
	}

	if store.Size() != 0 {
		t.Errorf("store size = %d, want 0 after garbage", store.Size())
	}
	if hub.count() != 0 {
		t.Errorf("broadcasts = %d, want 0", hub.count())
	}
}

func TestRunOnceConsumesSession(t *testing.T) {
	store := vessels.New(30 * time.Minute)
	conn := &fakeConn{frames: [][]byte{
		[]byte(validPositionFrame),
		[]byte(validPositionFrame),
	}}
	dialer := &fakeDialer{conns: []*fakeConn{conn}}
	client := New(testAISConfig(), store, nil, dialer)

	healthy, err := client.runOnce(context.Background())
	if !healthy {
		t.Error("runOnce() healthy = false, want true after delivered frames")
	}
	if err == nil {
		t.Error("runOnce() error = nil, want the terminal read error")
	}
	if store.Size() != 1 {
		t.Errorf("store size = %d, want 1", store.Size())
	}
	if !conn.closed {
		t.Error("connection not closed after session")
	}
	if client.State() != StateDisconnected {
		t.Errorf("state = %v, want disconnected", client.State())
	}
}

func TestRunOnceDialFailure(t *testing.T) {
	store := vessels.New(30 * time.Minute)
	client := New(testAISConfig(), store, nil, &fakeDialer{})

	healthy, err := client.runOnce(context.Background())
	if healthy || err == nil {
		t.Errorf("runOnce() = %v, %v; want false, dial error", healthy, err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := vessels.New(30 * time.Minute)
	client := New(testAISConfig(), store, nil, &fakeDialer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
	if client.Connected() {
		t.Error("Connected() = true after shutdown")
	}
}

func TestRunReconnects(t *testing.T) {
	store := vessels.New(30 * time.Minute)
	dialer := &fakeDialer{conns: []*fakeConn{
		{frames: [][]byte{[]byte(validPositionFrame)}},
		{frames: [][]byte{[]byte(validPositionFrame)}},
	}}
	client := New(testAISConfig(), store, nil, dialer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		dialer.mu.Lock()
		dials := dialer.dials
		dialer.mu.Unlock()
		if dials >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("second session never dialed")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	<-done

	if store.Size() != 1 {
		t.Errorf("store size = %d, want 1 (same vessel twice)", store.Size())
	}
}

func TestParseFeedTime(t *testing.T) {
	ts := parseFeedTime("2026-08-29 10:15:00.123456789 +0000 UTC")
	want := time.Date(2026, 8, 29, 10, 15, 0, 123456789, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("parseFeedTime() = %v, want %v", ts, want)
	}

	// Malformed stamps fall back to roughly now
	before := time.Now()
	fallback := parseFeedTime("garbage")
	if fallback.Before(before.Add(-time.Second)) || fallback.After(time.Now().Add(time.Second)) {
		t.Errorf("fallback time %v not near now", fallback)
	}
}

func TestJitterBounds(t *testing.T) {
	base := 10 * time.Second
	for i := 0; i < 100; i++ {
		got := jitter(base)
		if got < 8*time.Second || got > 12*time.Second {
			t.Fatalf("jitter(%v) = %v, want within ±20%%", base, got)
		}
	}
}

func TestStateString(t *testing.T) {
	if StateDisconnected.String() != "disconnected" ||
		StateConnecting.String() != "connecting" ||
		StateStreaming.String() != "streaming" {
		t.Error("State.String() labels wrong")
	}
}
