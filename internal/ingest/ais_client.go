// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

// Package ingest runs the AIS position stream pipeline.
//
// A single long-lived WebSocket subscription delivers vessel position
// reports. Each report is validated and upserted into the vessel store, then
// fanned out to live map clients. The connection reconnects forever with
// jittered exponential backoff; a dead feed degrades the map to stale data,
// it never takes the process down.
package ingest

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/oceanlens/oceanlens/internal/config"
	"github.com/oceanlens/oceanlens/internal/logging"
	"github.com/oceanlens/oceanlens/internal/metrics"
	"github.com/oceanlens/oceanlens/internal/models"
	"github.com/oceanlens/oceanlens/internal/validation"
	"github.com/oceanlens/oceanlens/internal/vessels"
)

// State is the connection state of the ingest pipeline.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	default:
		return "disconnected"
	}
}

// readDeadline bounds how long a silent connection is trusted before the
// read errors out and the loop reconnects.
const readDeadline = 60 * time.Second

// Broadcaster receives every accepted position for fanout to live clients.
type Broadcaster interface {
	BroadcastPosition(rec models.PositionRecord)
}

// Client is the AIS stream consumer.
type Client struct {
	cfg    config.AISConfig
	store  *vessels.Store
	hub    Broadcaster // optional, may be nil
	dialer Dialer
	state  atomic.Int32
	logger zerolog.Logger
}

// New creates the ingest client. hub may be nil when live fanout is disabled.
func New(cfg config.AISConfig, store *vessels.Store, hub Broadcaster, dialer Dialer) *Client {
	return &Client{
		cfg:    cfg,
		store:  store,
		hub:    hub,
		dialer: dialer,
		logger: logging.With().Str("component", "ingest").Logger(),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Connected reports whether the stream is currently delivering messages.
func (c *Client) Connected() bool {
	return c.State() == StateStreaming
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
	metrics.SetIngestConnected(s == StateStreaming)
}

// subscribeFrame is the stream subscription message. BoundingBoxes uses
// [[minLat, minLon], [maxLat, maxLon]] corner pairs per box.
type subscribeFrame struct {
	APIKey             string         `json:"APIKey"`
	BoundingBoxes      [][][2]float64 `json:"BoundingBoxes"`
	FilterMessageTypes []string       `json:"FilterMessageTypes"`
}

// streamMessage is the envelope for incoming feed messages.
type streamMessage struct {
	MessageType string `json:"MessageType"`
	MetaData    struct {
		MMSI      int64   `json:"MMSI"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		TimeUTC   string  `json:"time_utc"`
	} `json:"MetaData"`
	Message struct {
		PositionReport struct {
			Sog float64 `json:"Sog"`
			Cog float64 `json:"Cog"`
		} `json:"PositionReport"`
	} `json:"Message"`
}

// reportFields is the validated view of one position report.
type reportFields struct {
	MMSI int64   `validate:"required,gt=0"`
	Lat  float64 `validate:"latitude"`
	Lon  float64 `validate:"longitude"`
	Sog  float64 `validate:"gte=0"`
	Cog  float64 `validate:"gte=0,lt=360"`
}

// Run consumes the stream until the context is canceled. Dial or read
// failures reconnect with jittered exponential backoff; the delay resets
// after a successful read so a healthy feed always restarts fast.
func (c *Client) Run(ctx context.Context) error {
	delay := c.cfg.ReconnectMinDelay
	attempt := 0

	for {
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return ctx.Err()
		}

		if attempt > 0 {
			metrics.IngestReconnects.Inc()
			wait := jitter(delay)
			c.logger.Info().Dur("delay", wait).Int("attempt", attempt).Msg("Reconnecting to AIS stream")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				c.setState(StateDisconnected)
				return ctx.Err()
			}
			delay *= 2
			if delay > c.cfg.ReconnectMaxDelay {
				delay = c.cfg.ReconnectMaxDelay
			}
		}
		attempt++

		healthy, err := c.runOnce(ctx)
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return ctx.Err()
		}
		if err != nil {
			c.logger.Error().Err(err).Msg("AIS stream session ended")
		}
		if healthy {
			// The session delivered data before dying; start backoff over
			delay = c.cfg.ReconnectMinDelay
		}
	}
}

// runOnce dials, subscribes, and reads until the connection fails. Returns
// whether at least one message arrived (used to reset backoff).
func (c *Client) runOnce(ctx context.Context) (healthy bool, err error) {
	c.setState(StateConnecting)

	conn, err := c.dialer.DialContext(ctx, c.cfg.URL)
	if err != nil {
		c.setState(StateDisconnected)
		return false, err
	}
	defer func() {
		_ = conn.Close()
		c.setState(StateDisconnected)
	}()

	if err := c.subscribe(conn); err != nil {
		return false, err
	}

	c.setState(StateStreaming)
	c.logger.Info().Str("url", c.cfg.URL).Msg("AIS stream connected")

	for {
		if ctx.Err() != nil {
			return healthy, nil
		}
		if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to set read deadline")
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return healthy, err
		}
		healthy = true
		c.handleMessage(payload)
	}
}

// subscribe sends the subscription frame scoping the feed to the configured
// regions and position reports only.
func (c *Client) subscribe(conn Conn) error {
	regions, err := c.cfg.ParseRegions()
	if err != nil {
		return err
	}

	boxes := make([][][2]float64, len(regions))
	for i, r := range regions {
		boxes[i] = [][2]float64{{r.MinLat, r.MinLon}, {r.MaxLat, r.MaxLon}}
	}

	return conn.WriteJSON(subscribeFrame{
		APIKey:             c.cfg.APIKey,
		BoundingBoxes:      boxes,
		FilterMessageTypes: []string{"PositionReport"},
	})
}

// handleMessage parses one feed message and applies it to the store. A
// malformed message is dropped and counted; it never aborts the session.
func (c *Client) handleMessage(payload []byte) {
	metrics.IngestMessages.Inc()

	var msg streamMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		metrics.IngestDropped.WithLabelValues("parse").Inc()
		c.logger.Debug().Err(err).Msg("Dropping unparseable feed message")
		return
	}

	if msg.MessageType != "PositionReport" {
		metrics.IngestDropped.WithLabelValues("type").Inc()
		return
	}

	fields := reportFields{
		MMSI: msg.MetaData.MMSI,
		Lat:  msg.MetaData.Latitude,
		Lon:  msg.MetaData.Longitude,
		Sog:  msg.Message.PositionReport.Sog,
		Cog:  msg.Message.PositionReport.Cog,
	}
	if verr := validation.ValidateStruct(&fields); verr != nil {
		metrics.IngestDropped.WithLabelValues("validation").Inc()
		c.logger.Debug().Int64("mmsi", fields.MMSI).Str("reason", verr.Error()).Msg("Dropping invalid position report")
		return
	}

	rec := models.PositionRecord{
		MMSI:        fields.MMSI,
		Lat:         fields.Lat,
		Lon:         fields.Lon,
		Speed:       fields.Sog,
		Course:      fields.Cog,
		LastUpdated: parseFeedTime(msg.MetaData.TimeUTC),
	}

	if err := c.store.Upsert(rec); err != nil {
		metrics.IngestDropped.WithLabelValues("validation").Inc()
		return
	}

	if c.hub != nil {
		c.hub.BroadcastPosition(rec)
	}
}

// feedTimeLayout matches the feed's time_utc field, a Go-style timestamp
// with nanoseconds and zone name.
const feedTimeLayout = "2006-01-02 15:04:05.999999999 -0700 MST"

// parseFeedTime converts the feed timestamp, falling back to receipt time.
// Wall-clock receipt time is close enough for staleness decisions when the
// feed sends a malformed stamp.
func parseFeedTime(raw string) time.Time {
	if ts, err := time.Parse(feedTimeLayout, raw); err == nil {
		return ts
	}
	return time.Now()
}

// jitter spreads a delay by ±20% so restarting consumers don't thundering-herd
// the feed after an outage.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	spread := 0.8 + 0.4*rand.Float64() //nolint:gosec // timing jitter, not crypto
	return time.Duration(float64(d) * spread)
}
