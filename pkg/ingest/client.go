// Package ingest reads detection frames from an external detector stream.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-ptz/internal/log"
	"github.com/teslashibe/go-ptz/pkg/tracking/detection"
)

// Connection defaults.
const (
	DefaultMinBackoff = 250 * time.Millisecond
	DefaultMaxBackoff = 10 * time.Second
	DefaultPongWait   = 30 * time.Second

	handshakeTimeout = 5 * time.Second
	writeWait        = 5 * time.Second
)

// FrameHandler receives every decoded frame. autotrack.Manager.Submit fits.
type FrameHandler func(detection.Frame) error

// Client keeps a websocket connection to a detector open and forwards each
// text message, decoded as a detection.Frame, to Handler.
type Client struct {
	URL     string
	Handler FrameHandler

	MinBackoff time.Duration
	MaxBackoff time.Duration
	PongWait   time.Duration

	dialer websocket.Dialer
	logger *slog.Logger

	received atomic.Uint64
	rejected atomic.Uint64
}

// NewClient creates a client for the detector stream at url.
func NewClient(url string, handler FrameHandler) *Client {
	return &Client{
		URL:        url,
		Handler:    handler,
		MinBackoff: DefaultMinBackoff,
		MaxBackoff: DefaultMaxBackoff,
		PongWait:   DefaultPongWait,
		dialer:     websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger:     log.With("component", "ingest", "url", url),
	}
}

// Received returns how many frames were handed to Handler.
func (c *Client) Received() uint64 {
	return c.received.Load()
}

// Rejected returns how many messages could not be decoded or were refused.
func (c *Client) Rejected() uint64 {
	return c.rejected.Load()
}

// Run connects and reads until ctx is cancelled, reconnecting with capped
// exponential backoff whenever the stream drops.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.MinBackoff
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.URL, nil)
		if err == nil {
			c.logger.Info("detector stream connected")
			backoff = c.MinBackoff
			err = c.serve(ctx, conn)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("detector stream lost; reconnecting...", "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff, c.MaxBackoff)
	}
}

// serve reads one connection until it fails or ctx ends.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(c.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(c.PongWait))
		return nil
	})

	// Control frames may be written concurrently with reads.
	go func() {
		ticker := time.NewTicker(c.PongWait / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()
	defer conn.Close()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("detector closed the stream")
			}
			return fmt.Errorf("read: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var f detection.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.rejected.Add(1)
		c.logger.Warn("undecodable frame", "error", err)
		return
	}
	if err := c.Handler(f); err != nil {
		c.rejected.Add(1)
		c.logger.Debug("frame rejected", "region", f.RegionID, "error", err)
		return
	}
	c.received.Add(1)
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}
