package hub

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds what a debug client may send us
	maxMessageSize = 4 * 1024

	// sendBuffer is how many messages a client may lag behind
	sendBuffer = 256
)

// ErrHubClosed is returned when registering with a stopped hub.
var ErrHubClosed = errors.New("hub: closed")

// Conn is the part of a websocket connection the hub uses.
// *websocket.Conn from gofiber satisfies it.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one websocket subscriber, optionally limited to some regions.
type Client struct {
	hub     *Hub
	conn    Conn
	send    chan Message
	regions map[string]struct{} // Empty means every region
}

// NewClient creates a client and registers it with the hub. When regions are
// given the client only receives events for those regions plus events that
// carry no region. It returns ErrHubClosed once the hub has stopped.
func NewClient(hub *Hub, conn Conn, regions ...string) (*Client, error) {
	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan Message, sendBuffer),
		regions: make(map[string]struct{}, len(regions)),
	}
	for _, r := range regions {
		if r = strings.TrimSpace(r); r != "" {
			client.regions[r] = struct{}{}
		}
	}
	select {
	case hub.register <- client:
		return client, nil
	case <-hub.done:
		return nil, ErrHubClosed
	}
}

// ParseRegions splits a comma-separated region filter, e.g. "stage,lectern".
func ParseRegions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (c *Client) wants(region string) bool {
	if len(c.regions) == 0 || region == "" {
		return true
	}
	_, ok := c.regions[region]
	return ok
}

func (c *Client) filterList() []string {
	out := make([]string, 0, len(c.regions))
	for r := range c.regions {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Run starts the client's read and write pumps. It blocks until the
// connection closes and is meant to be called from the websocket handler.
func (c *Client) Run() {
	go c.writePump()
	c.readPump() // Blocks until connection closes
}

// readPump reads messages from the websocket connection
// It keeps the connection alive and detects disconnection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Debug clients only listen; reading detects disconnects and pongs
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes messages to the websocket connection
// Only this goroutine writes to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel - send close frame
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message.Data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
