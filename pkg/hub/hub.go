package hub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-ptz/internal/log"
)

// inboxSize is how many published messages may wait for the fan-out loop.
const inboxSize = 256

// Stats is a point-in-time view of a hub.
type Stats struct {
	Clients   int    `json:"clients"`
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"` // Published while the inbox was full
	Evicted   uint64 `json:"evicted"` // Clients cut off for falling behind
}

// Hub fans telemetry out to websocket clients. A single goroutine (Run) owns
// the client set; everything else talks to it over channels.
type Hub struct {
	inbox      chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]struct{}

	delivered atomic.Uint64
	dropped   atomic.Uint64
	evicted   atomic.Uint64

	logger *slog.Logger
}

// New creates a hub; name only labels its log lines.
func New(name string) *Hub {
	return &Hub{
		inbox:      make(chan Message, inboxSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		logger:     log.With("hub", name),
	}
}

// Run delivers messages until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c, "client disconnected")
		case msg := <-h.inbox:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected", "clients", n, "regions", c.filterList())
}

func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info(reason, "clients", n)
	}
}

func (h *Hub) fanOut(msg Message) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.clients {
		if !c.wants(msg.Region) {
			continue
		}
		select {
		case c.send <- msg:
			h.delivered.Add(1)
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.evicted.Add(1)
		h.remove(c, "evicted slow client")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast queues msg for delivery without blocking; when the hub is behind
// the message is dropped and counted.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.inbox <- msg:
	default:
		n := h.dropped.Add(1)
		h.logger.Debug("hub inbox full, dropping message", "dropped", n)
	}
}

// Publish encodes an event and broadcasts it.
func (h *Hub) Publish(eventType, region string, data any) error {
	msg, err := NewEventMessage(eventType, region, data)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns the hub's counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Clients:   h.ClientCount(),
		Delivered: h.delivered.Load(),
		Dropped:   h.dropped.Load(),
		Evicted:   h.evicted.Load(),
	}
}
