package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-ptz/pkg/hub"
)

const (
	reconnectDelay = time.Second
	readWait       = 60 * time.Second
)

// sender is the part of tea.Program the stream needs.
type sender interface {
	Send(msg tea.Msg)
}

// stream reads tick events from the debug websocket and forwards them to the
// program, reconnecting until stopped.
type stream struct {
	url string
	out sender

	mu   sync.Mutex
	conn *websocket.Conn
}

func newStream(url string, out sender) *stream {
	return &stream{url: url, out: out}
}

// Run blocks until ctx is done.
func (s *stream) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, s.closeConn)
	defer stop()

	d := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	for {
		conn, _, err := d.DialContext(ctx, s.url, nil)
		if err == nil {
			s.out.Send(connMsg{Connected: true})
			err = s.read(conn)
		}
		if ctx.Err() != nil {
			return
		}
		s.out.Send(connMsg{Connected: false, Err: err})

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *stream) read(conn *websocket.Conn) error {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()

	// The server pings; answering resets our deadline too.
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msg := decodeEvent(data); msg != nil {
			s.out.Send(msg)
		}
	}
}

func (s *stream) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
}

// decodeEvent turns a hub event into a program message, or nil for events
// the monitor does not show.
func decodeEvent(data []byte) tea.Msg {
	var ev struct {
		Type   string          `json:"type"`
		Region string          `json:"region"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil
	}

	switch ev.Type {
	case hub.EventTick:
		msg := tickMsg{Region: ev.Region}
		if json.Unmarshal(ev.Data, &msg.Debug) != nil {
			return nil
		}
		return msg
	case hub.EventStatus:
		var msg regionStatusMsg
		if json.Unmarshal(ev.Data, &msg.Status) != nil || msg.Status.ID == "" {
			return nil
		}
		return msg
	}
	return nil
}
