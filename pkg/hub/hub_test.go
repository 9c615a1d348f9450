package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	kind int
	data []byte
}

// fakeConn is an in-memory websocket connection.
type fakeConn struct {
	written chan frame
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{written: make(chan frame, 1024), closed: make(chan struct{})}
}

func (c *fakeConn) SetReadLimit(int64) {}
func (c *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}
func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}
func (c *fakeConn) WriteMessage(kind int, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("closed")
	default:
	}
	c.written <- frame{kind: kind, data: data}
	return nil
}
func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func nextText(t *testing.T, c *fakeConn) []byte {
	t.Helper()
	for {
		select {
		case f := <-c.written:
			if f.kind == websocket.TextMessage {
				return f.data
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a message")
			return nil
		}
	}
}

func TestHub_PublishReachesClients(t *testing.T) {
	h, _ := startHub(t)

	conn := newFakeConn()
	client, err := NewClient(h, conn)
	require.NoError(t, err)
	go client.Run()
	defer conn.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Publish(EventTick, "stage", map[string]float64{"dt": 0.033}))

	var ev struct {
		Type   string             `json:"type"`
		Region string             `json:"region"`
		Data   map[string]float64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(nextText(t, conn), &ev))
	assert.Equal(t, EventTick, ev.Type)
	assert.Equal(t, "stage", ev.Region)
	assert.Equal(t, 0.033, ev.Data["dt"])
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	h, _ := startHub(t)

	conn := newFakeConn()
	client, err := NewClient(h, conn)
	require.NoError(t, err)
	go client.Run()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	conn.Close()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := startHub(t)

	// Never started, so nothing drains its send buffer.
	_, err := NewClient(h, newFakeConn())
	require.NoError(t, err)

	msg := Message{Data: []byte(`{}`)}
	assert.Eventually(t, func() bool {
		h.Broadcast(msg)
		return h.ClientCount() == 0
	}, 2*time.Second, time.Millisecond)

	st := h.Stats()
	assert.Equal(t, uint64(1), st.Evicted)
	assert.GreaterOrEqual(t, st.Delivered, uint64(sendBuffer))
}

func TestHub_RegionFilter(t *testing.T) {
	h, _ := startHub(t)

	stageConn := newFakeConn()
	stage, err := NewClient(h, stageConn, ParseRegions("stage, ")...)
	require.NoError(t, err)
	go stage.Run()
	defer stageConn.Close()

	allConn := newFakeConn()
	all, err := NewClient(h, allConn)
	require.NoError(t, err)
	go all.Run()
	defer allConn.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Publish(EventTick, "lectern", 1))
	require.NoError(t, h.Publish(EventTick, "stage", 2))
	require.NoError(t, h.Publish(EventStatus, "", 3))

	region := func(data []byte) string {
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev.Region
	}

	assert.Equal(t, "lectern", region(nextText(t, allConn)))
	assert.Equal(t, "stage", region(nextText(t, allConn)))
	assert.Equal(t, "", region(nextText(t, allConn)))

	assert.Equal(t, "stage", region(nextText(t, stageConn)), "other regions are filtered out")
	assert.Equal(t, "", region(nextText(t, stageConn)), "region-less events reach everyone")
}

func TestParseRegions(t *testing.T) {
	assert.Nil(t, ParseRegions(""))
	assert.Equal(t, []string{"stage", "lectern"}, ParseRegions("stage,lectern"))
}

func TestHub_StopClosesClients(t *testing.T) {
	h, cancel := startHub(t)

	conn := newFakeConn()
	client, err := NewClient(h, conn)
	require.NoError(t, err)
	go client.Run()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-conn.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("client connection was not closed")
	}

	_, err = NewClient(h, newFakeConn())
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestNewEventMessage(t *testing.T) {
	msg, err := NewEventMessage(EventStatus, "", []int{1, 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"status","data":[1,2]}`, string(msg.Data))
	assert.Empty(t, msg.Region)

	msg, err = NewEventMessage(EventTick, "stage", nil)
	require.NoError(t, err)
	assert.Equal(t, "stage", msg.Region)

	_, err = NewEventMessage(EventStatus, "", func() {})
	assert.Error(t, err)
}
