package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/hub"
	"github.com/teslashibe/go-ptz/pkg/tracking"
	"github.com/teslashibe/go-ptz/pkg/web"
)

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func TestDecodeEvent(t *testing.T) {
	msg, err := hub.NewEventMessage(hub.EventTick, "stage", tracking.Debug{
		Phase:          tracking.PhaseTracking,
		Zone:           tracking.ZoneUrgent,
		CameraVelocity: r2.Vec{X: 0.4, Y: -0.1},
	})
	require.NoError(t, err)

	tick, ok := decodeEvent(msg.Data).(tickMsg)
	require.True(t, ok)
	assert.Equal(t, "stage", tick.Region)
	assert.Equal(t, tracking.PhaseTracking, tick.Debug.Phase)
	assert.Equal(t, tracking.ZoneUrgent, tick.Debug.Zone)
	assert.Equal(t, 0.4, tick.Debug.CameraVelocity.X)

	status, err := hub.NewEventMessage(hub.EventStatus, "stage", autotrack.Status{ID: "stage", Enabled: true})
	require.NoError(t, err)
	st, ok := decodeEvent(status.Data).(regionStatusMsg)
	require.True(t, ok)
	assert.Equal(t, "stage", st.Status.ID)
	assert.True(t, st.Status.Enabled)

	other, err := hub.NewEventMessage("hello", "", nil)
	require.NoError(t, err)
	assert.Nil(t, decodeEvent(other.Data), "unknown events are ignored")
	assert.Nil(t, decodeEvent([]byte("not json")))
}

func TestDebugURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8090/ws/debug", debugURL("http://localhost:8090"))
	assert.Equal(t, "ws://localhost:8090/ws/debug", debugURL("http://localhost:8090/"))
	assert.Equal(t, "wss://cam.example/ws/debug", debugURL("https://cam.example"))
}

func TestModel_TickAddsRegion(t *testing.T) {
	m := newModel(nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m = update(t, m, connMsg{Connected: true})
	m = update(t, m, tickMsg{Region: "stage", Debug: tracking.Debug{Phase: tracking.PhaseLost, Zone: tracking.ZoneNone}})
	m = update(t, m, tickMsg{Region: "stage", Debug: tracking.Debug{Phase: tracking.PhaseTracking, Zone: tracking.ZoneNormal}})
	m = update(t, m, tickMsg{Region: "lectern", Debug: tracking.Debug{Phase: tracking.PhaseStationary}})

	assert.Equal(t, []string{"lectern", "stage"}, m.shared.order)
	assert.Equal(t, 2, m.shared.regions["stage"].ticks)
	assert.Equal(t, tracking.PhaseTracking, m.shared.regions["stage"].debug.Phase)

	view := m.View()
	assert.Contains(t, view, "stage")
	assert.Contains(t, view, "lectern")
	assert.Contains(t, view, "connected")
}

func TestModel_Navigation(t *testing.T) {
	m := newModel(nil)
	for _, id := range []string{"a", "b", "c"} {
		m = update(t, m, tickMsg{Region: id})
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	id, ok := m.selectedID()
	require.True(t, ok)
	assert.Equal(t, "c", id, "selection stops at the last region")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	id, _ = m.selectedID()
	assert.Equal(t, "b", id)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_StatusMergesRegions(t *testing.T) {
	camera := 2
	m := newModel(nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m = update(t, m, statusMsg{Status: web.StatusResponse{
		Regions: []autotrack.Status{
			{ID: "stage", Active: true, Enabled: true, CameraIndex: &camera, Phase: tracking.PhaseIdle},
		},
		Debug: hub.Stats{Clients: 3},
	}})

	require.Contains(t, m.shared.regions, "stage")
	assert.True(t, m.shared.regions["stage"].status.Enabled)

	m = update(t, m, regionStatusMsg{Status: autotrack.Status{ID: "stage", Enabled: false}})
	assert.False(t, m.shared.regions["stage"].status.Enabled, "pushed status replaces the polled one")
	assert.Equal(t, 3, m.clients)
	assert.Contains(t, m.View(), "3 viewers")
}

func TestVelocityBar(t *testing.T) {
	strip := func(s string) string {
		var b strings.Builder
		inEscape := false
		for _, r := range s {
			switch {
			case r == '\x1b':
				inEscape = true
			case inEscape && r == 'm':
				inEscape = false
			case !inEscape:
				b.WriteRune(r)
			}
		}
		return b.String()
	}

	zero := strip(velocityBar(0))
	assert.Equal(t, 0, strings.Count(zero, "█"))

	full := strip(velocityBar(velocityScale * 2))
	assert.Equal(t, barWidth/2, strings.Count(full, "█"))
	assert.Greater(t, strings.Index(full, "█"), strings.Index(full, "│"), "positive velocity fills right")

	left := strip(velocityBar(-velocityScale / 2))
	assert.Equal(t, barWidth/4, strings.Count(left, "█"))
	assert.Less(t, strings.Index(left, "█"), strings.Index(left, "│"), "negative velocity fills left")

	tiny := strip(velocityBar(1e-6))
	assert.Equal(t, 1, strings.Count(tiny, "█"))
}

func TestAPI(t *testing.T) {
	var (
		mu      sync.Mutex
		toggled []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/status":
			_ = json.NewEncoder(w).Encode(web.StatusResponse{
				Regions: []autotrack.Status{{ID: "stage", Active: true}},
			})
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/regions/stage/"):
			mu.Lock()
			toggled = append(toggled, strings.TrimPrefix(r.URL.Path, "/api/regions/stage/"))
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(web.ErrorResponse{Error: "unknown region"})
		}
	}))
	defer srv.Close()

	a := newAPI(srv.URL + "/")
	ctx := t.Context()

	st, err := a.status(ctx)
	require.NoError(t, err)
	require.Len(t, st.Regions, 1)
	assert.Equal(t, "stage", st.Regions[0].ID)

	require.NoError(t, a.setEnabled(ctx, "stage", false))
	require.NoError(t, a.setEnabled(ctx, "stage", true))
	mu.Lock()
	assert.Equal(t, []string{"disable", "enable"}, toggled)
	mu.Unlock()

	err = a.setEnabled(ctx, "nope", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown region")
}
