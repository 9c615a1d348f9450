package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-ptz/internal/log"
	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/dispatch"
	"github.com/teslashibe/go-ptz/pkg/tracking"
)

func newTestServer(t *testing.T, opts ...autotrack.Option) (*Server, *autotrack.Manager, *dispatch.Recorder) {
	t.Helper()
	cam := 0
	rec := dispatch.NewRecorder()
	opts = append([]autotrack.Option{autotrack.WithLogger(log.Discard())}, opts...)
	m, err := autotrack.NewManager([]autotrack.RegionConfig{
		{ID: "stage", Active: true, Mapping: dispatch.Mapping{CameraIndex: &cam}, Tracking: tracking.DefaultConfig()},
		{ID: "spare", Active: false, Tracking: tracking.DefaultConfig()},
	}, rec, opts...)
	require.NoError(t, err)
	return NewServer(":0", m), m, rec
}

func do(t *testing.T, s *Server, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func TestStatus(t *testing.T) {
	s, _, _ := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp.Regions, 2)
	assert.Equal(t, "stage", resp.Regions[0].ID)
	assert.True(t, resp.Regions[0].Enabled)
	assert.False(t, resp.Regions[1].Active)
	assert.Zero(t, resp.Debug.Clients)
	assert.Contains(t, string(body), `"debug":{"clients":0`)
}

func TestRegion(t *testing.T) {
	s, _, _ := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/api/regions/stage", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"id":"stage"`)

	code, _ = do(t, s, http.MethodGet, "/api/regions/balcony", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPostFrame(t *testing.T) {
	s, _, _ := newTestServer(t)

	frame := `{"region_id":"stage","timestamp":1000,"detections":[{"x":0.4,"y":0.4,"width":0.2,"height":0.2,"confidence":0.9}]}`
	code, _ := do(t, s, http.MethodPost, "/api/frames", frame)
	assert.Equal(t, http.StatusAccepted, code)

	code, _ = do(t, s, http.MethodPost, "/api/frames", `{"region_id":`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, s, http.MethodPost, "/api/frames", `{"timestamp":1}`)
	assert.Equal(t, http.StatusBadRequest, code, "frames need a region")

	code, _ = do(t, s, http.MethodPost, "/api/frames", `{"region_id":"stage","detections":[{"x":1.5,"y":0,"width":0.1,"height":0.1,"confidence":1}]}`)
	assert.Equal(t, http.StatusBadRequest, code, "boxes must be normalized")
}

func TestPostFrame_QueueFull(t *testing.T) {
	s, _, _ := newTestServer(t, autotrack.WithQueueSize(1))

	frame := `{"region_id":"stage","timestamp":0,"detections":[]}`
	code, _ := do(t, s, http.MethodPost, "/api/frames", frame)
	require.Equal(t, http.StatusAccepted, code)

	code, body := do(t, s, http.MethodPost, "/api/frames", frame)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, string(body), "queue full")
}

func TestEnableDisable(t *testing.T) {
	s, m, rec := newTestServer(t)

	code, _ := do(t, s, http.MethodPost, "/api/regions/stage/disable", "")
	require.Equal(t, http.StatusOK, code)

	st, err := m.Status("stage")
	require.NoError(t, err)
	assert.False(t, st.Enabled)
	last, ok := rec.Last()
	require.True(t, ok)
	assert.True(t, last.IsStop())

	code, body := do(t, s, http.MethodPost, "/api/regions/stage/enable", "")
	require.Equal(t, http.StatusOK, code)
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.NotEmpty(t, resp.SessionID)

	code, _ = do(t, s, http.MethodPost, "/api/regions/balcony/enable", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, s, http.MethodPost, "/api/regions/balcony/disable", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, s, http.MethodPost, "/api/regions/spare/enable", "")
	assert.Equal(t, http.StatusConflict, code)
}

func TestTuning(t *testing.T) {
	s, m, _ := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/api/regions/stage/tuning", "")
	require.Equal(t, http.StatusOK, code)
	var got tracking.TuningParams
	require.NoError(t, json.Unmarshal(body, &got))
	require.NotNil(t, got.MaxJerk)
	assert.Equal(t, 15.0, *got.MaxJerk)
	require.NotNil(t, got.HoldMS)
	assert.Equal(t, int64(400), *got.HoldMS)

	code, body = do(t, s, http.MethodPut, "/api/regions/stage/tuning", `{"max_velocity":0.7,"hold_ms":250}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 0.7, *got.MaxVelocity)

	cfg, err := m.Config("stage")
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.MaxVelocity)
	assert.Equal(t, int64(250), cfg.HoldDuration.Milliseconds())

	code, body = do(t, s, http.MethodPut, "/api/regions/stage/tuning", `{"dead_zone":{"width":0.7,"height":0.7}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "DeadZone", errResp.Field)

	code, _ = do(t, s, http.MethodPut, "/api/regions/balcony/tuning", `{"max_velocity":0.7}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, s, http.MethodGet, "/api/regions/balcony/tuning", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWebSocketRoutesRequireUpgrade(t *testing.T) {
	s, _, _ := newTestServer(t)

	code, _ := do(t, s, http.MethodGet, "/ws/debug", "")
	assert.Equal(t, http.StatusUpgradeRequired, code)
}
