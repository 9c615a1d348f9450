package autotrack

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-ptz/internal/log"
	"github.com/teslashibe/go-ptz/pkg/dispatch"
	"github.com/teslashibe/go-ptz/pkg/tracking"
	"github.com/teslashibe/go-ptz/pkg/tracking/detection"
)

// stopTimeout bounds the stop commands sent when the loop exits.
const stopTimeout = 2 * time.Second

// TickObserver is called after every tick of an enabled region.
// It runs on the manager goroutine and must not block.
type TickObserver func(regionID string, r tracking.Result)

// Status is the externally visible state of one region.
type Status struct {
	ID          string            `json:"id"`
	Active      bool              `json:"active"`
	Enabled     bool              `json:"enabled"`
	CameraIndex *int              `json:"camera_index"`
	SessionID   string            `json:"session_id,omitempty"`
	Phase       tracking.Phase    `json:"phase"`
	Ticks       uint64            `json:"ticks"`
	LastCommand *dispatch.Command `json:"last_command,omitempty"`
	Debug       *tracking.Debug   `json:"debug,omitempty"`
}

type session struct {
	id      string
	active  bool
	cfg     tracking.Config
	mapping dispatch.Mapping
	state   *tracking.State

	enabled   bool
	sessionID string
	ticks     uint64
	lastDebug *tracking.Debug
	lastCmd   *dispatch.Command
}

// Manager owns the tracker state of every region.
//
// Ticks, tuning and enable/disable are serialized by one lock, so a config
// swap always lands between two ticks. Commands are sent while the lock is
// held; wrap slow transports in a dispatch.AsyncSink.
type Manager struct {
	sink   dispatch.Sink
	frames chan detection.Frame
	logger *slog.Logger

	mu        sync.Mutex
	sessions  map[string]*session
	order     []string
	observers []TickObserver
}

// NewManager creates a manager for regions. Active regions start enabled.
func NewManager(regions []RegionConfig, sink dispatch.Sink, opts ...Option) (*Manager, error) {
	o := Options{QueueSize: DefaultFrameQueue}
	for _, opt := range opts {
		opt(&o)
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultFrameQueue
	}
	if o.Logger == nil {
		o.Logger = log.With("component", "autotrack")
	}
	if sink == nil {
		sink = dispatch.SinkFunc(func(context.Context, []dispatch.Command) error { return nil })
	}

	m := &Manager{
		sink:     sink,
		frames:   make(chan detection.Frame, o.QueueSize),
		logger:   o.Logger,
		sessions: make(map[string]*session, len(regions)),
	}

	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.sessions[r.ID]; dup {
			return nil, fmt.Errorf("autotrack: duplicate region %q", r.ID)
		}
		s := &session{
			id:      r.ID,
			active:  r.Active,
			cfg:     r.Tracking,
			mapping: r.Mapping,
			state:   tracking.NewState(),
		}
		if r.Active {
			s.enabled = true
			s.sessionID = uuid.NewString()
		}
		m.sessions[r.ID] = s
		m.order = append(m.order, r.ID)
	}
	return m, nil
}

// OnTick registers an observer for every tick.
func (m *Manager) OnTick(fn TickObserver) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Submit queues a frame for the Run loop without blocking.
func (m *Manager) Submit(frame detection.Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	select {
	case m.frames <- frame:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes submitted frames until ctx is cancelled, then stops every
// enabled camera.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("autotrack started", "regions", len(m.order))
	for {
		select {
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			m.StopAll(stopCtx)
			cancel()
			m.logger.Info("autotrack stopped")
			return ctx.Err()
		case f := <-m.frames:
			m.Process(ctx, f)
		}
	}
}

// Process runs one tick for the frame's region and dispatches the command.
// It returns false when the frame was ignored: invalid frames and unknown,
// inactive or disabled regions produce no output and leave state untouched.
func (m *Manager) Process(ctx context.Context, frame detection.Frame) (tracking.Result, bool) {
	if err := frame.Validate(); err != nil {
		m.logger.Warn("invalid frame", "region", frame.RegionID, "error", err)
		return tracking.Result{}, false
	}

	m.mu.Lock()

	s, ok := m.sessions[frame.RegionID]
	if !ok || !s.active || !s.enabled {
		m.mu.Unlock()
		if !ok {
			m.logger.Debug("frame for unknown region", "region", frame.RegionID)
		}
		return tracking.Result{}, false
	}

	prevPhase := s.state.Phase
	res := tracking.Tick(s.cfg, s.state, frame)
	s.ticks++
	s.lastDebug = &res.Debug

	if res.Debug.Phase != prevPhase {
		m.logger.Info("phase changed",
			"region", s.id,
			"session", s.sessionID,
			"from", prevPhase,
			"to", res.Debug.Phase,
			"zone", res.Debug.Zone)
	}

	if cmd, mapped := dispatch.ToCommand(res.CameraVelocity, s.mapping); mapped {
		s.lastCmd = &cmd
		m.send(ctx, s, cmd)
	}

	observers := m.observers
	m.mu.Unlock()

	for _, fn := range observers {
		fn(frame.RegionID, res)
	}
	return res, true
}

// Enable resumes tracking for a region under a new session id.
// The motion state is kept, so tracking continues where it left off.
func (m *Manager) Enable(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return "", ErrUnknownRegion
	}
	if !s.active {
		return "", ErrInactiveRegion
	}
	if !s.enabled {
		s.enabled = true
		s.sessionID = uuid.NewString()
		m.logger.Info("autotrack enabled", "region", id, "session", s.sessionID)
	}
	return s.sessionID, nil
}

// Disable pauses tracking for a region and stops its camera.
func (m *Manager) Disable(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrUnknownRegion
	}
	if !s.enabled {
		return nil
	}
	m.disable(ctx, s)
	return nil
}

// StopAll disables every enabled region, stopping their cameras.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		if s := m.sessions[id]; s.enabled {
			m.disable(ctx, s)
		}
	}
}

func (m *Manager) disable(ctx context.Context, s *session) {
	s.enabled = false
	s.state.Phase = tracking.PhaseIdle
	m.logger.Info("autotrack disabled", "region", s.id, "session", s.sessionID)
	s.sessionID = ""

	if cmd, mapped := dispatch.StopCommand(s.mapping); mapped {
		s.lastCmd = &cmd
		m.send(ctx, s, cmd)
	}
}

// Tune applies params to a region's config and returns the result. Invalid
// params leave the config unchanged.
func (m *Manager) Tune(id string, params tracking.TuningParams) (tracking.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return tracking.Config{}, ErrUnknownRegion
	}
	next, err := s.cfg.WithTuning(params)
	if err != nil {
		return s.cfg, err
	}
	s.cfg = next
	m.logger.Info("tuning updated", "region", id)
	return next, nil
}

// Config returns a region's current tracking config.
func (m *Manager) Config(id string) (tracking.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return tracking.Config{}, ErrUnknownRegion
	}
	return s.cfg, nil
}

// Snapshot returns the status of every region in configuration order.
func (m *Manager) Snapshot() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Status, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.status(m.sessions[id]))
	}
	return out
}

// Status returns the status of one region.
func (m *Manager) Status(id string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Status{}, ErrUnknownRegion
	}
	return m.status(s), nil
}

func (m *Manager) status(s *session) Status {
	st := Status{
		ID:          s.id,
		Active:      s.active,
		Enabled:     s.enabled,
		CameraIndex: s.mapping.CameraIndex,
		SessionID:   s.sessionID,
		Phase:       s.state.Phase,
		Ticks:       s.ticks,
	}
	if s.lastCmd != nil {
		cmd := *s.lastCmd
		st.LastCommand = &cmd
	}
	if s.lastDebug != nil {
		d := *s.lastDebug
		st.Debug = &d
	}
	return st
}

// send delivers one command. Failures are logged and never touch the tracker.
func (m *Manager) send(ctx context.Context, s *session, cmd dispatch.Command) {
	if err := m.sink.Send(ctx, []dispatch.Command{cmd}); err != nil {
		m.logger.Warn("dispatch failed",
			"region", s.id,
			"session", s.sessionID,
			"camera", cmd.CameraIndex,
			"error", err)
	}
}
