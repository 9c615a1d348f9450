package tracking

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/teslashibe/go-ptz/pkg/tracking/detection"
)

// Debug is a snapshot of one tick, for dashboards and tuning.
type Debug struct {
	Timestamp int64    `json:"timestamp"`
	Dt        float64  `json:"dt"`
	Phase     Phase    `json:"phase"`
	Zone      ZoneKind `json:"zone"`

	Subject   *r2.Vec `json:"subject,omitempty"`
	Predicted r2.Vec  `json:"predicted"`
	Error     r2.Vec  `json:"error"`

	ApparentVelocity   r2.Vec `json:"apparent_velocity"`
	WorldVelocity      r2.Vec `json:"world_velocity"`
	Acceleration       r2.Vec `json:"acceleration"`
	Feedforward        r2.Vec `json:"feedforward"`
	Feedback           r2.Vec `json:"feedback"`
	TargetVelocity     r2.Vec `json:"target_velocity"`
	CameraVelocity     r2.Vec `json:"camera_velocity"`
	CameraAcceleration r2.Vec `json:"camera_acceleration"`
}

// Result is the outcome of one tick.
type Result struct {
	// CameraVelocity is the velocity to command, in frame fractions per second.
	CameraVelocity r2.Vec

	// Visible is true when a subject was selected this tick.
	Visible bool

	Debug Debug
}

// Tick advances the tracker by one detection frame.
//
// It is the only function that mutates s. All other work is pure computation
// over the frame and the previous state, so identical frame sequences always
// produce identical results. The first tick only establishes history: there
// is no interval to integrate over yet.
//
// cfg may differ from the config of the previous tick after runtime tuning;
// the carried camera motion is first brought inside cfg's limits.
func Tick(cfg Config, s *State, frame detection.Frame) Result {
	now := frame.Timestamp
	first := s.LastTimestamp == nil

	s.CameraVelocity = clampVec(s.CameraVelocity, cfg.MaxVelocity)
	s.CameraAcceleration = clampVec(s.CameraAcceleration, cfg.MaxAcceleration)

	var dt float64
	if !first {
		dt = floorDt(float64(now-*s.LastTimestamp) / 1000)
	}

	subject, visible := SelectSubject(frame.Detections, s.LastCenter)

	// Motion estimation spans the interval between the two detections, which
	// equals dt while the subject stays in view.
	if visible && !first && s.LastCenter != nil && s.LastDetection != nil {
		sampleDt := floorDt(float64(now-*s.LastDetection) / 1000)
		m := EstimateMotion(cfg, Motion{Velocity: s.ApparentVelocity, Acceleration: s.Acceleration},
			*s.LastCenter, subject, sampleDt)
		s.ApparentVelocity, s.Acceleration = m.Velocity, m.Acceleration
	}

	lost := isLost(cfg, s, now, visible)
	if visible {
		s.LastDetection = ptr(now)
	}
	if lost && !first {
		s.ApparentVelocity = DecayTowardRest(cfg, s.ApparentVelocity, dt)
	}

	world := s.WorldVelocity()
	origin := predictionOrigin(subject, visible, s.LastCenter)
	predicted := Predict(origin, s.ApparentVelocity, s.Acceleration, cfg.Lookahead)
	e := r2.Sub(predicted, FrameCenter)

	zone, gains := ClassifyZone(cfg, e)
	corr := Compose(cfg, zone, gains, e, ErrorRate(e, s.LastError, dt), world, s.CameraVelocity)

	switch {
	case first:
		// Nothing to integrate over.
	case lost:
		// Bypass the profiler so the camera only ever slows down.
		s.CameraVelocity = DecayTowardRest(cfg, s.CameraVelocity, dt)
		s.CameraAcceleration = RelaxAcceleration(cfg, s.CameraAcceleration, dt)
	default:
		s.CameraVelocity, s.CameraAcceleration = Profile(cfg, s.CameraVelocity, corr.Target, s.CameraAcceleration, dt)
	}

	s.Phase = ClassifyPhase(cfg, visible, lost, world, s.Acceleration)
	if visible {
		s.LastCenter = ptr(subject)
	}
	s.LastError = ptr(e)
	s.LastTimestamp = ptr(now)

	res := Result{
		CameraVelocity: s.CameraVelocity,
		Visible:        visible,
		Debug: Debug{
			Timestamp:          now,
			Dt:                 dt,
			Phase:              s.Phase,
			Zone:               zone,
			Predicted:          predicted,
			Error:              e,
			ApparentVelocity:   s.ApparentVelocity,
			WorldVelocity:      world,
			Acceleration:       s.Acceleration,
			Feedforward:        corr.Feedforward,
			Feedback:           corr.Feedback,
			TargetVelocity:     corr.Target,
			CameraVelocity:     s.CameraVelocity,
			CameraAcceleration: s.CameraAcceleration,
		},
	}
	if visible {
		res.Debug.Subject = ptr(subject)
	}
	return res
}
