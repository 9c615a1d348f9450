package tracking

import "gonum.org/v1/gonum/spatial/r2"

// Phase is a diagnostic classification of what the tracker is doing.
// It never feeds back into control.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseTracking     Phase = "tracking"
	PhaseLost         Phase = "lost"
	PhaseStationary   Phase = "stationary"
	PhaseConstant     Phase = "constant"
	PhaseAccelerating Phase = "accelerating"
	PhaseDecelerating Phase = "decelerating"
)

// ZoneKind names the nested error zone a predicted position falls into.
type ZoneKind string

const (
	ZoneDead     ZoneKind = "dead"
	ZoneNormal   ZoneKind = "normal"
	ZoneUrgent   ZoneKind = "urgent"
	ZoneCritical ZoneKind = "critical"
	ZoneNone     ZoneKind = "none" // Beyond the critical zone
)

// FrameCenter is the normalized centre of the camera frame.
var FrameCenter = r2.Vec{X: 0.5, Y: 0.5}

// State is the mutable motion state of one tracked region.
//
// A State is owned by exactly one caller and mutated only by Tick. It is not
// reset when tracking pauses so that a resumed tracker keeps its continuity.
type State struct {
	LastTimestamp *int64  // Milliseconds of the previous tick, nil before the first
	LastCenter    *r2.Vec // Last selected subject centre
	LastError     *r2.Vec // Predicted error of the previous tick
	LastDetection *int64  // Milliseconds of the last tick that saw a subject

	ApparentVelocity r2.Vec // Subject motion relative to the frame
	Acceleration     r2.Vec // Smoothed subject acceleration

	CameraVelocity     r2.Vec // Last commanded camera velocity
	CameraAcceleration r2.Vec // Current camera acceleration (jerk limited)

	Phase Phase
}

// NewState returns a State at rest.
func NewState() *State {
	return &State{Phase: PhaseIdle}
}

// WorldVelocity is the subject's motion with the camera's own motion added back.
func (s *State) WorldVelocity() r2.Vec {
	return r2.Add(s.CameraVelocity, s.ApparentVelocity)
}

// SinceDetection returns the milliseconds elapsed between the last detection
// and now, and false if nothing was ever detected.
func (s *State) SinceDetection(now int64) (int64, bool) {
	if s.LastDetection == nil {
		return 0, false
	}
	return now - *s.LastDetection, true
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := *s
	if s.LastTimestamp != nil {
		c.LastTimestamp = ptr(*s.LastTimestamp)
	}
	if s.LastCenter != nil {
		c.LastCenter = ptr(*s.LastCenter)
	}
	if s.LastError != nil {
		c.LastError = ptr(*s.LastError)
	}
	if s.LastDetection != nil {
		c.LastDetection = ptr(*s.LastDetection)
	}
	return &c
}

func ptr[T any](v T) *T {
	return &v
}
