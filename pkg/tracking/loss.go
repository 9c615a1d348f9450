package tracking

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// isLost reports whether the hold window has run out without a subject.
// A tracker that never saw a subject is lost.
func isLost(cfg Config, s *State, now int64, visible bool) bool {
	if visible {
		return false
	}
	since, ok := s.SinceDetection(now)
	if !ok {
		return true
	}
	return since > cfg.HoldDuration.Milliseconds()
}

// DecayFactor is the per-tick velocity multiplier once a subject is lost.
// It stays below one so decay always converges.
func DecayFactor(cfg Config, dt float64) float64 {
	return math.Pow(clamp(1-cfg.VelocityDecayPerSecond, 0, 0.999), floorDt(dt))
}

// DecayTowardRest shrinks each axis by the decay factor and snaps axes that
// fall below the noise floor to exactly zero.
func DecayTowardRest(cfg Config, v r2.Vec, dt float64) r2.Vec {
	f := DecayFactor(cfg, dt)
	return r2.Vec{
		X: snap(v.X*f, cfg.VelocityNoiseFloor),
		Y: snap(v.Y*f, cfg.VelocityNoiseFloor),
	}
}

// RelaxAcceleration walks the camera acceleration toward zero no faster than
// the jerk limit allows.
func RelaxAcceleration(cfg Config, a r2.Vec, dt float64) r2.Vec {
	maxDelta := cfg.MaxJerk * floorDt(dt)
	return r2.Vec{
		X: a.X - clamp(a.X, -maxDelta, maxDelta),
		Y: a.Y - clamp(a.Y, -maxDelta, maxDelta),
	}
}

func snap(v, floor float64) float64 {
	if abs(v) < floor {
		return 0
	}
	return v
}
