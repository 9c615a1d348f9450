package tracking

import "gonum.org/v1/gonum/spatial/r2"

// ClassifyPhase labels the tick for diagnostics.
// Without a visible subject the tracker is either holding (tracking) or lost.
func ClassifyPhase(cfg Config, visible, lost bool, world, accel r2.Vec) Phase {
	if !visible {
		if lost {
			return PhaseLost
		}
		return PhaseTracking
	}

	speed := r2.Norm(world)
	if speed < cfg.StationarySpeed {
		return PhaseStationary
	}
	if r2.Norm(accel) < cfg.ConstantAccel {
		return PhaseConstant
	}
	if r2.Dot(accel, world) >= 0 {
		return PhaseAccelerating
	}
	return PhaseDecelerating
}
