package tracking

import "gonum.org/v1/gonum/spatial/r2"

// Correction is the target camera velocity and its two components.
type Correction struct {
	Feedforward r2.Vec
	Feedback    r2.Vec
	Target      r2.Vec
}

// ErrorRate is the finite difference of consecutive predicted errors.
// It is zero without a previous error or a measurable interval.
func ErrorRate(e r2.Vec, last *r2.Vec, dt float64) r2.Vec {
	if last == nil || dt <= 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/floorDt(dt), r2.Sub(e, *last))
}

// Compose builds the target camera velocity for one tick.
//
// Positive camera velocity pans toward +x/+y of the frame, so the PD term
// carries the sign of the error. Backends with the opposite axis convention
// set dispatch.Mapping InvertPan or InvertTilt.
//
// Inside the dead zone there is no feedback and the camera follows the
// subject's world velocity; outside it the camera holds its current velocity
// and lets feedback do the correcting.
func Compose(cfg Config, zone ZoneKind, g Gains, e, eRate, world, camera r2.Vec) Correction {
	var c Correction
	if zone == ZoneDead {
		c.Feedforward = world
	} else {
		c.Feedforward = camera
		c.Feedback = r2.Add(r2.Scale(g.Kp, e), r2.Scale(g.Kd, eRate))
	}
	c.Target = clampVec(r2.Add(c.Feedforward, c.Feedback), cfg.MaxVelocity)
	return c
}
