package tracking

import "gonum.org/v1/gonum/spatial/r2"

// Profile moves the camera velocity toward target for one tick of length dt.
//
// The desired acceleration is bounded by MaxAcceleration, the change in
// acceleration by MaxJerk·dt, and the integrated velocity by MaxVelocity.
// Each axis is limited independently.
func Profile(cfg Config, v, target, a r2.Vec, dt float64) (r2.Vec, r2.Vec) {
	dt = floorDt(dt)
	vx, ax := profileAxis(cfg, v.X, target.X, a.X, dt)
	vy, ay := profileAxis(cfg, v.Y, target.Y, a.Y, dt)
	return r2.Vec{X: vx, Y: vy}, r2.Vec{X: ax, Y: ay}
}

func profileAxis(cfg Config, v, target, a, dt float64) (float64, float64) {
	desired := clamp((target-v)/dt, -cfg.MaxAcceleration, cfg.MaxAcceleration)
	maxDelta := cfg.MaxJerk * dt
	newA := a + clamp(desired-a, -maxDelta, maxDelta)
	newV := clamp(v+newA*dt, -cfg.MaxVelocity, cfg.MaxVelocity)
	return newV, newA
}
