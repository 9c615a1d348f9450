package tracking

import "gonum.org/v1/gonum/spatial/r2"

// Motion is the smoothed apparent motion of the subject on screen.
type Motion struct {
	Velocity     r2.Vec
	Acceleration r2.Vec
}

// EstimateMotion folds one displacement sample into the smoothed motion.
//
// The velocity sample (cur-prev)/dt is blended with SmoothingAlpha. The
// acceleration sample is the change of the smoothed velocity over the same
// interval, blended with SmoothingAlphaAccel.
func EstimateMotion(cfg Config, m Motion, prev, cur r2.Vec, dt float64) Motion {
	dt = floorDt(dt)

	measured := r2.Scale(1/dt, r2.Sub(cur, prev))
	v := ema(cfg.SmoothingAlpha, measured, m.Velocity)

	aSample := r2.Scale(1/dt, r2.Sub(v, m.Velocity))
	a := ema(cfg.SmoothingAlphaAccel, aSample, m.Acceleration)

	return Motion{Velocity: v, Acceleration: a}
}

// ema blends a new sample into a running average. alpha is the weight of the sample.
func ema(alpha float64, sample, avg r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(alpha, sample), r2.Scale(1-alpha, avg))
}

func floorDt(dt float64) float64 {
	if dt < minDt {
		return minDt
	}
	return dt
}
