package tracking

import "gonum.org/v1/gonum/spatial/r2"

// Predict extrapolates a screen position t seconds ahead assuming constant
// acceleration: p + v·t + ½·a·t².
func Predict(pos, v, a r2.Vec, t float64) r2.Vec {
	return r2.Add(pos, r2.Add(r2.Scale(t, v), r2.Scale(0.5*t*t, a)))
}

// predictionOrigin picks the position to extrapolate from: the current subject,
// else the last known one, else the frame centre.
func predictionOrigin(subject r2.Vec, visible bool, last *r2.Vec) r2.Vec {
	switch {
	case visible:
		return subject
	case last != nil:
		return *last
	default:
		return FrameCenter
	}
}
