package tracking

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// minDt is the floor applied to tick intervals so no division is ever by zero.
const minDt = 0.001

// clamp limits a value to a range
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// clampVec clamps each axis independently to ±limit.
func clampVec(v r2.Vec, limit float64) r2.Vec {
	return r2.Vec{
		X: clamp(v.X, -limit, limit),
		Y: clamp(v.Y, -limit, limit),
	}
}

func abs(v float64) float64 {
	return math.Abs(v)
}
