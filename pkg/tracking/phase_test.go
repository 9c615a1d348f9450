package tracking

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestClassifyPhase(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name    string
		visible bool
		lost    bool
		world   r2.Vec
		accel   r2.Vec
		want    Phase
	}{
		{"lost", false, true, r2.Vec{X: 1}, r2.Vec{}, PhaseLost},
		{"holding", false, false, r2.Vec{X: 1}, r2.Vec{}, PhaseTracking},
		{"stationary", true, false, r2.Vec{X: 0.01}, r2.Vec{X: 1}, PhaseStationary},
		{"constant", true, false, r2.Vec{X: 0.5}, r2.Vec{X: 0.01}, PhaseConstant},
		{"accelerating", true, false, r2.Vec{X: 0.5}, r2.Vec{X: 0.5}, PhaseAccelerating},
		{"decelerating", true, false, r2.Vec{X: 0.5}, r2.Vec{X: -0.5}, PhaseDecelerating},
	}

	for _, tc := range tests {
		if got := ClassifyPhase(cfg, tc.visible, tc.lost, tc.world, tc.accel); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
