package tracking

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestDecayFactor(t *testing.T) {
	cfg := DefaultConfig()

	// 90% per second leaves 0.1^dt
	if f := DecayFactor(cfg, 0.5); !approx(f, math.Pow(0.1, 0.5), 1e-12) {
		t.Errorf("Expected 0.1^0.5, got %v", f)
	}

	cfg.VelocityDecayPerSecond = 0
	if f := DecayFactor(cfg, 1); f >= 1 {
		t.Errorf("Expected decay factor below 1 even without decay rate, got %v", f)
	}

	cfg.VelocityDecayPerSecond = 1
	if f := DecayFactor(cfg, 0.1); f != 0 {
		t.Errorf("Expected immediate stop at full decay, got %v", f)
	}
}

func TestDecayTowardRest(t *testing.T) {
	cfg := DefaultConfig()

	v := DecayTowardRest(cfg, r2.Vec{X: 0.5, Y: -0.5}, 0.1)
	want := 0.5 * math.Pow(0.1, 0.1)
	if !approx(v.X, want, 1e-12) || !approx(v.Y, -want, 1e-12) {
		t.Errorf("Expected (±%v), got %+v", want, v)
	}
}

func TestDecayTowardRest_SnapsBelowNoiseFloor(t *testing.T) {
	cfg := DefaultConfig()

	v := DecayTowardRest(cfg, r2.Vec{X: 0.0055, Y: 0.5}, 0.1)
	if v.X != 0 {
		t.Errorf("Expected X snapped to exactly zero, got %v", v.X)
	}
	if v.Y == 0 {
		t.Error("Expected Y to keep decaying")
	}

	if got := DecayTowardRest(cfg, r2.Vec{}, 0.1); got != (r2.Vec{}) {
		t.Errorf("Expected rest to stay at rest, got %+v", got)
	}
}

func TestRelaxAcceleration(t *testing.T) {
	cfg := DefaultConfig()

	a := RelaxAcceleration(cfg, r2.Vec{X: 2, Y: -0.5}, 0.1)
	if !approx(a.X, 0.5, 1e-12) {
		t.Errorf("Expected X relaxed by the jerk limit to 0.5, got %v", a.X)
	}
	if a.Y != 0 {
		t.Errorf("Expected Y relaxed to zero, got %v", a.Y)
	}
}

func TestIsLost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HoldDuration = 400 * time.Millisecond
	s := NewState()

	if !isLost(cfg, s, 1000, false) {
		t.Error("Expected a tracker that never saw a subject to be lost")
	}

	s.LastDetection = ptr(int64(1000))
	if isLost(cfg, s, 1400, false) {
		t.Error("Expected to hold at exactly the hold duration")
	}
	if !isLost(cfg, s, 1401, false) {
		t.Error("Expected to be lost past the hold duration")
	}
	if isLost(cfg, s, 5000, true) {
		t.Error("Expected a visible subject never to be lost")
	}
}
