package tracking

import (
	"errors"
	"testing"
	"time"
)

func TestWithTuning_AppliesSetFields(t *testing.T) {
	cfg := DefaultConfig()

	next, err := cfg.WithTuning(TuningParams{
		MaxVelocity: ptr(0.9),
		NormalGains: &Gains{Kp: 1.0, Kd: 0.1},
		HoldMS:      ptr(int64(250)),
	})
	if err != nil {
		t.Fatalf("WithTuning failed: %v", err)
	}

	if next.MaxVelocity != 0.9 {
		t.Errorf("Expected MaxVelocity=0.9, got %v", next.MaxVelocity)
	}
	if next.NormalGains != (Gains{Kp: 1.0, Kd: 0.1}) {
		t.Errorf("Unexpected NormalGains: %+v", next.NormalGains)
	}
	if next.HoldDuration != 250*time.Millisecond {
		t.Errorf("Expected HoldDuration=250ms, got %v", next.HoldDuration)
	}
	// Untouched fields keep their values
	if next.MaxJerk != cfg.MaxJerk {
		t.Errorf("Expected MaxJerk unchanged, got %v", next.MaxJerk)
	}
	// The receiver is not modified
	if cfg.MaxVelocity != 1.2 {
		t.Errorf("Expected original MaxVelocity=1.2, got %v", cfg.MaxVelocity)
	}
}

func TestWithTuning_RejectsBrokenNesting(t *testing.T) {
	cfg := DefaultConfig()

	got, err := cfg.WithTuning(TuningParams{DeadZone: &Zone{Width: 0.9, Height: 0.9}})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigError, got %v", err)
	}
	if got != cfg {
		t.Error("Expected the previous config back on error")
	}
}

func TestTuningFromConfig_RoundTrip(t *testing.T) {
	cfg := AggressiveConfig()

	got, err := DefaultConfig().WithTuning(TuningFromConfig(cfg))
	if err != nil {
		t.Fatalf("WithTuning failed: %v", err)
	}

	// Phase tolerances are not tunable and equal in both presets
	if got != cfg {
		t.Errorf("Expected %+v, got %+v", cfg, got)
	}
}
