package tracking

import (
	"fmt"
	"time"
)

// Zone is the full extent of a rectangular region centred on the frame,
// expressed as fractions of frame width and height.
type Zone struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Contains reports whether an error offset from frame centre lies inside the zone.
func (z Zone) Contains(errX, errY float64) bool {
	return abs(errX) <= z.Width/2 && abs(errY) <= z.Height/2
}

// Gains is a proportional/derivative gain pair.
type Gains struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Kd float64 `json:"kd" yaml:"kd"`
}

// Config holds all tunable parameters for one PTZ tracker.
// A Config is treated as immutable once a tracker starts using it.
type Config struct {
	// Motion estimation (EMA weight of the newest sample, 0-1)
	SmoothingAlpha      float64
	SmoothingAlphaAccel float64

	// Prediction horizon in seconds
	Lookahead float64

	// Zones, innermost first. The full frame is the implicit outer zone.
	DeadZone     Zone
	NormalZone   Zone
	UrgentZone   Zone
	CriticalZone Zone

	// PD gains per zone (the dead zone has none)
	NormalGains   Gains
	UrgentGains   Gains
	CriticalGains Gains

	// Motion limits in frame fractions per second, s², s³
	MaxVelocity     float64
	MaxAcceleration float64
	MaxJerk         float64

	// Detection loss
	HoldDuration           time.Duration // Keep tracking this long without a detection
	VelocityDecayPerSecond float64       // Fraction of velocity shed per second once lost
	VelocityNoiseFloor     float64       // Speeds below this snap to zero

	// Phase classification tolerances
	StationarySpeed float64
	ConstantAccel   float64
}

// DefaultConfig returns the recommended configuration for a stage PTZ camera.
func DefaultConfig() Config {
	return Config{
		SmoothingAlpha:      0.3,
		SmoothingAlphaAccel: 0.3,
		Lookahead:           0.4,

		DeadZone:     Zone{Width: 0.3, Height: 0.3},
		NormalZone:   Zone{Width: 0.6, Height: 0.6},
		UrgentZone:   Zone{Width: 0.8, Height: 0.8},
		CriticalZone: Zone{Width: 0.98, Height: 0.98},

		NormalGains:   Gains{Kp: 0.8, Kd: 0.2},
		UrgentGains:   Gains{Kp: 1.5, Kd: 0.4},
		CriticalGains: Gains{Kp: 3.0, Kd: 0.8},

		MaxVelocity:     1.2,
		MaxAcceleration: 2.5,
		MaxJerk:         15,

		HoldDuration:           400 * time.Millisecond,
		VelocityDecayPerSecond: 0.9,
		VelocityNoiseFloor:     0.005,

		StationarySpeed: 0.02,
		ConstantAccel:   0.05,
	}
}

// SlowConfig returns a configuration for slower, smoother tracking
func SlowConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingAlpha = 0.2
	cfg.DeadZone = Zone{Width: 0.4, Height: 0.4}
	cfg.NormalGains = Gains{Kp: 0.5, Kd: 0.25} // More dampening
	cfg.UrgentGains = Gains{Kp: 1.0, Kd: 0.4}
	cfg.MaxVelocity = 0.8
	cfg.MaxAcceleration = 1.5
	cfg.MaxJerk = 8
	cfg.HoldDuration = 600 * time.Millisecond
	return cfg
}

// AggressiveConfig returns a configuration for fast-moving subjects
func AggressiveConfig() Config {
	cfg := DefaultConfig()
	cfg.SmoothingAlpha = 0.5 // Trust new readings more
	cfg.SmoothingAlphaAccel = 0.4
	cfg.Lookahead = 0.5
	cfg.DeadZone = Zone{Width: 0.2, Height: 0.2}
	cfg.NormalGains = Gains{Kp: 1.2, Kd: 0.15}
	cfg.UrgentGains = Gains{Kp: 2.0, Kd: 0.3}
	cfg.CriticalGains = Gains{Kp: 4.0, Kd: 0.6}
	cfg.MaxVelocity = 1.6
	cfg.MaxAcceleration = 4.0
	cfg.MaxJerk = 25
	return cfg
}

// NewConfig validates cfg and returns it unchanged when it is usable.
func NewConfig(cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the zone nesting and limit invariants.
func (c Config) Validate() error {
	if err := unitInterval("SmoothingAlpha", c.SmoothingAlpha); err != nil {
		return err
	}
	if err := unitInterval("SmoothingAlphaAccel", c.SmoothingAlphaAccel); err != nil {
		return err
	}
	if c.Lookahead < 0 {
		return &ConfigError{Field: "Lookahead", Message: "must not be negative"}
	}

	zones := []struct {
		name string
		zone Zone
	}{
		{"DeadZone", c.DeadZone},
		{"NormalZone", c.NormalZone},
		{"UrgentZone", c.UrgentZone},
		{"CriticalZone", c.CriticalZone},
		{"frame", Zone{Width: 1, Height: 1}},
	}
	for i, z := range zones[:len(zones)-1] {
		if z.zone.Width < 0 || z.zone.Height < 0 {
			return &ConfigError{Field: z.name, Message: "extents must not be negative"}
		}
		outer := zones[i+1]
		if outer.name == "frame" {
			if z.zone.Width > 1 || z.zone.Height > 1 {
				return &ConfigError{Field: z.name, Message: "must fit inside the frame"}
			}
			continue
		}
		if z.zone.Width >= outer.zone.Width || z.zone.Height >= outer.zone.Height {
			return &ConfigError{
				Field:   z.name,
				Message: fmt.Sprintf("must be strictly inside %s", outer.name),
			}
		}
	}

	gains := []struct {
		name  string
		gains Gains
	}{
		{"NormalGains", c.NormalGains},
		{"UrgentGains", c.UrgentGains},
		{"CriticalGains", c.CriticalGains},
	}
	for _, g := range gains {
		if g.gains.Kp < 0 || g.gains.Kd < 0 {
			return &ConfigError{Field: g.name, Message: "gains must not be negative"}
		}
	}

	limits := []struct {
		name  string
		value float64
	}{
		{"MaxVelocity", c.MaxVelocity},
		{"MaxAcceleration", c.MaxAcceleration},
		{"MaxJerk", c.MaxJerk},
		{"VelocityNoiseFloor", c.VelocityNoiseFloor},
	}
	for _, l := range limits {
		if !(l.value > 0) {
			return &ConfigError{Field: l.name, Message: "must be positive"}
		}
	}

	if c.HoldDuration < 0 {
		return &ConfigError{Field: "HoldDuration", Message: "must not be negative"}
	}
	if err := unitInterval("VelocityDecayPerSecond", c.VelocityDecayPerSecond); err != nil {
		return err
	}
	if c.StationarySpeed < 0 || c.ConstantAccel < 0 {
		return &ConfigError{Field: "StationarySpeed", Message: "phase tolerances must not be negative"}
	}
	return nil
}

// Gains returns the PD gains for a zone. The dead zone has zero gains and the
// region beyond the critical zone reuses the critical gains.
func (c Config) Gains(zone ZoneKind) Gains {
	switch zone {
	case ZoneNormal:
		return c.NormalGains
	case ZoneUrgent:
		return c.UrgentGains
	case ZoneCritical, ZoneNone:
		return c.CriticalGains
	default:
		return Gains{}
	}
}

func unitInterval(field string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return &ConfigError{Field: field, Message: "must be within [0, 1]"}
	}
	return nil
}
