package tracking

import "time"

// TuningParams holds the real-time adjustable tracking parameters.
// These can be modified via the tuning API without restarting the daemon.
// Nil fields are left unchanged.
type TuningParams struct {
	// Smoothing
	SmoothingAlpha      *float64 `json:"smoothing_alpha,omitempty" yaml:"smoothing_alpha,omitempty"`             // EMA alpha (0.3=smooth, 0.6=responsive)
	SmoothingAlphaAccel *float64 `json:"smoothing_alpha_accel,omitempty" yaml:"smoothing_alpha_accel,omitempty"` // EMA alpha for acceleration
	LookaheadSeconds    *float64 `json:"lookahead_seconds,omitempty" yaml:"lookahead_seconds,omitempty"`         // Prediction horizon

	// Zones
	DeadZone     *Zone `json:"dead_zone,omitempty" yaml:"dead_zone,omitempty"`
	NormalZone   *Zone `json:"normal_zone,omitempty" yaml:"normal_zone,omitempty"`
	UrgentZone   *Zone `json:"urgent_zone,omitempty" yaml:"urgent_zone,omitempty"`
	CriticalZone *Zone `json:"critical_zone,omitempty" yaml:"critical_zone,omitempty"`

	// PD gains
	NormalGains   *Gains `json:"normal_gains,omitempty" yaml:"normal_gains,omitempty"`
	UrgentGains   *Gains `json:"urgent_gains,omitempty" yaml:"urgent_gains,omitempty"`
	CriticalGains *Gains `json:"critical_gains,omitempty" yaml:"critical_gains,omitempty"`

	// Motion limits
	MaxVelocity     *float64 `json:"max_velocity,omitempty" yaml:"max_velocity,omitempty"`
	MaxAcceleration *float64 `json:"max_acceleration,omitempty" yaml:"max_acceleration,omitempty"`
	MaxJerk         *float64 `json:"max_jerk,omitempty" yaml:"max_jerk,omitempty"`

	// Detection loss
	HoldMS                 *int64   `json:"hold_ms,omitempty" yaml:"hold_ms,omitempty"`
	VelocityDecayPerSecond *float64 `json:"velocity_decay_per_second,omitempty" yaml:"velocity_decay_per_second,omitempty"`
	VelocityNoiseFloor     *float64 `json:"velocity_noise_floor,omitempty" yaml:"velocity_noise_floor,omitempty"`
}

// TuningFromConfig returns every tunable parameter of cfg.
func TuningFromConfig(cfg Config) TuningParams {
	return TuningParams{
		SmoothingAlpha:         ptr(cfg.SmoothingAlpha),
		SmoothingAlphaAccel:    ptr(cfg.SmoothingAlphaAccel),
		LookaheadSeconds:       ptr(cfg.Lookahead),
		DeadZone:               ptr(cfg.DeadZone),
		NormalZone:             ptr(cfg.NormalZone),
		UrgentZone:             ptr(cfg.UrgentZone),
		CriticalZone:           ptr(cfg.CriticalZone),
		NormalGains:            ptr(cfg.NormalGains),
		UrgentGains:            ptr(cfg.UrgentGains),
		CriticalGains:          ptr(cfg.CriticalGains),
		MaxVelocity:            ptr(cfg.MaxVelocity),
		MaxAcceleration:        ptr(cfg.MaxAcceleration),
		MaxJerk:                ptr(cfg.MaxJerk),
		HoldMS:                 ptr(cfg.HoldDuration.Milliseconds()),
		VelocityDecayPerSecond: ptr(cfg.VelocityDecayPerSecond),
		VelocityNoiseFloor:     ptr(cfg.VelocityNoiseFloor),
	}
}

// WithTuning returns a copy of c with params applied. The result is validated
// as a whole, so a change that breaks zone nesting is rejected and c is kept.
func (c Config) WithTuning(params TuningParams) (Config, error) {
	next := c

	set(&next.SmoothingAlpha, params.SmoothingAlpha)
	set(&next.SmoothingAlphaAccel, params.SmoothingAlphaAccel)
	set(&next.Lookahead, params.LookaheadSeconds)

	set(&next.DeadZone, params.DeadZone)
	set(&next.NormalZone, params.NormalZone)
	set(&next.UrgentZone, params.UrgentZone)
	set(&next.CriticalZone, params.CriticalZone)

	set(&next.NormalGains, params.NormalGains)
	set(&next.UrgentGains, params.UrgentGains)
	set(&next.CriticalGains, params.CriticalGains)

	set(&next.MaxVelocity, params.MaxVelocity)
	set(&next.MaxAcceleration, params.MaxAcceleration)
	set(&next.MaxJerk, params.MaxJerk)

	if params.HoldMS != nil {
		next.HoldDuration = time.Duration(*params.HoldMS) * time.Millisecond
	}
	set(&next.VelocityDecayPerSecond, params.VelocityDecayPerSecond)
	set(&next.VelocityNoiseFloor, params.VelocityNoiseFloor)

	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
