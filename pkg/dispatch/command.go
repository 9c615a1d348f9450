// Package dispatch turns tracker velocities into camera speed commands and
// delivers them to the PTZ backend.
package dispatch

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Hardware speed range. VISCA pan/tilt speeds run from 1 to 24; a tracker
// velocity of 1 frame/s maps to full speed.
const (
	HardwareSpeedScale = 24
	HardwareSpeedMax   = 24
)

// Command is one signed pan/tilt speed for one physical camera.
type Command struct {
	CameraIndex int `json:"camera_index"`
	PanSpeed    int `json:"pan_speed"`
	TiltSpeed   int `json:"tilt_speed"`
}

// IsStop reports whether the command halts both axes.
func (c Command) IsStop() bool {
	return c.PanSpeed == 0 && c.TiltSpeed == 0
}

// Mapping binds a tracked region to a physical camera.
// A nil CameraIndex means the region is not mapped and produces no commands.
type Mapping struct {
	CameraIndex *int `json:"camera_index" yaml:"camera_index"`
	InvertPan   bool `json:"invert_pan" yaml:"invert_pan"`
	InvertTilt  bool `json:"invert_tilt" yaml:"invert_tilt"`
}

// Mapped reports whether the region has a camera.
func (m Mapping) Mapped() bool {
	return m.CameraIndex != nil
}

// ToCommand converts a camera velocity in frame fractions per second into a
// hardware command. It returns false when the mapping has no camera.
func ToCommand(v r2.Vec, m Mapping) (Command, bool) {
	if !m.Mapped() {
		return Command{}, false
	}
	pan, tilt := toSpeed(v.X), toSpeed(v.Y)
	if m.InvertPan {
		pan = -pan
	}
	if m.InvertTilt {
		tilt = -tilt
	}
	return Command{CameraIndex: *m.CameraIndex, PanSpeed: pan, TiltSpeed: tilt}, true
}

// StopCommand returns a command that halts the mapped camera.
func StopCommand(m Mapping) (Command, bool) {
	return ToCommand(r2.Vec{}, m)
}

// toSpeed scales and rounds half away from zero, then clamps to the hardware range.
func toSpeed(v float64) int {
	s := math.Round(v * HardwareSpeedScale)
	return int(math.Max(-HardwareSpeedMax, math.Min(HardwareSpeedMax, s)))
}
