package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func camera(i int) *int { return &i }

func TestToCommand_Unmapped(t *testing.T) {
	_, ok := ToCommand(r2.Vec{X: 0.5}, Mapping{})
	assert.False(t, ok, "unmapped regions produce no command")
}

func TestToCommand_Scaling(t *testing.T) {
	m := Mapping{CameraIndex: camera(2)}

	tests := []struct {
		name      string
		v         r2.Vec
		pan, tilt int
	}{
		{"rest", r2.Vec{}, 0, 0},
		{"half speed", r2.Vec{X: 0.5, Y: -0.25}, 12, -6},
		{"rounds half away from zero", r2.Vec{X: 0.0625, Y: -0.0625}, 2, -2},
		{"below one step", r2.Vec{X: 0.02, Y: -0.02}, 0, 0},
		{"clamped", r2.Vec{X: 1.2, Y: -3}, HardwareSpeedMax, -HardwareSpeedMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := ToCommand(tt.v, m)
			assert.True(t, ok)
			assert.Equal(t, Command{CameraIndex: 2, PanSpeed: tt.pan, TiltSpeed: tt.tilt}, cmd)
		})
	}
}

func TestToCommand_Inversion(t *testing.T) {
	m := Mapping{CameraIndex: camera(0), InvertPan: true}
	cmd, _ := ToCommand(r2.Vec{X: 0.5, Y: 0.5}, m)
	assert.Equal(t, -12, cmd.PanSpeed)
	assert.Equal(t, 12, cmd.TiltSpeed)

	m = Mapping{CameraIndex: camera(0), InvertTilt: true}
	cmd, _ = ToCommand(r2.Vec{X: 0.5, Y: 0.5}, m)
	assert.Equal(t, 12, cmd.PanSpeed)
	assert.Equal(t, -12, cmd.TiltSpeed)
}

func TestStopCommand(t *testing.T) {
	cmd, ok := StopCommand(Mapping{CameraIndex: camera(3), InvertPan: true})
	assert.True(t, ok)
	assert.True(t, cmd.IsStop())
	assert.Equal(t, 3, cmd.CameraIndex)

	_, ok = StopCommand(Mapping{})
	assert.False(t, ok)
}
