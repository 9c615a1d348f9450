package trace

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	cameraColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	targetColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	errorColor  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

type series struct {
	label string
	color color.Color
	value func(Sample) float64
}

// SavePlot writes a PNG of one region's trace to path: commanded camera
// velocity, target velocity and predicted error over time. Pan is drawn solid
// and tilt dashed.
func (r *Recorder) SavePlot(region, path string) error {
	samples := r.Samples(region)
	if len(samples) == 0 {
		return fmt.Errorf("%w for region %s", ErrNoSamples, region)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("autotrack %s", region)
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "frame fraction (/s)"

	all := []series{
		{"camera pan", cameraColor, func(s Sample) float64 { return s.Debug.CameraVelocity.X }},
		{"target pan", targetColor, func(s Sample) float64 { return s.Debug.TargetVelocity.X }},
		{"error x", errorColor, func(s Sample) float64 { return s.Debug.Error.X }},
		{"camera tilt", cameraColor, func(s Sample) float64 { return s.Debug.CameraVelocity.Y }},
		{"target tilt", targetColor, func(s Sample) float64 { return s.Debug.TargetVelocity.Y }},
		{"error y", errorColor, func(s Sample) float64 { return s.Debug.Error.Y }},
	}

	start := samples[0].Debug.Timestamp
	for i, sr := range all {
		pts := make(plotter.XYs, len(samples))
		for j, s := range samples {
			pts[j] = plotter.XY{X: float64(s.Debug.Timestamp-start) / 1000, Y: sr.value(s)}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("trace: %s: %w", sr.label, err)
		}
		line.Color = sr.color
		line.Width = vg.Points(1)
		if i >= 3 {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		p.Legend.Add(sr.label, line)
	}

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("trace: save plot: %w", err)
	}
	return nil
}
