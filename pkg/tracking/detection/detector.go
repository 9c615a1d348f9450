// Package detection defines the per-tick detection input of the PTZ tracker.
// Detections are produced by an external detector; this package never runs one.
package detection

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNoRegion is returned when a frame does not name its region.
var ErrNoRegion = errors.New("detection: frame has no region id")

// Detection represents a detected subject
type Detection struct {
	X          float64 `json:"x"`          // Top-left corner (0-1 normalized)
	Y          float64 `json:"y"`          // Top-left corner (0-1 normalized)
	W          float64 `json:"width"`      // Width (0-1 normalized)
	H          float64 `json:"height"`     // Height (0-1 normalized)
	Confidence float64 `json:"confidence"` // Detection confidence (0-1)
}

// Center returns the center point of the detection
func (d Detection) Center() r2.Vec {
	return r2.Vec{X: d.X + d.W/2, Y: d.Y + d.H/2}
}

// Area returns the area of the bounding box
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Frame is one tick's worth of detections for a single tracked region.
type Frame struct {
	RegionID   string      `json:"region_id"`
	Detections []Detection `json:"detections"`
	Timestamp  int64       `json:"timestamp"` // Milliseconds, monotonically increasing per region
}

// Validate checks that a frame is addressable and its boxes are normalized.
func (f Frame) Validate() error {
	if f.RegionID == "" {
		return ErrNoRegion
	}
	for i, d := range f.Detections {
		if !inUnit(d.X) || !inUnit(d.Y) || !inUnit(d.W) || !inUnit(d.H) {
			return fmt.Errorf("detection: box %d is not normalized: %+v", i, d)
		}
		if !inUnit(d.Confidence) {
			return fmt.Errorf("detection: box %d confidence %.3f outside [0, 1]", i, d.Confidence)
		}
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
