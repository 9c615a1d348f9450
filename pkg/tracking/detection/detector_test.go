package detection

import (
	"errors"
	"testing"
)

func TestDetection_Center(t *testing.T) {
	d := Detection{X: 0.2, Y: 0.4, W: 0.2, H: 0.4}
	c := d.Center()
	if c.X < 0.2999 || c.X > 0.3001 {
		t.Errorf("Expected center X=0.3, got %v", c.X)
	}
	if c.Y < 0.5999 || c.Y > 0.6001 {
		t.Errorf("Expected center Y=0.6, got %v", c.Y)
	}
}

func TestDetection_Area(t *testing.T) {
	d := Detection{W: 0.5, H: 0.2}
	if a := d.Area(); a < 0.0999 || a > 0.1001 {
		t.Errorf("Expected area 0.1, got %v", a)
	}
}

func TestFrame_Validate(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		wantErr bool
	}{
		{"empty detections", Frame{RegionID: "stage"}, false},
		{"valid box", Frame{RegionID: "stage", Detections: []Detection{{X: 0.1, Y: 0.1, W: 0.2, H: 0.3, Confidence: 0.9}}}, false},
		{"missing region", Frame{}, true},
		{"box out of range", Frame{RegionID: "stage", Detections: []Detection{{X: 1.2, W: 0.1, H: 0.1}}}, true},
		{"confidence out of range", Frame{RegionID: "stage", Detections: []Detection{{W: 0.1, H: 0.1, Confidence: 1.5}}}, true},
	}

	for _, tc := range tests {
		err := tc.frame.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestFrame_ValidateMissingRegion(t *testing.T) {
	err := Frame{}.Validate()
	if !errors.Is(err, ErrNoRegion) {
		t.Errorf("Expected ErrNoRegion, got %v", err)
	}
}
