package tracking

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/teslashibe/go-ptz/pkg/tracking/detection"
)

// SelectSubject picks the subject centre to track this tick.
//
// Once a previous centre exists the nearest detection wins, even over a more
// confident one, so an unrelated subject entering the frame does not steal the
// camera. Without history the most confident detection wins; ties go to the
// earlier detection. Returns false when there are no detections.
func SelectSubject(dets []detection.Detection, prev *r2.Vec) (r2.Vec, bool) {
	if len(dets) == 0 {
		return r2.Vec{}, false
	}

	best := 0
	if prev != nil {
		bestDist := r2.Norm2(r2.Sub(dets[0].Center(), *prev))
		for i := 1; i < len(dets); i++ {
			if d := r2.Norm2(r2.Sub(dets[i].Center(), *prev)); d < bestDist {
				bestDist = d
				best = i
			}
		}
		return dets[best].Center(), true
	}

	for i := 1; i < len(dets); i++ {
		if dets[i].Confidence > dets[best].Confidence {
			best = i
		}
	}
	return dets[best].Center(), true
}
