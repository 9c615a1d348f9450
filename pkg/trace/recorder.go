// Package trace records per-tick tracker telemetry for offline tuning.
package trace

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/teslashibe/go-ptz/pkg/tracking"
)

// ErrNoSamples is returned when plotting a region nothing was recorded for.
var ErrNoSamples = errors.New("trace: no samples recorded")

// Sample is one recorded tick.
type Sample struct {
	Region string         `json:"region"`
	Debug  tracking.Debug `json:"debug"`
}

// Recorder collects tick samples per region. With a positive limit only the
// most recent samples of each region are kept.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	samples map[string][]Sample
}

// NewRecorder creates a recorder. limit <= 0 keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{
		limit:   limit,
		samples: make(map[string][]Sample),
	}
}

// Observe records one tick. Its signature matches autotrack.TickObserver.
func (r *Recorder) Observe(region string, res tracking.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := append(r.samples[region], Sample{Region: region, Debug: res.Debug})
	if r.limit > 0 && len(s) > r.limit {
		s = s[len(s)-r.limit:]
	}
	r.samples[region] = s
}

// Regions returns the recorded region ids, sorted.
func (r *Recorder) Regions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.samples))
	for id := range r.samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Samples returns a copy of a region's samples in tick order.
func (r *Recorder) Samples(region string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Sample, len(r.samples[region]))
	copy(out, r.samples[region])
	return out
}

// WriteJSONL writes every sample as one JSON object per line, region by region.
func (r *Recorder) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, id := range r.Regions() {
		for _, s := range r.Samples(id) {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
	}
	return nil
}
