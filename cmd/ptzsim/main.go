// ptzsim - replay detection frames through the autotracker offline
//
// Frames are read as JSON lines (one detection.Frame per line) from a file or
// stdin, or generated with -synthetic. Every command is printed and the run
// can be plotted for tuning.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/teslashibe/go-ptz/internal/config"
	"github.com/teslashibe/go-ptz/internal/log"
	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/dispatch"
	"github.com/teslashibe/go-ptz/pkg/trace"
	"github.com/teslashibe/go-ptz/pkg/tracking"
	"github.com/teslashibe/go-ptz/pkg/tracking/detection"
)

// maxLine bounds one JSON frame line.
const maxLine = 1 << 20

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (regions and tuning)")
	framesPath := flag.String("frames", "-", "JSON-lines frame file, - for stdin")
	synthetic := flag.Float64("synthetic", 0, "Generate this many seconds of a subject crossing the frame instead of reading frames")
	plotDir := flag.String("plot", "", "Write one PNG per region into this directory")
	tracePath := flag.String("trace", "", "Write per-tick debug samples as JSON lines")
	quiet := flag.Bool("quiet", false, "Do not print commands")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	level := "warn"
	if *debug {
		level = "debug"
	}
	log.Setup(log.Options{Level: level, Output: os.Stderr})

	if err := run(*configPath, *framesPath, *synthetic, *plotDir, *tracePath, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, framesPath string, synthetic float64, plotDir, tracePath string, quiet bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	regions, err := cfg.BuildRegions()
	if err != nil {
		return err
	}

	rec := trace.NewRecorder(0)
	mgr, err := autotrack.NewManager(regions, dispatch.NewRecorder())
	if err != nil {
		return err
	}
	mgr.OnTick(rec.Observe)

	var frames <-chan detection.Frame
	errc := make(chan error, 1)
	if synthetic > 0 {
		frames = syntheticFrames(regions[0].ID, synthetic)
		errc <- nil
	} else {
		in, closeIn, err := openInput(framesPath)
		if err != nil {
			return err
		}
		defer closeIn()
		frames = readFrames(in, errc)
	}

	ctx := context.Background()
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	ticks := 0
	for f := range frames {
		res, ok := mgr.Process(ctx, f)
		if !ok {
			continue
		}
		ticks++
		if quiet {
			continue
		}
		st, _ := mgr.Status(f.RegionID)
		printTick(out, f, res, st.LastCommand)
	}
	if err := <-errc; err != nil {
		return err
	}
	fmt.Fprintf(out, "%d ticks over %d regions\n", ticks, len(rec.Regions()))

	if tracePath != "" {
		if err := writeTrace(rec, tracePath); err != nil {
			return err
		}
	}
	if plotDir != "" {
		for _, id := range rec.Regions() {
			path := filepath.Join(plotDir, id+".png")
			if err := rec.SavePlot(id, path); err != nil {
				return err
			}
			fmt.Fprintf(out, "plot: %s\n", path)
		}
	}
	return nil
}

func printTick(w io.Writer, f detection.Frame, res tracking.Result, cmd *dispatch.Command) {
	d := res.Debug
	fmt.Fprintf(w, "%8d %-10s %-12s %-8s v=(%+.3f,%+.3f)", d.Timestamp, f.RegionID, d.Phase, d.Zone,
		res.CameraVelocity.X, res.CameraVelocity.Y)
	if cmd != nil {
		fmt.Fprintf(w, " cam=%d pan=%+d tilt=%+d", cmd.CameraIndex, cmd.PanSpeed, cmd.TiltSpeed)
	}
	fmt.Fprintln(w)
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(config.ExpandPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("open frames: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// readFrames decodes one frame per non-empty line. Decode errors stop the
// replay and are reported on errc.
func readFrames(r io.Reader, errc chan<- error) <-chan detection.Frame {
	out := make(chan detection.Frame, 64)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), maxLine)
		line := 0
		for sc.Scan() {
			line++
			if len(sc.Bytes()) == 0 {
				continue
			}
			var f detection.Frame
			if err := json.Unmarshal(sc.Bytes(), &f); err != nil {
				errc <- fmt.Errorf("line %d: %w", line, err)
				return
			}
			if err := f.Validate(); err != nil {
				errc <- fmt.Errorf("line %d: %w", line, err)
				return
			}
			out <- f
		}
		errc <- sc.Err()
	}()
	return out
}

// syntheticFrames walks a subject across the frame and back at 30 fps,
// dropping out of view for half a second in the middle of the run.
func syntheticFrames(region string, seconds float64) <-chan detection.Frame {
	out := make(chan detection.Frame, 64)
	go func() {
		defer close(out)
		const fps = 30
		n := int(seconds * fps)
		for i := 0; i < n; i++ {
			t := float64(i) / fps
			f := detection.Frame{RegionID: region, Timestamp: int64(math.Round(t * 1000))}

			gap := math.Abs(t-seconds/2) < 0.25
			if !gap {
				cx := 0.5 + 0.35*math.Sin(2*math.Pi*t/8)
				cy := 0.5 + 0.05*math.Sin(2*math.Pi*t/3)
				f.Detections = []detection.Detection{{X: cx - 0.06, Y: cy - 0.15, W: 0.12, H: 0.3, Confidence: 0.9}}
			}
			out <- f
		}
	}()
	return out
}

func writeTrace(rec *trace.Recorder, path string) error {
	f, err := os.Create(config.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := rec.WriteJSONL(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
