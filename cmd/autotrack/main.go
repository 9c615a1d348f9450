// autotrack - PTZ autotracking daemon
// Turns detector frames into jerk-limited pan/tilt speed commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/teslashibe/go-ptz/internal/config"
	"github.com/teslashibe/go-ptz/internal/httpc"
	"github.com/teslashibe/go-ptz/internal/log"
	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/dispatch"
	"github.com/teslashibe/go-ptz/pkg/ingest"
	"github.com/teslashibe/go-ptz/pkg/web"
)

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Setup(log.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Error("autotrack failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags builds the configuration: defaults, then the YAML file, then
// AUTOTRACK_* env vars, then flags.
func parseFlags() (config.Config, error) {
	configPath := flag.String("config", "", "Path to YAML config file")
	listen := flag.String("listen", "", "API listen address (overrides AUTOTRACK_LISTEN)")
	dispatchURL := flag.String("dispatch-url", "", "PTZ backend base URL (overrides AUTOTRACK_DISPATCH_URL)")
	detectorWS := flag.String("detector-ws", "", "Detector websocket URL (overrides AUTOTRACK_DETECTOR_WS)")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}
	config.ApplyEnv(&cfg)

	var o config.FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			o.Listen = listen
		case "dispatch-url":
			o.DispatchURL = dispatchURL
		case "detector-ws":
			o.DetectorWS = detectorWS
		}
	})
	if *debug {
		level := "debug"
		o.LogLevel = &level
	}
	o.Apply(&cfg)

	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	regions, err := cfg.BuildRegions()
	if err != nil {
		return err
	}

	var sink dispatch.Sink
	if cfg.Dispatch.URL != "" {
		httpSink := dispatch.NewHTTPSink(cfg.Dispatch.URL, httpc.NewClient(cfg.Dispatch.Timeout()))
		async := dispatch.NewAsyncSink(httpSink, cfg.Dispatch.QueueSize, cfg.Dispatch.Timeout())
		defer func() {
			async.Close()
			log.Info("dispatch stopped", "dropped", async.Dropped(), "failed", async.Failed())
		}()
		sink = async
		log.Info("dispatching commands", "url", httpSink.URL())
	} else {
		log.Warn("no dispatch url configured; commands are computed but not sent")
	}

	mgr, err := autotrack.NewManager(regions, sink, autotrack.WithQueueSize(cfg.Detector.FrameQueue))
	if err != nil {
		return err
	}
	srv := web.NewServer(cfg.Server.Listen, mgr)

	var wg sync.WaitGroup
	errc := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		mgr.Run(ctx)
	}()

	if cfg.Detector.WsURL != "" {
		client := ingest.NewClient(cfg.Detector.WsURL, mgr.Submit)
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.Run(ctx)
		}()
	}

	go func() {
		if err := srv.Start(ctx); err != nil {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down...")
	case err = <-errc:
	}

	cancel()
	if shutdownErr := srv.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	wg.Wait()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
