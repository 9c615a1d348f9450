// Package web serves the autotrack control API and the live debug stream.
package web

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-ptz/internal/log"
	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/hub"
	"github.com/teslashibe/go-ptz/pkg/tracking"
	"github.com/teslashibe/go-ptz/pkg/tracking/detection"
)

// Tracker is the part of the autotrack manager the API drives.
type Tracker interface {
	Submit(frame detection.Frame) error
	Snapshot() []autotrack.Status
	Status(id string) (autotrack.Status, error)
	Enable(id string) (string, error)
	Disable(ctx context.Context, id string) error
	Config(id string) (tracking.Config, error)
	Tune(id string, params tracking.TuningParams) (tracking.Config, error)
	OnTick(fn autotrack.TickObserver)
}

// Server is the autotrack API server
type Server struct {
	app     *fiber.App
	addr    string
	tracker Tracker
	logger  *slog.Logger

	// Per-tick debug telemetry for dashboards
	debugHub *hub.Hub
}

// NewServer creates a server for tracker listening on addr, e.g. ":8090".
func NewServer(addr string, tracker Tracker) *Server {
	s := &Server{
		addr:     addr,
		tracker:  tracker,
		logger:   log.With("component", "web"),
		debugHub: hub.New("debug"),
	}

	tracker.OnTick(s.publishTick)

	app := fiber.New(fiber.Config{
		AppName:               "go-ptz autotrack",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	// CORS for browser dashboards
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/frames", s.handleFrame)
	api.Get("/regions/:id", s.handleRegion)
	api.Post("/regions/:id/enable", s.handleEnable)
	api.Post("/regions/:id/disable", s.handleDisable)
	api.Get("/regions/:id/tuning", s.handleGetTuning)
	api.Put("/regions/:id/tuning", s.handlePutTuning)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/debug", websocket.New(s.handleDebugWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// DebugHub returns the hub carrying per-tick telemetry.
func (s *Server) DebugHub() *hub.Hub {
	return s.debugHub
}

// Start runs the debug hub and serves until the listener fails or Shutdown
// is called. The hub stops with ctx.
func (s *Server) Start(ctx context.Context) error {
	go s.debugHub.Run(ctx)
	s.logger.Info("autotrack API listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// publishStatus tells debug clients that a region was reconfigured.
func (s *Server) publishStatus(regionID string) {
	if s.debugHub.ClientCount() == 0 {
		return
	}
	st, err := s.tracker.Status(regionID)
	if err != nil {
		return
	}
	if err := s.debugHub.Publish(hub.EventStatus, regionID, st); err != nil {
		s.logger.Warn("encode status event", "region", regionID, "error", err)
	}
}

func (s *Server) publishTick(regionID string, r tracking.Result) {
	if s.debugHub.ClientCount() == 0 {
		return
	}
	if err := s.debugHub.Publish(hub.EventTick, regionID, r.Debug); err != nil {
		s.logger.Warn("encode tick event", "region", regionID, "error", err)
	}
}
