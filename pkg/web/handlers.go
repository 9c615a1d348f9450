package web

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/hub"
	"github.com/teslashibe/go-ptz/pkg/tracking"
	"github.com/teslashibe/go-ptz/pkg/tracking/detection"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Regions []autotrack.Status `json:"regions"`
	Debug   hub.Stats          `json:"debug"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// handleStatus returns every region's state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Regions: s.tracker.Snapshot(),
		Debug:   s.debugHub.Stats(),
	})
}

// handleRegion returns one region's state
func (s *Server) handleRegion(c *fiber.Ctx) error {
	st, err := s.tracker.Status(c.Params("id"))
	if err != nil {
		return regionError(c, err)
	}
	return c.JSON(st)
}

// handleFrame queues one detection frame
func (s *Server) handleFrame(c *fiber.Ctx) error {
	var f detection.Frame
	if err := c.BodyParser(&f); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	if err := s.tracker.Submit(f); err != nil {
		if errors.Is(err, autotrack.ErrQueueFull) {
			return fail(c, fiber.StatusTooManyRequests, err)
		}
		return fail(c, fiber.StatusBadRequest, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
}

// handleEnable starts a new tracking session for a region
func (s *Server) handleEnable(c *fiber.Ctx) error {
	id := c.Params("id")
	session, err := s.tracker.Enable(id)
	if err != nil {
		return regionError(c, err)
	}
	s.publishStatus(id)
	return c.JSON(fiber.Map{"region": id, "enabled": true, "session_id": session})
}

// handleDisable pauses a region and stops its camera
func (s *Server) handleDisable(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.tracker.Disable(c.UserContext(), id); err != nil {
		return regionError(c, err)
	}
	s.publishStatus(id)
	return c.JSON(fiber.Map{"region": id, "enabled": false})
}

// handleGetTuning returns a region's tunable parameters
func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	cfg, err := s.tracker.Config(c.Params("id"))
	if err != nil {
		return regionError(c, err)
	}
	return c.JSON(tracking.TuningFromConfig(cfg))
}

// handlePutTuning applies a partial tuning update
func (s *Server) handlePutTuning(c *fiber.Ctx) error {
	var params tracking.TuningParams
	if err := c.BodyParser(&params); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	id := c.Params("id")
	cfg, err := s.tracker.Tune(id, params)
	if err != nil {
		return regionError(c, err)
	}
	s.publishStatus(id)
	return c.JSON(tracking.TuningFromConfig(cfg))
}

// handleDebugWS streams per-tick debug events, optionally only for the
// regions named in ?region=a,b
func (s *Server) handleDebugWS(c *websocket.Conn) {
	client, err := hub.NewClient(s.debugHub, c, hub.ParseRegions(c.Query("region"))...)
	if err != nil {
		c.Close()
		return
	}
	client.Run()
}

// handleFramesWS ingests one JSON frame per text message
func (s *Server) handleFramesWS(c *websocket.Conn) {
	defer c.Close()
	s.logger.Info("frame stream connected", "remote", c.RemoteAddr().String())

	for {
		kind, data, err := c.ReadMessage()
		if err != nil {
			s.logger.Info("frame stream closed", "error", err)
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		var f detection.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.logger.Warn("bad frame on stream", "error", err)
			continue
		}
		if err := s.tracker.Submit(f); err != nil {
			s.logger.Warn("frame rejected", "region", f.RegionID, "error", err)
		}
	}
}

func regionError(c *fiber.Ctx, err error) error {
	var cfgErr *tracking.ConfigError
	switch {
	case errors.Is(err, autotrack.ErrUnknownRegion):
		return fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, autotrack.ErrInactiveRegion):
		return fail(c, fiber.StatusConflict, err)
	case errors.As(err, &cfgErr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: cfgErr.Error(), Field: cfgErr.Field})
	default:
		return fail(c, fiber.StatusInternalServerError, err)
	}
}

func fail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
