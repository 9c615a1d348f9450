// Package autotrack runs one tracker per region and dispatches the resulting
// camera commands.
package autotrack

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-ptz/pkg/dispatch"
	"github.com/teslashibe/go-ptz/pkg/tracking"
)

var (
	// ErrUnknownRegion is returned for a region id the manager does not own.
	ErrUnknownRegion = errors.New("autotrack: unknown region")
	// ErrInactiveRegion is returned when enabling a region that is not active.
	ErrInactiveRegion = errors.New("autotrack: region is not active")
	// ErrQueueFull is returned by Submit when the frame queue is full.
	ErrQueueFull = errors.New("autotrack: frame queue full")
)

// DefaultFrameQueue is the default frame buffer between ingest and the loop.
const DefaultFrameQueue = 32

// RegionConfig describes one tracked region (a virtual camera).
type RegionConfig struct {
	ID       string
	Active   bool
	Mapping  dispatch.Mapping
	Tracking tracking.Config
}

// Validate checks the region id and its tracking config.
func (r RegionConfig) Validate() error {
	if r.ID == "" {
		return errors.New("autotrack: region id is empty")
	}
	if err := r.Tracking.Validate(); err != nil {
		return fmt.Errorf("autotrack: region %s: %w", r.ID, err)
	}
	return nil
}

// Options configures a Manager.
type Options struct {
	QueueSize int
	Logger    *slog.Logger
}

// Option is a functional option for configuring a Manager.
type Option func(*Options)

// WithQueueSize sets the frame queue length used by Submit.
func WithQueueSize(n int) Option {
	return func(o *Options) { o.QueueSize = n }
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
