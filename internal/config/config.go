package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-ptz/pkg/autotrack"
	"github.com/teslashibe/go-ptz/pkg/dispatch"
	"github.com/teslashibe/go-ptz/pkg/tracking"
)

// Tracking presets.
const (
	PresetDefault    = "default"
	PresetSlow       = "slow"
	PresetAggressive = "aggressive"
)

// Config is the daemon configuration file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Detector DetectorConfig `yaml:"detector"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Tracking applies to every region unless the region overrides it.
	Tracking TrackingConfig `yaml:"tracking"`
	Regions  []RegionConfig `yaml:"regions"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type DispatchConfig struct {
	URL       string `yaml:"url"` // Empty disables dispatch
	TimeoutMS int    `yaml:"timeout_ms"`
	QueueSize int    `yaml:"queue_size"`
}

// Timeout returns the per-request timeout.
func (d DispatchConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMS) * time.Millisecond
}

type DetectorConfig struct {
	WsURL      string `yaml:"ws_url"` // Empty disables the stream client
	FrameQueue int    `yaml:"frame_queue"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format,omitempty"` // "text" or "json"
}

// TrackingConfig is a preset plus parameter overrides.
type TrackingConfig struct {
	Preset                string `yaml:"preset,omitempty"`
	tracking.TuningParams `yaml:",inline"`
}

// RegionConfig is one tracked region in the file.
type RegionConfig struct {
	ID          string          `yaml:"id"`
	Active      *bool           `yaml:"active,omitempty"` // Defaults to true
	CameraIndex *int            `yaml:"camera_index"`
	InvertPan   bool            `yaml:"invert_pan,omitempty"`
	InvertTilt  bool            `yaml:"invert_tilt,omitempty"`
	Tracking    *TrackingConfig `yaml:"tracking,omitempty"`
}

// Default returns the configuration used when no file is given: one region
// mapped to camera 0 and dispatch disabled.
func Default() Config {
	cam := 0
	return Config{
		Server: ServerConfig{
			Listen: ":8090",
		},
		Dispatch: DispatchConfig{
			TimeoutMS: 2000,
			QueueSize: dispatch.DefaultQueueSize,
		},
		Detector: DetectorConfig{
			FrameQueue: autotrack.DefaultFrameQueue,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracking: TrackingConfig{
			Preset: PresetDefault,
		},
		Regions: []RegionConfig{
			{ID: "main", CameraIndex: &cam},
		},
	}
}

// Load reads a YAML file over Default. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over Default. Unknown keys are errors.
func Parse(b []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the file-level settings and builds every region once so
// tracking errors surface at load time.
func (c Config) Validate() error {
	if c.Server.Listen == "" {
		return errors.New("config: server.listen is empty")
	}
	if c.Dispatch.TimeoutMS <= 0 {
		return errors.New("config: dispatch.timeout_ms must be positive")
	}
	if c.Dispatch.QueueSize <= 0 {
		return errors.New("config: dispatch.queue_size must be positive")
	}
	if c.Detector.FrameQueue <= 0 {
		return errors.New("config: detector.frame_queue must be positive")
	}
	if len(c.Regions) == 0 {
		return errors.New("config: at least one region is required")
	}
	_, err := c.BuildRegions()
	return err
}

// BuildRegions resolves every region's tracking config: preset, then the
// global overrides, then the region's own.
func (c Config) BuildRegions() ([]autotrack.RegionConfig, error) {
	base, err := c.Tracking.resolve(tracking.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("config: tracking: %w", err)
	}

	seen := make(map[string]bool, len(c.Regions))
	out := make([]autotrack.RegionConfig, 0, len(c.Regions))
	for i, r := range c.Regions {
		if r.ID == "" {
			return nil, fmt.Errorf("config: regions[%d]: id is empty", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("config: duplicate region %q", r.ID)
		}
		seen[r.ID] = true

		cfg := base
		if r.Tracking != nil {
			if cfg, err = r.Tracking.resolve(base); err != nil {
				return nil, fmt.Errorf("config: region %s: %w", r.ID, err)
			}
		}

		out = append(out, autotrack.RegionConfig{
			ID:     r.ID,
			Active: r.Active == nil || *r.Active,
			Mapping: dispatch.Mapping{
				CameraIndex: r.CameraIndex,
				InvertPan:   r.InvertPan,
				InvertTilt:  r.InvertTilt,
			},
			Tracking: cfg,
		})
	}
	return out, nil
}

// resolve applies the preset (if any) and overrides on top of base.
func (t TrackingConfig) resolve(base tracking.Config) (tracking.Config, error) {
	switch strings.ToLower(t.Preset) {
	case "":
	case PresetDefault:
		base = tracking.DefaultConfig()
	case PresetSlow:
		base = tracking.SlowConfig()
	case PresetAggressive:
		base = tracking.AggressiveConfig()
	default:
		return tracking.Config{}, fmt.Errorf("unknown preset %q", t.Preset)
	}
	return base.WithTuning(t.TuningParams)
}

// FlagOverrides holds command-line values; nil means "not given".
type FlagOverrides struct {
	Listen      *string
	DispatchURL *string
	DetectorWS  *string
	LogLevel    *string
}

// Apply writes the given overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.Listen != nil {
		cfg.Server.Listen = *o.Listen
	}
	if o.DispatchURL != nil {
		cfg.Dispatch.URL = *o.DispatchURL
	}
	if o.DetectorWS != nil {
		cfg.Detector.WsURL = *o.DetectorWS
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// ApplyEnv overrides cfg from the AUTOTRACK_* environment variables.
func ApplyEnv(cfg *Config) {
	cfg.Dispatch.URL = DispatchURL(cfg.Dispatch.URL)
	cfg.Dispatch.TimeoutMS = EnvInt(EnvDispatchTimeoutMS, cfg.Dispatch.TimeoutMS)
	cfg.Server.Listen = ListenAddr(cfg.Server.Listen)
	cfg.Detector.WsURL = DetectorWS(cfg.Detector.WsURL)
	cfg.Logging.Level = Env(EnvLogLevel, cfg.Logging.Level)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
