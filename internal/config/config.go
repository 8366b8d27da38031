package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/displayctl/internal/status"
)

// LoggingConfig controls the optional rotating log file.
type LoggingConfig struct {
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// SettleDelay is the pause after a cursor or gamma write before the call
// returns.
type SettleDelay struct {
	Cursor time.Duration `yaml:"cursor"`
	Gamma  time.Duration `yaml:"gamma"`
}

// CaptureConfig holds frame capture defaults.
type CaptureConfig struct {
	StartTimeout     time.Duration `yaml:"start_timeout"`
	QueueSize        int           `yaml:"queue_size"`
	StrictExtension  bool          `yaml:"strict_extension"`
	JPEGQuality      int           `yaml:"jpeg_quality"`
	OutputDir        string        `yaml:"output_dir"`
	PixelFormat      string        `yaml:"pixel_format"`
	MinimumFrameTime time.Duration `yaml:"minimum_frame_time"`
	ShowCursor       bool          `yaml:"show_cursor"`
}

// Config is the effective displayctl configuration.
type Config struct {
	Display               string        `yaml:"display"`
	XAuthority            string        `yaml:"xauthority"`
	LogLevel              string        `yaml:"log_level"`
	Logging               LoggingConfig `yaml:"logging"`
	SettleDelay           SettleDelay   `yaml:"settle_delay"`
	CapabilityLoadTimeout time.Duration `yaml:"capability_load_timeout"`
	UnknownStatus         string        `yaml:"unknown_status"`
	RequireBuiltin        bool          `yaml:"require_builtin"`
	Capture               CaptureConfig `yaml:"capture"`
}

var capturePixelFormats = []string{"420f", "l10r", "BGR", "420v"}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Logging: LoggingConfig{
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		SettleDelay: SettleDelay{
			Cursor: 50 * time.Millisecond,
			Gamma:  20 * time.Millisecond,
		},
		CapabilityLoadTimeout: 5 * time.Second,
		UnknownStatus:         "success",
		Capture: CaptureConfig{
			StartTimeout:     3 * time.Second,
			QueueSize:        2,
			JPEGQuality:      90,
			PixelFormat:      "BGR",
			MinimumFrameTime: time.Second / 30,
		},
	}
}

// Validate checks value ranges. The returned error is a *ValidationError
// naming the offending path.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Logging.MaxSizeMB <= 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be > 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	if c.SettleDelay.Cursor < 0 {
		return &ValidationError{Path: "settle_delay.cursor", Err: fmt.Errorf("cursor settle delay must be >= 0")}
	}
	if c.SettleDelay.Gamma < 0 {
		return &ValidationError{Path: "settle_delay.gamma", Err: fmt.Errorf("gamma settle delay must be >= 0")}
	}
	if c.CapabilityLoadTimeout <= 0 {
		return &ValidationError{Path: "capability_load_timeout", Err: fmt.Errorf("capability_load_timeout must be > 0")}
	}
	switch c.UnknownStatus {
	case "success", "failure":
	default:
		return &ValidationError{Path: "unknown_status", Err: fmt.Errorf("unknown_status must be one of: success, failure")}
	}
	if c.Capture.StartTimeout <= 0 {
		return &ValidationError{Path: "capture.start_timeout", Err: fmt.Errorf("start_timeout must be > 0")}
	}
	if c.Capture.QueueSize <= 0 {
		return &ValidationError{Path: "capture.queue_size", Err: fmt.Errorf("queue_size must be > 0")}
	}
	if c.Capture.JPEGQuality < 1 || c.Capture.JPEGQuality > 100 {
		return &ValidationError{Path: "capture.jpeg_quality", Err: fmt.Errorf("jpeg_quality must be between 1 and 100")}
	}
	if !validPixelFormat(c.Capture.PixelFormat) {
		return &ValidationError{Path: "capture.pixel_format", Err: fmt.Errorf("pixel_format must be one of: %s", strings.Join(capturePixelFormats, ", "))}
	}
	if c.Capture.MinimumFrameTime < 0 {
		return &ValidationError{Path: "capture.minimum_frame_time", Err: fmt.Errorf("minimum_frame_time must be >= 0")}
	}
	return nil
}

func validPixelFormat(pf string) bool {
	for _, f := range capturePixelFormats {
		if f == pf {
			return true
		}
	}
	return false
}

// SlogLevel converts LogLevel for slog handlers.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Translator returns the raw status translator selected by unknown_status.
func (c *Config) Translator() status.Translator {
	if c.UnknownStatus == "failure" {
		return status.Translator{Fallback: status.Failure}
	}
	return status.DefaultTranslator
}
