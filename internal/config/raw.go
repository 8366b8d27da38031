package config

import "time"

type RawLogging struct {
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawSettleDelay struct {
	Cursor *time.Duration `yaml:"cursor"`
	Gamma  *time.Duration `yaml:"gamma"`
}

type RawCapture struct {
	StartTimeout     *time.Duration `yaml:"start_timeout"`
	QueueSize        *int           `yaml:"queue_size"`
	StrictExtension  *bool          `yaml:"strict_extension"`
	JPEGQuality      *int           `yaml:"jpeg_quality"`
	OutputDir        *string        `yaml:"output_dir"`
	PixelFormat      *string        `yaml:"pixel_format"`
	MinimumFrameTime *time.Duration `yaml:"minimum_frame_time"`
	ShowCursor       *bool          `yaml:"show_cursor"`
}

// RawConfig is the file's settings before defaults apply. Unset fields are
// nil and keep their default.
type RawConfig struct {
	Display               *string         `yaml:"display"`
	XAuthority            *string         `yaml:"xauthority"`
	LogLevel              *string         `yaml:"log_level"`
	Logging               *RawLogging     `yaml:"logging"`
	SettleDelay           *RawSettleDelay `yaml:"settle_delay"`
	CapabilityLoadTimeout *time.Duration  `yaml:"capability_load_timeout"`
	UnknownStatus         *string         `yaml:"unknown_status"`
	RequireBuiltin        *bool           `yaml:"require_builtin"`
	Capture               *RawCapture     `yaml:"capture"`
}
