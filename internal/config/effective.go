package config

import (
	"fmt"
)

// ValidationError reports an invalid setting, with the file position of the
// value when it came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	set(&cfg.Display, raw.Display)
	set(&cfg.XAuthority, raw.XAuthority)
	set(&cfg.LogLevel, raw.LogLevel)
	set(&cfg.CapabilityLoadTimeout, raw.CapabilityLoadTimeout)
	set(&cfg.UnknownStatus, raw.UnknownStatus)
	set(&cfg.RequireBuiltin, raw.RequireBuiltin)

	if l := raw.Logging; l != nil {
		set(&cfg.Logging.File, l.File)
		set(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
		set(&cfg.Logging.MaxFiles, l.MaxFiles)
	}
	if s := raw.SettleDelay; s != nil {
		set(&cfg.SettleDelay.Cursor, s.Cursor)
		set(&cfg.SettleDelay.Gamma, s.Gamma)
	}
	if c := raw.Capture; c != nil {
		set(&cfg.Capture.StartTimeout, c.StartTimeout)
		set(&cfg.Capture.QueueSize, c.QueueSize)
		set(&cfg.Capture.StrictExtension, c.StrictExtension)
		set(&cfg.Capture.JPEGQuality, c.JPEGQuality)
		set(&cfg.Capture.OutputDir, c.OutputDir)
		set(&cfg.Capture.PixelFormat, c.PixelFormat)
		set(&cfg.Capture.MinimumFrameTime, c.MinimumFrameTime)
		set(&cfg.Capture.ShowCursor, c.ShowCursor)
	}
	return cfg
}
