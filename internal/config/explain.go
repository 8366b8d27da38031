package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	log_level
//	logging.file
//	settle_delay.cursor
//	capability_load_timeout
//	unknown_status
//	capture.start_timeout
//	capture.strict_extension
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Paths lists every leaf path Explain accepts.
func Paths() []string {
	return []string{
		"display", "xauthority", "log_level",
		"logging.file", "logging.max_size_mb", "logging.max_files",
		"settle_delay.cursor", "settle_delay.gamma",
		"capability_load_timeout", "unknown_status", "require_builtin",
		"capture.start_timeout", "capture.queue_size", "capture.strict_extension",
		"capture.jpeg_quality", "capture.output_dir", "capture.pixel_format",
		"capture.minimum_frame_time", "capture.show_cursor",
	}
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("%s has no children", parts[0])
		}
		return v, nil
	}
	child := func(values map[string]any) (any, error) {
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s requires a child key", parts[0])
		}
		v, ok := values[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown key %q", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "display":
		return leaf(cfg.Display)
	case "xauthority":
		return leaf(cfg.XAuthority)
	case "log_level":
		return leaf(cfg.LogLevel)
	case "capability_load_timeout":
		return leaf(cfg.CapabilityLoadTimeout)
	case "unknown_status":
		return leaf(cfg.UnknownStatus)
	case "require_builtin":
		return leaf(cfg.RequireBuiltin)
	case "logging":
		return child(map[string]any{
			"file":        cfg.Logging.File,
			"max_size_mb": cfg.Logging.MaxSizeMB,
			"max_files":   cfg.Logging.MaxFiles,
		})
	case "settle_delay":
		return child(map[string]any{
			"cursor": cfg.SettleDelay.Cursor,
			"gamma":  cfg.SettleDelay.Gamma,
		})
	case "capture":
		c := cfg.Capture
		return child(map[string]any{
			"start_timeout":      c.StartTimeout,
			"queue_size":         c.QueueSize,
			"strict_extension":   c.StrictExtension,
			"jpeg_quality":       c.JPEGQuality,
			"output_dir":         c.OutputDir,
			"pixel_format":       c.PixelFormat,
			"minimum_frame_time": c.MinimumFrameTime,
			"show_cursor":        c.ShowCursor,
		})
	}
	return nil, fmt.Errorf("unknown key %q", path)
}
