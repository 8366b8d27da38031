package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/displayctl/internal/status"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.SettleDelay.Cursor != 50*time.Millisecond || cfg.SettleDelay.Gamma != 20*time.Millisecond {
		t.Fatalf("unexpected settle delays %+v", cfg.SettleDelay)
	}
	if cfg.Translator().Fallback != status.Success {
		t.Fatalf("default unknown status fallback should be Success")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Capture.QueueSize != 2 {
		t.Fatalf("expected default queue size, got %d", res.Config.Capture.QueueSize)
	}
	if res.File != "" || len(res.Sources) != 0 {
		t.Fatalf("expected no file, got %q %v", res.File, res.Sources)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" {
		t.Fatalf("expected log_level info, got %q", res.Config.LogLevel)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		`display: ":1"`,
		"unknown_status: failure",
		"settle_delay:",
		"  gamma: 5ms",
		"capture:",
		"  strict_extension: true",
		"  start_timeout: 750ms",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != ":1" {
		t.Fatalf("expected display :1, got %q", cfg.Display)
	}
	if cfg.SettleDelay.Gamma != 5*time.Millisecond {
		t.Fatalf("expected gamma settle 5ms, got %s", cfg.SettleDelay.Gamma)
	}
	if cfg.SettleDelay.Cursor != 50*time.Millisecond {
		t.Fatalf("cursor settle should keep its default, got %s", cfg.SettleDelay.Cursor)
	}
	if !cfg.Capture.StrictExtension || cfg.Capture.StartTimeout != 750*time.Millisecond {
		t.Fatalf("capture overrides not applied: %+v", cfg.Capture)
	}
	if cfg.Translator().Fallback != status.Failure {
		t.Fatalf("expected Failure fallback")
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("explain display = %v from %+v", val, src)
	}
	_, src, err = Explain(res, "capture.queue_size")
	if err != nil {
		t.Fatalf("explain queue_size: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected queue_size from defaults, got %+v", src)
	}
}

func TestLoadFromPath_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "settle_dalay:\n  gamma: 1ms\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected strict decoding to reject unknown field")
	}
}

func TestLoadFromPath_ValidationCarriesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\ncapture:\n  jpeg_quality: 101\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "capture.jpeg_quality" {
		t.Fatalf("expected path capture.jpeg_quality, got %q", verr.Path)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("expected line 3, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), "config.yaml:3:") {
		t.Fatalf("error should carry file position: %v", err)
	}
}

func TestLoadFromPath_NestedSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "capture:\n  queue_size: 8\n  strict_extension: true\nlog_level: debug\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != path {
		t.Fatalf("expected file %q, got %q", path, res.File)
	}
	src := res.Sources["capture.strict_extension"]
	if src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("unexpected source %+v", src)
	}
	if _, ok := res.Sources["capture.jpeg_quality"]; ok {
		t.Fatalf("unset key should have no file source")
	}
	if res.Sources["log_level"].Line != 4 {
		t.Fatalf("unexpected log_level source %+v", res.Sources["log_level"])
	}
}

func TestLoadFromPath_IncludeKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include: other.yaml\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected include to be an unknown key")
	}
}

func TestLoadFromPath_UnreadableIsError(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFromPath(dir); err == nil {
		t.Fatalf("expected reading a directory to fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		path   string
		mutate func(*Config)
	}{
		{"log_level", func(c *Config) { c.LogLevel = "verbose" }},
		{"settle_delay.cursor", func(c *Config) { c.SettleDelay.Cursor = -time.Millisecond }},
		{"capability_load_timeout", func(c *Config) { c.CapabilityLoadTimeout = 0 }},
		{"unknown_status", func(c *Config) { c.UnknownStatus = "maybe" }},
		{"capture.queue_size", func(c *Config) { c.Capture.QueueSize = 0 }},
		{"capture.pixel_format", func(c *Config) { c.Capture.PixelFormat = "RGBA" }},
		{"logging.max_size_mb", func(c *Config) { c.Logging.MaxSizeMB = 0 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		var verr *ValidationError
		if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
			t.Errorf("%s: got %v", tt.path, err)
		}
	}
}

func TestDefaultConfigPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if got != filepath.Join(dir, "displayctl", "config.yaml") {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestExplain_Paths(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, p := range Paths() {
		if _, _, err := Explain(res, p); err != nil {
			t.Errorf("Explain(%q): %v", p, err)
		}
	}
	if _, _, err := Explain(res, "capture.nope"); err == nil {
		t.Error("expected unknown key error")
	}
}
