package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/displayctl/internal/platform"
)

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    platform.Rect
		wantErr bool
	}{
		{"0,0,100,50", platform.Rect{Width: 100, Height: 50}, false},
		{" 10, 20, 30, 40 ", platform.Rect{X: 10, Y: 20, Width: 30, Height: 40}, false},
		{"1,2,3", platform.Rect{}, true},
		{"a,b,c,d", platform.Rect{}, true},
		{"0,0,0,10", platform.Rect{}, true},
	}
	for _, tt := range tests {
		got, err := parseRect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRect(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if code := runConfig([]string{"validate"}); code != 0 {
		t.Fatalf("validate without a file = %d, want 0", code)
	}

	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("capture:\n  queue_size: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := runConfig([]string{"validate", "--path", path}); code != 1 {
		t.Errorf("validate invalid file = %d, want 1", code)
	}

	if code := runConfig([]string{"bogus"}); code != 2 {
		t.Errorf("unknown subcommand = %d, want 2", code)
	}
}

func TestSubcommandUsageErrors(t *testing.T) {
	for name, fn := range map[string]func([]string) int{
		"mode":       runMode,
		"gamma":      runGamma,
		"cursor":     runCursor,
		"brightness": runBrightness,
		"mcp":        runMCP,
	} {
		if code := fn(nil); code != 2 {
			t.Errorf("%s with no args = %d, want 2", name, code)
		}
	}
	if code := runRotate([]string{}); code != 2 {
		t.Errorf("rotate without an angle = %d, want 2", code)
	}
	if code := runDisplays([]string{"--help"}); code != 0 {
		t.Errorf("displays --help = %d, want 0", code)
	}
}
