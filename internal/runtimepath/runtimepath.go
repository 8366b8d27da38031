package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the per-user runtime directory. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/displayctl-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/displayctl-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// CaptureDir returns the directory capture output goes to, creating it.
// A non-empty override wins; a leading ~ expands to the home directory.
func CaptureDir(override string) (string, error) {
	dir := override
	if dir == "" {
		runtimeDir, err := Dir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(runtimeDir, "displayctl", "captures")
	} else if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir[1:], "/"))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create capture dir: %w", err)
	}
	return dir, nil
}

// CapturePath resolves name against CaptureDir unless it is already absolute
// or explicitly relative to the working directory.
func CapturePath(override, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") {
		return name, nil
	}
	dir, err := CaptureDir(override)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
