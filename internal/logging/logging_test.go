package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingFile_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "displayctl.log")
	rf, err := OpenRotating(path, 1, 2)
	if err != nil {
		t.Fatalf("OpenRotating: %v", err)
	}
	defer rf.Close()
	rf.maxBytes = 16

	for _, line := range []string{"aaaaaaaaaa\n", "bbbbbbbbbb\n", "cccccccccc\n", "dddddddddd\n"} {
		if _, err := rf.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	read := func(p string) string {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		return string(data)
	}
	if got := read(path); got != "dddddddddd\n" {
		t.Fatalf("current = %q", got)
	}
	if got := read(path + ".1"); got != "cccccccccc\n" {
		t.Fatalf(".1 = %q", got)
	}
	if got := read(path + ".2"); got != "bbbbbbbbbb\n" {
		t.Fatalf(".2 = %q", got)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected only two rotated files, stat .3: %v", err)
	}
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	rf, err := OpenRotating(filepath.Join(t.TempDir(), "x.log"), 1, 1)
	if err != nil {
		t.Fatalf("OpenRotating: %v", err)
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := rf.Write([]byte("late\n")); err == nil {
		t.Fatal("expected write after close to fail")
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: slog.LevelWarn, Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", "display", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown display=1") {
		t.Fatalf("unexpected output %q", out)
	}
}
