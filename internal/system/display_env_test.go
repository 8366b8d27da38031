package system

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/displayctl/internal/config"
)

// stubLocator has no login session and no X sockets unless a test adds them.
func stubLocator(t *testing.T, env ...string) *locator {
	t.Helper()
	l := newLocator(env)
	l.uid = 1000
	l.socketDir = filepath.Join(t.TempDir(), "no-sockets")
	l.run = func(string, ...string) ([]byte, error) { return nil, errors.New("loginctl unavailable") }
	l.readFile = func(string) ([]byte, error) { return nil, fs.ErrNotExist }
	return l
}

func TestLocate_ConfigWins(t *testing.T) {
	l := stubLocator(t, "DISPLAY=:7", "XAUTHORITY=/tmp/env")
	l.socketDir = socketDir(t, "X88")

	display, xauth, err := l.locate(&config.Config{Display: ":1", XAuthority: "/tmp/cfg"})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if display != ":1" || xauth != "/tmp/cfg" {
		t.Fatalf("got %q %q", display, xauth)
	}
}

func TestLocate_EnvThenHomeXAuthority(t *testing.T) {
	home := t.TempDir()
	cookie := filepath.Join(home, ".Xauthority")
	if err := os.WriteFile(cookie, []byte("cookie"), 0600); err != nil {
		t.Fatalf("write xauthority: %v", err)
	}

	display, xauth, err := stubLocator(t, "HOME="+home, "DISPLAY=:7").locate(&config.Config{})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if display != ":7" || xauth != cookie {
		t.Fatalf("got %q %q", display, xauth)
	}
}

func TestLocate_ConfigDisplayEnvAuthority(t *testing.T) {
	display, xauth, err := stubLocator(t, "XAUTHORITY=/run/user/1000/xauth").locate(&config.Config{Display: ":2"})
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if display != ":2" || xauth != "/run/user/1000/xauth" {
		t.Fatalf("got %q %q", display, xauth)
	}
}

func TestLocate_LoginSession(t *testing.T) {
	l := stubLocator(t, "HOME="+t.TempDir())
	l.socketDir = socketDir(t, "X3")

	var calls []string
	l.run = func(name string, args ...string) ([]byte, error) {
		calls = append(calls, strings.Join(args, " "))
		switch {
		case args[0] == "list-sessions":
			return []byte("  4 1001 bob   seat0\n  9 1000 alice seat0\n 12 1000 alice seat0\n"), nil
		case args[1] == "9":
			return []byte("Display=n/a\nLeader=0\n"), nil
		case args[1] == "12":
			return []byte("Display=:0\nLeader=4242\n"), nil
		}
		return nil, errors.New("unexpected call")
	}
	l.readFile = func(path string) ([]byte, error) {
		if path != "/proc/4242/environ" {
			return nil, fs.ErrNotExist
		}
		return []byte("PATH=/usr/bin\x00DISPLAY=:5\x00XAUTHORITY=/run/user/1000/gdm/Xauthority\x00"), nil
	}

	display, xauth, err := l.locate(nil)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if display != ":5" || xauth != "/run/user/1000/gdm/Xauthority" {
		t.Fatalf("got %q %q", display, xauth)
	}
	if len(calls) != 3 {
		t.Fatalf("expected list plus two show-session calls, got %v", calls)
	}
}

func TestLocate_SocketFallback(t *testing.T) {
	l := stubLocator(t, "HOME="+t.TempDir())
	l.socketDir = socketDir(t, "X0", "X12", "X2", "Xabc", "other")

	display, xauth, err := l.locate(nil)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if display != ":12" || xauth != "" {
		t.Fatalf("got %q %q", display, xauth)
	}
}

func TestLocate_NoDisplay(t *testing.T) {
	if _, _, err := stubLocator(t, "HOME="+t.TempDir()).locate(nil); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("expected ErrNoDisplay, got %v", err)
	}
}

func TestSessionsForUID(t *testing.T) {
	got := sessionsForUID("  2 1000 alice seat0 tty2\n  7 1001 bob   seat0 tty3\n 11 1000 alice\n\n", 1000)
	if len(got) != 2 || got[0] != "2" || got[1] != "11" {
		t.Fatalf("unexpected sessions %v", got)
	}
}

func socketDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}
