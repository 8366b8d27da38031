package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/displayctl/internal/config"
)

// ErrNoDisplay is returned when no X display can be found.
var ErrNoDisplay = errors.New("no X display found: set display in the config or export DISPLAY")

const x11SocketDir = "/tmp/.X11-unix"

// X11Env locates the X display and authority file. Sources are tried in
// order: the config, the process environment, the caller's graphical login
// session and the highest-numbered local X socket. Each fills only what the
// earlier ones left empty. Without any authority file ~/.Xauthority is used
// when it exists.
func X11Env(env []string, cfg *config.Config) (display, xauthority string, err error) {
	return newLocator(env).locate(cfg)
}

// locator holds the process and file-system access X11Env needs.
type locator struct {
	env       []string
	uid       int
	socketDir string

	run      func(name string, args ...string) ([]byte, error)
	readFile func(string) ([]byte, error)
	readDir  func(string) ([]fs.DirEntry, error)
	stat     func(string) (fs.FileInfo, error)
}

func newLocator(env []string) *locator {
	return &locator{
		env:       env,
		uid:       os.Getuid(),
		socketDir: x11SocketDir,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
		readFile: os.ReadFile,
		readDir:  os.ReadDir,
		stat:     os.Stat,
	}
}

func (l *locator) locate(cfg *config.Config) (string, string, error) {
	sources := []func() (string, string){
		func() (string, string) {
			if cfg == nil {
				return "", ""
			}
			return cfg.Display, cfg.XAuthority
		},
		func() (string, string) { return l.getenv("DISPLAY"), l.getenv("XAUTHORITY") },
		l.loginSession,
		func() (string, string) { return l.newestSocket(), "" },
	}

	var display, xauth string
	for _, src := range sources {
		if display != "" && xauth != "" {
			break
		}
		d, x := src()
		if display == "" {
			display = strings.TrimSpace(d)
		}
		if xauth == "" {
			xauth = strings.TrimSpace(x)
		}
	}
	if display == "" {
		return "", "", ErrNoDisplay
	}
	if xauth == "" {
		xauth = l.homeXAuthority()
	}
	return display, xauth, nil
}

func (l *locator) getenv(key string) string {
	for i := len(l.env) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(l.env[i], "="); ok && k == key {
			return v
		}
	}
	return ""
}

func (l *locator) homeXAuthority() string {
	home := l.getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home == "" {
		return ""
	}
	path := filepath.Join(home, ".Xauthority")
	if _, err := l.stat(path); err != nil {
		return ""
	}
	return path
}

// loginSession asks logind for the caller's first session with an X display.
// The session leader's environment, when readable, supplies the authority
// file and overrides the display logind reports.
func (l *locator) loginSession() (string, string) {
	out, err := l.run("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, id := range sessionsForUID(string(out), l.uid) {
		out, err := l.run("loginctl", "show-session", id, "-p", "Display", "-p", "Leader")
		if err != nil {
			continue
		}
		props := parseProperties(string(out), "\n")
		display := props["Display"]
		if display == "" || strings.EqualFold(display, "n/a") {
			continue
		}
		var xauth string
		if leader := props["Leader"]; leader != "" && leader != "0" {
			if data, err := l.readFile(filepath.Join("/proc", leader, "environ")); err == nil {
				leaderEnv := parseProperties(string(data), "\x00")
				if d := leaderEnv["DISPLAY"]; d != "" {
					display = d
				}
				xauth = leaderEnv["XAUTHORITY"]
			}
		}
		return display, xauth
	}
	return "", ""
}

// sessionsForUID picks session ids owned by uid from `loginctl list-sessions`
// output, whose first two columns are SESSION and UID.
func sessionsForUID(out string, uid int) []string {
	want := strconv.Itoa(uid)
	var ids []string
	for _, line := range strings.Split(out, "\n") {
		if fields := strings.Fields(line); len(fields) >= 2 && fields[1] == want {
			ids = append(ids, fields[0])
		}
	}
	return ids
}

// parseProperties splits KEY=VALUE records separated by sep.
func parseProperties(s, sep string) map[string]string {
	props := make(map[string]string)
	for _, rec := range strings.Split(s, sep) {
		k, v, ok := strings.Cut(strings.TrimSpace(rec), "=")
		if ok && k != "" {
			props[k] = v
		}
	}
	return props
}

// newestSocket returns ":N" for the highest-numbered XN socket in socketDir.
func (l *locator) newestSocket() string {
	entries, err := l.readDir(l.socketDir)
	if err != nil {
		return ""
	}
	best := -1
	for _, e := range entries {
		num, ok := strings.CutPrefix(e.Name(), "X")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(num); err == nil && n > best {
			best = n
		}
	}
	if best < 0 {
		return ""
	}
	return fmt.Sprintf(":%d", best)
}
