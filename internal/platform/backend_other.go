//go:build !linux

package platform

import (
	"errors"
	"log/slog"
)

// ErrNoBackend is returned on systems without a display backend.
var ErrNoBackend = errors.New("no display backend for this platform")

// Open always fails outside Linux.
func Open(string, *slog.Logger) (System, error) {
	return nil, ErrNoBackend
}
