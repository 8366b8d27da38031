package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/system"
)

const defaultFirstFrameTimeout = 10 * time.Second

func runCapture(args []string) int {
	fs, c := newFlagSet("capture", "capture [--display ID] [options] PATH")
	pixelFormat := fs.String("pixel-format", "", "Stream pixel format: 420f, l10r, BGR or 420v (default from config)")
	rect := fs.String("rect", "", "Capture rectangle X,Y,W,H relative to the display (default: whole display)")
	cursor := fs.Bool("cursor", false, "Draw the cursor into frames (default from config)")
	duration := fs.Duration("duration", 0, "Keep capturing for this long; 0 stops after the first frame")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	var bounds platform.Rect
	if *rect != "" {
		r, err := parseRect(*rect)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		bounds = r
	}
	req := system.CaptureRequest{
		Display:     c.displayID(),
		PixelFormat: *pixelFormat,
		Bounds:      bounds,
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "cursor" {
			req.ShowCursor = cursor
		}
	})

	return withSystem(c, func(sys *system.System) error {
		path, err := sys.CapturePath(fs.Arg(0))
		if err != nil {
			return err
		}
		sess, err := sys.NewCaptureSession(req)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := sess.Start(ctx, path); err != nil {
			return err
		}
		defer sess.Stop()

		wait := defaultFirstFrameTimeout
		if *duration > wait {
			wait = *duration
		}
		wctx, cancel := context.WithTimeout(ctx, wait)
		err = sess.Wait(wctx)
		cancel()
		if err != nil {
			return fmt.Errorf("no frame written to %s: %w", path, err)
		}

		if *duration > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(*duration):
			}
		}
		if err := sess.Stop(); err != nil {
			return err
		}

		st := sess.Stats()
		fmt.Printf("%s: %d written, %d delivered, %d skipped, %d dropped, %d failed\n",
			path, st.Written, st.Delivered, st.Skipped, st.Dropped, st.Failed)
		return nil
	})
}

// parseRect parses "X,Y,W,H".
func parseRect(s string) (platform.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return platform.Rect{}, fmt.Errorf("invalid rect %q: want X,Y,W,H", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return platform.Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return platform.Rect{}, fmt.Errorf("invalid rect %q: width and height must be positive", s)
	}
	return platform.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}
