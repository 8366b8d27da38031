package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/1broseidon/displayctl/internal/logging"
	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/system"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "displays":
		os.Exit(runDisplays(args))
	case "info":
		os.Exit(runInfo(args))
	case "cursor":
		os.Exit(runCursor(args))
	case "key":
		os.Exit(runKey(args))
	case "mode":
		os.Exit(runMode(args))
	case "rotate":
		os.Exit(runRotate(args))
	case "gamma":
		os.Exit(runGamma(args))
	case "transfer":
		os.Exit(runTransfer(args))
	case "palette":
		os.Exit(runPalette(args))
	case "brightness":
		os.Exit(runBrightness(args))
	case "mirror":
		os.Exit(runMirror(args))
	case "truetone":
		os.Exit(runTrueTone(args))
	case "windows":
		os.Exit(runWindows(args))
	case "properties":
		os.Exit(runProperties(args))
	case "vendor":
		os.Exit(runVendor(args))
	case "capabilities":
		os.Exit(runCapabilities(args))
	case "capture":
		os.Exit(runCapture(args))
	case "mcp":
		os.Exit(runMCP(args))
	case "config":
		os.Exit(runConfig(args))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: displayctl <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  displays            List active displays")
	fmt.Fprintln(w, "  info                Show one display's attributes")
	fmt.Fprintln(w, "  properties          Show boolean display properties")
	fmt.Fprintln(w, "  vendor              Show the monitor vendor id")
	fmt.Fprintln(w, "  capabilities        Show which optional subsystems load")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  cursor hide         Hide the pointer")
	fmt.Fprintln(w, "  cursor move X Y     Move the pointer (display-relative)")
	fmt.Fprintln(w, "  key NAME            Post a key event")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mode list           List display modes")
	fmt.Fprintln(w, "  mode set N          Switch to mode N (from 1)")
	fmt.Fprintln(w, "  mode default|native|best")
	fmt.Fprintln(w, "                      Show the default, native or best mode")
	fmt.Fprintln(w, "  rotate ANGLE        Rotate by a multiple of 90 degrees")
	fmt.Fprintln(w, "  mirror SOURCE       Mirror SOURCE (0 turns mirroring off)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  gamma get           Show the gamma formula")
	fmt.Fprintln(w, "  gamma set R G B     Set per-channel gamma maximum")
	fmt.Fprintln(w, "  transfer N          Apply contrast table N (0-8)")
	fmt.Fprintln(w, "  palette             Restore the default palette")
	fmt.Fprintln(w, "  brightness get|set V|status")
	fmt.Fprintln(w, "                      Backlight level in [0,1]")
	fmt.Fprintln(w, "  truetone            Toggle adaptive colour (night light)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  windows             List on-screen windows")
	fmt.Fprintln(w, "  capture PATH        Capture a display into an image file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Display commands accept --display ID (default: main display),")
	fmt.Fprintln(w, "--config PATH and --json.")
	fmt.Fprintln(w, "Run 'displayctl <command> --help' for command-specific options.")
}

// common holds the flags shared by every display command.
type common struct {
	configPath string
	display    uint
	json       bool
}

func newFlagSet(name, usage string) (*flag.FlagSet, *common) {
	c := &common{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&c.configPath, "config", "", "Config file path (default: ~/.config/displayctl/config.yaml)")
	fs.UintVar(&c.display, "display", 0, "Display id (default: main display)")
	fs.BoolVar(&c.json, "json", false, "Print JSON instead of text")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: displayctl %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs, c
}

// parseArgs parses args and returns the exit code to use when parsing fails.
func parseArgs(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func (c *common) displayID() platform.DisplayID {
	return platform.DisplayID(c.display)
}

// openSystem loads config, builds the logger and connects the display
// backend. The returned func releases all three.
func openSystem(c *common) (*system.System, func(), error) {
	res, err := load(c.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := res.Config
	logger, closeLog, err := logging.New(logging.Options{
		Level:     cfg.SlogLevel(),
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log: %w", err)
	}
	sys, err := system.Open(cfg, logger)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return sys, func() {
		sys.Close()
		closeLog()
	}, nil
}

// withSystem runs fn against an open system and maps its error to an exit
// code.
func withSystem(c *common, fn func(*system.System) error) int {
	sys, done, err := openSystem(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer done()
	if err := fn(sys); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.SetStyle(table.StyleColoredBright)
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.AppendHeader(header)
	return t
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
