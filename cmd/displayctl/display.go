package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/1broseidon/displayctl/internal/capability"
	"github.com/1broseidon/displayctl/internal/command"
	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/system"
)

// runExecutor parses args and runs fn against the executor for --display.
// want is the number of positional arguments fn needs.
func runExecutor(name, usage string, args []string, want int, fn func(ctx context.Context, c *common, e *command.Executor, pos []string) error) int {
	fs, c := newFlagSet(name, usage)
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != want {
		fs.Usage()
		return 2
	}
	return withSystem(c, func(sys *system.System) error {
		e, err := sys.Executor(c.displayID())
		if err != nil {
			return err
		}
		return fn(context.Background(), c, e, fs.Args())
	})
}

func runDisplays(args []string) int {
	fs, c := newFlagSet("displays", "displays [--json]")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	return withSystem(c, func(sys *system.System) error {
		b := sys.Backend
		main, err := b.MainDisplay()
		if err != nil {
			return err
		}
		ids, err := b.ActiveDisplays()
		if err != nil {
			return err
		}
		type row struct {
			platform.Info
			Main     bool
			Rotation float64
		}
		rows := make([]row, 0, len(ids))
		for _, id := range ids {
			info, err := b.DisplayInfo(id)
			if err != nil {
				continue
			}
			rot, _ := b.Rotation(id)
			rows = append(rows, row{Info: info, Main: id == main, Rotation: rot})
		}
		if c.json {
			return printJSON(os.Stdout, rows)
		}
		t := newTable(os.Stdout, table.Row{"ID", "Name", "Position", "Size", "Depth", "Rotation", "Builtin", "Main"})
		for _, r := range rows {
			t.AppendRow(table.Row{
				r.ID, r.Name,
				fmt.Sprintf("%d,%d", r.Bounds.X, r.Bounds.Y),
				fmt.Sprintf("%dx%d", r.Bounds.Width, r.Bounds.Height),
				r.BitDepth, r.Rotation, r.Builtin, r.Main,
			})
		}
		t.Render()
		return nil
	})
}

func runInfo(args []string) int {
	return runExecutor("info", "info [--display ID] [--json]", args, 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
		info, err := e.Handle().Info()
		if err != nil {
			return err
		}
		rot, err := e.RotationDegrees(ctx)
		if err != nil {
			return err
		}
		if c.json {
			return printJSON(os.Stdout, struct {
				platform.Info
				Rotation int
			}{info, rot})
		}
		fmt.Printf("id:        %d\n", info.ID)
		fmt.Printf("name:      %s\n", info.Name)
		fmt.Printf("bounds:    %dx%d+%d+%d\n", info.Bounds.Width, info.Bounds.Height, info.Bounds.X, info.Bounds.Y)
		fmt.Printf("bit depth: %d\n", info.BitDepth)
		fmt.Printf("builtin:   %t\n", info.Builtin)
		fmt.Printf("rotation:  %d\n", rot)
		return nil
	})
}

func runCursor(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: displayctl cursor hide|move X Y [--display ID]")
		return 2
	}
	switch args[0] {
	case "hide":
		return runExecutor("cursor hide", "cursor hide [--display ID]", args[1:], 0, func(ctx context.Context, _ *common, e *command.Executor, _ []string) error {
			return e.HideCursor(ctx)
		})
	case "move":
		return runExecutor("cursor move", "cursor move [--display ID] X Y", args[1:], 2, func(ctx context.Context, _ *common, e *command.Executor, pos []string) error {
			x, err := strconv.Atoi(pos[0])
			if err != nil {
				return fmt.Errorf("invalid X %q", pos[0])
			}
			y, err := strconv.Atoi(pos[1])
			if err != nil {
				return fmt.Errorf("invalid Y %q", pos[1])
			}
			return e.MoveCursorTo(ctx, x, y)
		})
	default:
		fmt.Fprintf(os.Stderr, "Unknown cursor subcommand: %s\n", args[0])
		return 2
	}
}

func runKey(args []string) int {
	fs, c := newFlagSet("key", "key [--tap] NAME")
	tap := fs.Bool("tap", false, "Release the key after pressing it")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	return withSystem(c, func(sys *system.System) error {
		e, err := sys.Executor(0)
		if err != nil {
			return err
		}
		if *tap {
			return e.TapKey(context.Background(), fs.Arg(0))
		}
		return e.PressKey(context.Background(), fs.Arg(0))
	})
}

func printMode(c *common, m platform.Mode) error {
	if c.json {
		return printJSON(os.Stdout, m)
	}
	fmt.Printf("%s depth=%d id=%d native=%t\n", m, m.BitDepth, m.ID, m.Native)
	return nil
}

func runMode(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: displayctl mode list|set N|default|native|best [--display ID]")
		return 2
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return runExecutor("mode list", "mode list [--display ID] [--json]", rest, 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
			modes, err := e.Modes(ctx)
			if err != nil {
				return err
			}
			if c.json {
				return printJSON(os.Stdout, modes)
			}
			t := newTable(os.Stdout, table.Row{"#", "Resolution", "Refresh", "Depth", "Native", "ID"})
			for i, m := range modes {
				t.AppendRow(table.Row{i + 1, fmt.Sprintf("%dx%d", m.Width, m.Height), fmt.Sprintf("%.2f", m.RefreshRate), m.BitDepth, m.Native, m.ID})
			}
			t.Render()
			return nil
		})
	case "set":
		return runExecutor("mode set", "mode set [--display ID] N", rest, 1, func(ctx context.Context, _ *common, e *command.Executor, pos []string) error {
			n, err := strconv.Atoi(pos[0])
			if err != nil {
				return fmt.Errorf("invalid mode index %q", pos[0])
			}
			return e.SetDisplayMode(ctx, n)
		})
	case "default":
		return runExecutor("mode default", "mode default [--display ID] [--json]", rest, 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
			m, err := e.DefaultMode(ctx)
			if err != nil {
				return err
			}
			return printMode(c, m)
		})
	case "native":
		return runExecutor("mode native", "mode native [--display ID] [--json]", rest, 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
			m, ok, err := e.NativeMode(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("no native mode")
				return nil
			}
			return printMode(c, m)
		})
	case "best":
		return runExecutor("mode best", "mode best [--display ID] [--json]", rest, 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
			m, err := e.BestMode(ctx)
			if err != nil {
				return err
			}
			return printMode(c, m)
		})
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode subcommand: %s\n", sub)
		return 2
	}
}

func runRotate(args []string) int {
	return runExecutor("rotate", "rotate [--display ID] ANGLE", args, 1, func(ctx context.Context, _ *common, e *command.Executor, pos []string) error {
		angle, err := strconv.Atoi(pos[0])
		if err != nil {
			return fmt.Errorf("invalid angle %q", pos[0])
		}
		return e.SetRotation(ctx, angle)
	})
}

func runGamma(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: displayctl gamma get|set R G B [--display ID]")
		return 2
	}
	switch args[0] {
	case "get":
		return runExecutor("gamma get", "gamma get [--display ID] [--json]", args[1:], 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
			f, err := e.GammaCurve(ctx)
			if err != nil {
				return err
			}
			if c.json {
				return printJSON(os.Stdout, f)
			}
			t := newTable(os.Stdout, table.Row{"Channel", "Min", "Max", "Gamma"})
			for _, ch := range []struct {
				name string
				c    platform.GammaChannel
			}{{"red", f.Red}, {"green", f.Green}, {"blue", f.Blue}} {
				t.AppendRow(table.Row{ch.name, fmt.Sprintf("%.3f", ch.c.Min), fmt.Sprintf("%.3f", ch.c.Max), fmt.Sprintf("%.3f", ch.c.Gamma)})
			}
			t.Render()
			return nil
		})
	case "set":
		return runExecutor("gamma set", "gamma set [--display ID] R G B", args[1:], 3, func(ctx context.Context, _ *common, e *command.Executor, pos []string) error {
			var v [3]float64
			for i, s := range pos {
				f, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("invalid channel value %q", s)
				}
				v[i] = f
			}
			return e.SetGammaCurve(ctx, v[0], v[1], v[2])
		})
	default:
		fmt.Fprintf(os.Stderr, "Unknown gamma subcommand: %s\n", args[0])
		return 2
	}
}

func runTransfer(args []string) int {
	return runExecutor("transfer", "transfer [--display ID] N", args, 1, func(ctx context.Context, _ *common, e *command.Executor, pos []string) error {
		n, err := strconv.Atoi(pos[0])
		if err != nil {
			return fmt.Errorf("invalid selector %q", pos[0])
		}
		return e.SetTransfer(ctx, n)
	})
}

func runPalette(args []string) int {
	return runExecutor("palette", "palette [--display ID]", args, 0, func(ctx context.Context, _ *common, e *command.Executor, _ []string) error {
		return e.SetPalette(ctx)
	})
}

func runBrightness(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: displayctl brightness get|set V|status [--display ID]")
		return 2
	}
	switch args[0] {
	case "get":
		return runExecutor("brightness get", "brightness get [--display ID]", args[1:], 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
			v, err := e.Brightness(ctx)
			if err != nil {
				return err
			}
			if c.json {
				return printJSON(os.Stdout, map[string]float64{"brightness": v})
			}
			fmt.Printf("%.2f\n", v)
			return nil
		})
	case "set":
		return runExecutor("brightness set", "brightness set [--display ID] V", args[1:], 1, func(ctx context.Context, _ *common, e *command.Executor, pos []string) error {
			v, err := strconv.ParseFloat(pos[0], 64)
			if err != nil {
				return fmt.Errorf("invalid brightness %q", pos[0])
			}
			return e.SetBrightness(ctx, v)
		})
	case "status":
		return runExecutor("brightness status", "brightness status [--json]", args[1:], 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
			st, err := e.BrightnessStatus(ctx)
			if err != nil {
				return err
			}
			if c.json {
				return printJSON(os.Stdout, st)
			}
			printStringMap(st)
			return nil
		})
	default:
		fmt.Fprintf(os.Stderr, "Unknown brightness subcommand: %s\n", args[0])
		return 2
	}
}

func printStringMap(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := newTable(os.Stdout, table.Row{"Key", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, m[k]})
	}
	t.Render()
}

func runMirror(args []string) int {
	return runExecutor("mirror", "mirror [--display ID] SOURCE", args, 1, func(ctx context.Context, _ *common, e *command.Executor, pos []string) error {
		src, err := strconv.ParseUint(pos[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid source display %q", pos[0])
		}
		return e.SetMirror(ctx, platform.DisplayID(src))
	})
}

func runTrueTone(args []string) int {
	return runExecutor("truetone", "truetone", args, 0, func(ctx context.Context, _ *common, e *command.Executor, _ []string) error {
		changed, err := e.SwitchTrueTone(ctx)
		if err != nil {
			return err
		}
		if !changed {
			fmt.Println("true tone unchanged (unavailable or unsupported)")
			return nil
		}
		fmt.Println("true tone toggled")
		return nil
	})
}

func runWindows(args []string) int {
	fs, c := newFlagSet("windows", "windows [--index N] [--json]")
	index := fs.Int("index", -1, "Show only the window at this position")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	return withSystem(c, func(sys *system.System) error {
		e, err := sys.Executor(0)
		if err != nil {
			return err
		}
		ctx := context.Background()
		var ws []platform.Window
		if *index >= 0 {
			w, err := e.Window(ctx, *index)
			if err != nil {
				return err
			}
			ws = []platform.Window{w}
		} else if ws, err = e.Windows(ctx); err != nil {
			return err
		}
		if c.json {
			return printJSON(os.Stdout, ws)
		}
		t := newTable(os.Stdout, table.Row{"ID", "PID", "App", "Title", "Geometry", "Desktop", "Layer", "Hidden"})
		for _, w := range ws {
			t.AppendRow(table.Row{
				fmt.Sprintf("0x%x", uint32(w.ID)), w.PID, w.AppID, w.Title,
				fmt.Sprintf("%dx%d+%d+%d", w.Bounds.Width, w.Bounds.Height, w.Bounds.X, w.Bounds.Y),
				w.Desktop, w.Layer, w.Hidden,
			})
		}
		t.Render()
		return nil
	})
}

func runProperties(args []string) int {
	return runExecutor("properties", "properties [--display ID] [--json]", args, 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
		props, err := e.Properties(ctx)
		if err != nil {
			return err
		}
		if c.json {
			return printJSON(os.Stdout, props)
		}
		t := newTable(os.Stdout, table.Row{"Property", "Value"})
		for _, name := range command.PropertyNames() {
			t.AppendRow(table.Row{name, props[name]})
		}
		t.Render()
		return nil
	})
}

func runVendor(args []string) int {
	return runExecutor("vendor", "vendor [--display ID]", args, 0, func(ctx context.Context, _ *common, e *command.Executor, _ []string) error {
		v, err := e.VendorNumber(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	})
}

func runCapabilities(args []string) int {
	return runExecutor("capabilities", "capabilities [--json]", args, 0, func(ctx context.Context, c *common, e *command.Executor, _ []string) error {
		// Touch each module so the table shows load results, not placeholders.
		for _, name := range []string{capability.LegacyMode, capability.Brightness, capability.TrueTone} {
			e.Registry().Resolve(ctx, name)
		}
		type row struct {
			Name  string `json:"name"`
			State string `json:"state"`
			Error string `json:"error,omitempty"`
		}
		var rows []row
		for _, m := range e.Capabilities() {
			r := row{Name: m.Name, State: m.State.String()}
			if m.Err != nil {
				r.Error = m.Err.Error()
			}
			rows = append(rows, r)
		}
		if c.json {
			return printJSON(os.Stdout, rows)
		}
		t := newTable(os.Stdout, table.Row{"Capability", "State", "Error"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Name, r.State, r.Error})
		}
		t.Render()
		return nil
	})
}
