package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/displayctl/internal/capability"
	"github.com/1broseidon/displayctl/internal/command"
	"github.com/1broseidon/displayctl/internal/platform"
)

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) executor(display uint32) (*command.Executor, error) {
	return s.sys.Executor(platform.DisplayID(display))
}

// logCall records the outcome of a tool call. Failures are logged at warn so
// a client retry loop stays visible in the log.
func (s *Server) logCall(tool string, display uint32, err error) {
	if err != nil {
		s.logger.Warn("tool failed", "tool", tool, "display", display, "error", err)
		return
	}
	s.logger.Debug("tool ok", "tool", tool, "display", display)
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	b := s.sys.Backend
	main, err := b.MainDisplay()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("main display: %w", err)
	}
	ids, err := b.ActiveDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("active displays: %w", err)
	}

	out := ListDisplaysOutput{Main: uint32(main), Displays: make([]DisplayInfo, 0, len(ids))}
	for _, id := range ids {
		info, err := b.DisplayInfo(id)
		if err != nil {
			// Unplugged between the two calls.
			s.logger.Debug("display vanished while listing", "display", id, "error", err)
			continue
		}
		rotation := 0
		if r, err := b.Rotation(id); err == nil {
			rotation = int(r)
		}
		out.Displays = append(out.Displays, displayInfo(info, rotation))
	}
	return nil, out, nil
}

func (s *Server) handleHideCursor(ctx context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.HideCursor(ctx)
	}
	s.logCall("hide_cursor", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Cursor hidden on display %d", e.Handle().ID()), nil, nil
}

func (s *Server) handleMoveCursor(ctx context.Context, _ *mcpsdk.CallToolRequest, args MoveCursorInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.MoveCursorTo(ctx, args.X, args.Y)
	}
	s.logCall("move_cursor", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Cursor moved to (%d,%d) on display %d", args.X, args.Y, e.Handle().ID()), nil, nil
}

func (s *Server) handlePressKey(ctx context.Context, _ *mcpsdk.CallToolRequest, args KeyInput) (*mcpsdk.CallToolResult, any, error) {
	key := strings.TrimSpace(args.Key)
	if key == "" {
		return nil, nil, fmt.Errorf("key is required")
	}
	e, err := s.executor(0)
	if err == nil {
		if args.Tap {
			err = e.TapKey(ctx, key)
		} else {
			err = e.PressKey(ctx, key)
		}
	}
	s.logCall("press_key", 0, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Posted %s", key), nil, nil
}

func (s *Server) handleListModes(ctx context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, ListModesOutput, error) {
	e, err := s.executor(args.Display)
	if err != nil {
		return nil, ListModesOutput{}, err
	}
	modes, err := e.Modes(ctx)
	if err != nil {
		return nil, ListModesOutput{}, err
	}
	out := ListModesOutput{Modes: make([]Mode, 0, len(modes))}
	for i, m := range modes {
		out.Modes = append(out.Modes, fromMode(m, i+1))
	}
	return nil, out, nil
}

func (s *Server) handleGetMode(ctx context.Context, _ *mcpsdk.CallToolRequest, args ModeQueryInput) (*mcpsdk.CallToolResult, ModeQueryOutput, error) {
	e, err := s.executor(args.Display)
	if err != nil {
		return nil, ModeQueryOutput{}, err
	}

	var (
		m     platform.Mode
		found = true
	)
	switch strings.ToLower(strings.TrimSpace(args.Which)) {
	case "default":
		m, err = e.DefaultMode(ctx)
	case "native":
		m, found, err = e.NativeMode(ctx)
	case "best":
		m, err = e.BestMode(ctx)
	default:
		return nil, ModeQueryOutput{}, fmt.Errorf("unknown mode query %q; want default, native or best", args.Which)
	}
	if err != nil {
		return nil, ModeQueryOutput{}, err
	}
	if !found {
		return nil, ModeQueryOutput{}, nil
	}
	mode := fromMode(m, 0)
	return nil, ModeQueryOutput{Found: true, Mode: &mode}, nil
}

func (s *Server) handleSetMode(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetModeInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.SetDisplayMode(ctx, args.Index)
	}
	s.logCall("set_mode", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Display %d switched to mode %d", e.Handle().ID(), args.Index), nil, nil
}

func (s *Server) handleRotate(ctx context.Context, _ *mcpsdk.CallToolRequest, args RotateInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.SetRotation(ctx, args.Angle)
	}
	s.logCall("rotate", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Display %d rotated to %d degrees", e.Handle().ID(), args.Angle), nil, nil
}

func (s *Server) handleGetGamma(ctx context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, GammaOutput, error) {
	e, err := s.executor(args.Display)
	if err != nil {
		return nil, GammaOutput{}, err
	}
	f, err := e.GammaCurve(ctx)
	if err != nil {
		return nil, GammaOutput{}, err
	}
	ch := func(c platform.GammaChannel) GammaChannel {
		return GammaChannel{Min: c.Min, Max: c.Max, Gamma: c.Gamma}
	}
	return nil, GammaOutput{Red: ch(f.Red), Green: ch(f.Green), Blue: ch(f.Blue)}, nil
}

func (s *Server) handleSetGamma(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetGammaInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.SetGammaCurve(ctx, args.Red, args.Green, args.Blue)
	}
	s.logCall("set_gamma", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Gamma set on display %d", e.Handle().ID()), nil, nil
}

func (s *Server) handleSetTransfer(ctx context.Context, _ *mcpsdk.CallToolRequest, args TransferInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.SetTransfer(ctx, args.Selector)
	}
	s.logCall("set_transfer", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Transfer table %d applied to display %d", args.Selector, e.Handle().ID()), nil, nil
}

func (s *Server) handleSetPalette(ctx context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.SetPalette(ctx)
	}
	s.logCall("set_palette", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Palette restored on display %d", e.Handle().ID()), nil, nil
}

func (s *Server) handleGetBrightness(ctx context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, BrightnessOutput, error) {
	e, err := s.executor(args.Display)
	if err != nil {
		return nil, BrightnessOutput{}, err
	}
	v, err := e.Brightness(ctx)
	if err != nil {
		return nil, BrightnessOutput{}, err
	}
	return nil, BrightnessOutput{Brightness: v}, nil
}

func (s *Server) handleSetBrightness(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetBrightnessInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.SetBrightness(ctx, args.Brightness)
	}
	s.logCall("set_brightness", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	return textResult("Brightness of display %d set to %.2f", e.Handle().ID(), args.Brightness), nil, nil
}

func (s *Server) handleBrightnessStatus(ctx context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, BrightnessStatusOutput, error) {
	e, err := s.executor(args.Display)
	if err != nil {
		return nil, BrightnessStatusOutput{}, err
	}
	st, err := e.BrightnessStatus(ctx)
	if err != nil {
		return nil, BrightnessStatusOutput{}, err
	}
	return nil, BrightnessStatusOutput{Status: st}, nil
}

func (s *Server) handleSetMirror(ctx context.Context, _ *mcpsdk.CallToolRequest, args MirrorInput) (*mcpsdk.CallToolResult, any, error) {
	e, err := s.executor(args.Display)
	if err == nil {
		err = e.SetMirror(ctx, platform.DisplayID(args.Source))
	}
	s.logCall("set_mirror", args.Display, err)
	if err != nil {
		return nil, nil, err
	}
	if args.Source == 0 {
		return textResult("Mirroring off for display %d", e.Handle().ID()), nil, nil
	}
	return textResult("Display %d mirrors display %d", e.Handle().ID(), args.Source), nil, nil
}

func (s *Server) handleSwitchTrueTone(ctx context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, TrueToneOutput, error) {
	e, err := s.executor(0)
	if err != nil {
		return nil, TrueToneOutput{}, err
	}
	changed, err := e.SwitchTrueTone(ctx)
	s.logCall("switch_true_tone", 0, err)
	if err != nil {
		return nil, TrueToneOutput{}, err
	}
	return nil, TrueToneOutput{Changed: changed}, nil
}

func (s *Server) handleListWindows(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowsInput) (*mcpsdk.CallToolResult, WindowsOutput, error) {
	e, err := s.executor(0)
	if err != nil {
		return nil, WindowsOutput{}, err
	}
	if args.Index != nil {
		w, err := e.Window(ctx, *args.Index)
		if err != nil {
			return nil, WindowsOutput{}, err
		}
		return nil, WindowsOutput{Windows: []Window{fromWindow(w)}}, nil
	}
	ws, err := e.Windows(ctx)
	if err != nil {
		return nil, WindowsOutput{}, err
	}
	out := WindowsOutput{Windows: make([]Window, 0, len(ws))}
	for _, w := range ws {
		out.Windows = append(out.Windows, fromWindow(w))
	}
	return nil, out, nil
}

func (s *Server) handleProperties(ctx context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, PropertiesOutput, error) {
	e, err := s.executor(args.Display)
	if err != nil {
		return nil, PropertiesOutput{}, err
	}
	props, err := e.Properties(ctx)
	if err != nil {
		return nil, PropertiesOutput{}, err
	}
	return nil, PropertiesOutput{Properties: props}, nil
}

func (s *Server) handleVendorNumber(ctx context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, VendorOutput, error) {
	e, err := s.executor(args.Display)
	if err != nil {
		return nil, VendorOutput{}, err
	}
	v, err := e.VendorNumber(ctx)
	if err != nil {
		return nil, VendorOutput{}, err
	}
	return nil, VendorOutput{Vendor: v.String(), Number: v.Number, NoMonitor: v.NoMonitor}, nil
}

func (s *Server) handleCapabilities(ctx context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, CapabilitiesOutput, error) {
	for _, name := range []string{capability.LegacyMode, capability.Brightness, capability.TrueTone} {
		s.sys.Registry.Resolve(ctx, name)
	}
	mods := s.sys.Registry.Snapshot()
	out := CapabilitiesOutput{Capabilities: make([]Capability, 0, len(mods))}
	for _, m := range mods {
		c := Capability{Name: m.Name, State: m.State.String()}
		if m.Err != nil {
			c.Error = m.Err.Error()
		}
		out.Capabilities = append(out.Capabilities, c)
	}
	return nil, out, nil
}
