// Package mcp exposes display control and frame capture as MCP tools over
// stdio.
package mcp

import (
	"context"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/displayctl/internal/capture"
	"github.com/1broseidon/displayctl/internal/system"
)

const (
	ServerName    = "displayctl"
	ServerVersion = "0.1.0"

	// DefaultSessionCap is the number of stopped capture sessions kept for
	// capture_status before the oldest are forgotten.
	DefaultSessionCap = 16
)

// trackedSession records a capture session started through the server.
type trackedSession struct {
	session *capture.Session
	seq     uint64
}

// Server is the MCP server for display control.
type Server struct {
	mcpServer *mcpsdk.Server
	sys       *system.System
	logger    *slog.Logger

	mu         sync.Mutex
	sessions   map[string]trackedSession
	nextSeq    uint64
	sessionCap int
}

// NewServer creates an MCP server over sys.
func NewServer(sys *system.System) *Server {
	s := &Server{
		sys:        sys,
		logger:     sys.Logger.With("component", "mcp"),
		sessions:   make(map[string]trackedSession),
		sessionCap: DefaultSessionCap,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close stops every running capture session.
func (s *Server) Close() error {
	s.mu.Lock()
	sessions := make([]*capture.Session, 0, len(s.sessions))
	for _, t := range s.sessions {
		sessions = append(sessions, t.session)
	}
	s.mu.Unlock()

	var first error
	for _, sess := range sessions {
		if err := sess.Stop(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List the active displays with their id, name, bounds, bit depth and rotation. The main display id is reported separately; display 0 in other tools means the main display.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_cursor",
		Description: "Hide the mouse pointer on a display.",
	}, s.handleHideCursor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_cursor",
		Description: "Move the mouse pointer to a point on a display. Coordinates are relative to the display origin and must lie inside it.",
	}, s.handleMoveCursor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "press_key",
		Description: "Post a synthetic key event by key name. By default only key-down is posted; set tap to also release the key.",
	}, s.handlePressKey)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_modes",
		Description: "List the display modes a display supports. The index field is the value set_mode expects.",
	}, s.handleListModes)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_mode",
		Description: "Return the display's default, native or best matching mode.",
	}, s.handleGetMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_mode",
		Description: "Switch a display to the mode at index (counted from 1) in list_modes.",
	}, s.handleSetMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rotate",
		Description: "Rotate a display to a multiple of 90 degrees. Fails with Unsupported when the device cannot rotate.",
	}, s.handleRotate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_gamma",
		Description: "Read the gamma formula (min, max, gamma per channel) of a display.",
	}, s.handleGetGamma)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_gamma",
		Description: "Set per-channel gamma exponents on a display. Output spans a fixed 0.1 to 1.0 range; each exponent must be positive and the three may not all be equal.",
	}, s.handleSetGamma)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_transfer",
		Description: "Apply a contrast transfer table (selector 0-8) to a display. Selector 0 restores the identity ramp.",
	}, s.handleSetTransfer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_palette",
		Description: "Restore the default colour palette on displays with a writable palette.",
	}, s.handleSetPalette)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_brightness",
		Description: "Read the display brightness in [0, 1].",
	}, s.handleGetBrightness)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_brightness",
		Description: "Set the display brightness in [0, 1].",
	}, s.handleSetBrightness)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "brightness_status",
		Description: "Report the brightness and night-light service properties as a string map.",
	}, s.handleBrightnessStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_mirror",
		Description: "Make a display mirror another display in one reconfiguration transaction. Source 0 turns mirroring off.",
	}, s.handleSetMirror)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_true_tone",
		Description: "Toggle the adaptive colour (night light) service. Reports changed=false when the service is unavailable or unsupported.",
	}, s.handleSwitchTrueTone)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the on-screen top-level windows in stacking order, or one window by index.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "display_properties",
		Description: "Report the boolean properties of a display (builtin, main, mirrored, connected, ...).",
	}, s.handleProperties)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "vendor_number",
		Description: "Return the monitor vendor id read from EDID.",
	}, s.handleVendorNumber)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capabilities",
		Description: "Report which optional subsystems (legacy modes, brightness, true tone) have loaded.",
	}, s.handleCapabilities)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_start",
		Description: "Start capturing a display into an image file. Every delivered frame replaces the file. Returns a session id for capture_status and capture_stop. Set wait_frame to block until the first frame is written.",
	}, s.handleCaptureStart)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_status",
		Description: "Report state and frame counters of a capture session.",
	}, s.handleCaptureStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_stop",
		Description: "Stop a capture session. No frame is written after this returns.",
	}, s.handleCaptureStop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_list",
		Description: "List the capture sessions started by this server.",
	}, s.handleCaptureList)
}
