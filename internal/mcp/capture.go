package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/displayctl/internal/capture"
	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/system"
)

const maxWaitFrame = 60 * time.Second

func (s *Server) handleCaptureStart(ctx context.Context, _ *mcpsdk.CallToolRequest, args CaptureStartInput) (*mcpsdk.CallToolResult, CaptureStatus, error) {
	if strings.TrimSpace(args.Path) == "" {
		return nil, CaptureStatus{}, fmt.Errorf("path is required")
	}
	path, err := s.sys.CapturePath(args.Path)
	if err != nil {
		return nil, CaptureStatus{}, err
	}

	sess, err := s.sys.NewCaptureSession(system.CaptureRequest{
		Display:     platform.DisplayID(args.Display),
		PixelFormat: args.PixelFormat,
		Bounds:      platform.Rect{X: args.X, Y: args.Y, Width: args.Width, Height: args.Height},
		ShowCursor:  args.ShowCursor,
	})
	if err != nil {
		return nil, CaptureStatus{}, err
	}
	if err := sess.Start(ctx, path); err != nil {
		s.logger.Warn("capture start failed", "path", path, "error", err)
		return nil, CaptureStatus{}, err
	}
	s.track(sess)

	if args.WaitFrame > 0 {
		wait := min(time.Duration(args.WaitFrame)*time.Second, maxWaitFrame)
		wctx, cancel := context.WithTimeout(ctx, wait)
		err := sess.Wait(wctx)
		cancel()
		if err != nil {
			return nil, sessionStatus(sess), fmt.Errorf("capture %s started but no frame was written: %w", sess.ID(), err)
		}
	}
	return nil, sessionStatus(sess), nil
}

func (s *Server) handleCaptureStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args CaptureSessionInput) (*mcpsdk.CallToolResult, CaptureStatus, error) {
	sess, err := s.lookup(args.Session)
	if err != nil {
		return nil, CaptureStatus{}, err
	}
	return nil, sessionStatus(sess), nil
}

func (s *Server) handleCaptureStop(_ context.Context, _ *mcpsdk.CallToolRequest, args CaptureSessionInput) (*mcpsdk.CallToolResult, CaptureStatus, error) {
	sess, err := s.lookup(args.Session)
	if err != nil {
		return nil, CaptureStatus{}, err
	}
	if err := sess.Stop(); err != nil {
		return nil, sessionStatus(sess), err
	}
	s.prune()
	return nil, sessionStatus(sess), nil
}

func (s *Server) handleCaptureList(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, CaptureListOutput, error) {
	s.mu.Lock()
	tracked := make([]trackedSession, 0, len(s.sessions))
	for _, t := range s.sessions {
		tracked = append(tracked, t)
	}
	s.mu.Unlock()

	sort.Slice(tracked, func(i, j int) bool { return tracked[i].seq < tracked[j].seq })
	out := CaptureListOutput{Sessions: make([]CaptureStatus, 0, len(tracked))}
	for _, t := range tracked {
		out.Sessions = append(out.Sessions, sessionStatus(t.session))
	}
	return nil, out, nil
}

func (s *Server) track(sess *capture.Session) {
	s.mu.Lock()
	s.nextSeq++
	s.sessions[sess.ID()] = trackedSession{session: sess, seq: s.nextSeq}
	s.mu.Unlock()
	s.prune()
}

func (s *Server) lookup(id string) (*capture.Session, error) {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown capture session %q", id)
	}
	return t.session, nil
}

// prune forgets the oldest stopped sessions beyond the cap. Running sessions
// are never forgotten.
func (s *Server) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stopped []trackedSession
	for _, t := range s.sessions {
		if t.session.State() == capture.Stopped {
			stopped = append(stopped, t)
		}
	}
	if len(stopped) <= s.sessionCap {
		return
	}
	sort.Slice(stopped, func(i, j int) bool { return stopped[i].seq < stopped[j].seq })
	for _, t := range stopped[:len(stopped)-s.sessionCap] {
		delete(s.sessions, t.session.ID())
	}
}

func sessionStatus(sess *capture.Session) CaptureStatus {
	st := sess.Stats()
	out := CaptureStatus{
		Session:   sess.ID(),
		Display:   uint32(sess.Display()),
		State:     sess.State().String(),
		Path:      sess.Path(),
		Delivered: st.Delivered,
		Skipped:   st.Skipped,
		Dropped:   st.Dropped,
		Written:   st.Written,
		Failed:    st.Failed,
	}
	if !st.LastWrite.IsZero() {
		out.LastWrite = st.LastWrite.Format(time.RFC3339Nano)
	}
	if err := sess.LastError(); err != nil {
		out.LastError = err.Error()
	}
	return out
}
