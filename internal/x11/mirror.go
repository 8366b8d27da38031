package x11

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

var (
	// ErrNoCommonMode is returned when a mirror target cannot show the
	// source's mode.
	ErrNoCommonMode = errors.New("no mode in common with mirror source")
	// ErrTransactionDone is returned by a transaction used after Complete or
	// Cancel.
	ErrTransactionDone = errors.New("configuration already finished")
)

type mirrorOp struct {
	display randr.Output
	source  randr.Output
}

// Transaction collects mirror changes and applies them under a server grab
// so other clients never observe a half-applied layout.
type Transaction struct {
	c    *Connection
	mu   sync.Mutex
	ops  []mirrorOp
	done bool
}

// Begin opens a configuration transaction.
func (c *Connection) Begin() (*Transaction, error) {
	if err := c.RequireRandR(); err != nil {
		return nil, err
	}
	return &Transaction{c: c}, nil
}

// Mirror queues display to show source. A zero source queues unmirroring.
func (t *Transaction) Mirror(display, source randr.Output) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTransactionDone
	}
	t.ops = append(t.ops, mirrorOp{display: display, source: source})
	return nil
}

// Complete applies the queued changes in order. The first failure stops the
// remaining changes.
func (t *Transaction) Complete() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTransactionDone
	}
	t.done = true
	if len(t.ops) == 0 {
		return nil
	}

	c := t.c
	c.configMu.Lock()
	defer c.configMu.Unlock()

	conn := c.XUtil.Conn()
	if err := xproto.GrabServerChecked(conn).Check(); err != nil {
		return err
	}
	defer xproto.UngrabServer(conn)

	for _, op := range t.ops {
		if err := c.applyMirrorLocked(op); err != nil {
			return err
		}
	}
	return nil
}

// Cancel discards the queued changes.
func (t *Transaction) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTransactionDone
	}
	t.done = true
	t.ops = nil
	return nil
}

func (c *Connection) applyMirrorLocked(op mirrorOp) error {
	target, err := c.Output(op.display)
	if err != nil {
		return err
	}
	if target.Crtc == 0 {
		return fmt.Errorf("output %s has no crtc: %w", target.Name, ErrConfigFailed)
	}
	if op.source == 0 {
		return c.unmirrorLocked(target)
	}

	source, err := c.Output(op.source)
	if err != nil {
		return err
	}
	mode, err := c.commonMode(target, source)
	if err != nil {
		return err
	}
	return c.setCrtcLocked(target.Crtc, []randr.Output{target.ID}, source.X, source.Y, mode, source.Rotation)
}

// commonMode picks the source's mode when the target supports it, otherwise
// a target mode of the same size.
func (c *Connection) commonMode(target, source Output) (randr.Mode, error) {
	for _, m := range target.Modes {
		if m == source.Mode {
			return m, nil
		}
	}
	modes, err := c.OutputModes(target)
	if err != nil {
		return 0, err
	}
	for _, m := range modes {
		if m.Width == source.Width && m.Height == source.Height {
			return m.ID, nil
		}
	}
	return 0, fmt.Errorf("%s cannot show %dx%d from %s: %w", target.Name, source.Width, source.Height, source.Name, ErrNoCommonMode)
}

// unmirrorLocked moves target to the right of every other lit output at its
// preferred mode.
func (c *Connection) unmirrorLocked(target Output) error {
	if len(target.Modes) == 0 {
		return fmt.Errorf("%s has no modes: %w", target.Name, ErrNoCommonMode)
	}
	active, err := c.ActiveOutputs()
	if err != nil {
		return err
	}
	right := 0
	for _, o := range active {
		if o.ID == target.ID {
			continue
		}
		right = max(right, o.X+o.Width)
	}
	return c.setCrtcLocked(target.Crtc, []randr.Output{target.ID}, right, 0, target.Modes[0], Rotate0)
}

// MirrorSource returns the output target shares its CRTC geometry with, or
// zero when it is not mirrored.
func (c *Connection) MirrorSource(target Output) (randr.Output, error) {
	if !target.Active() {
		return 0, nil
	}
	active, err := c.ActiveOutputs()
	if err != nil {
		return 0, err
	}
	for _, o := range active {
		if o.ID == target.ID {
			continue
		}
		if o.X == target.X && o.Y == target.Y && o.Width == target.Width && o.Height == target.Height {
			// The primary output is the source of a mirrored pair.
			if o.Primary || (!target.Primary && o.ID < target.ID) {
				return o.ID, nil
			}
		}
	}
	return 0, nil
}
