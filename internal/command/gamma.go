package command

import (
	"context"
	"math"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/status"
)

// Formula bounds applied to every channel by SetGammaCurve.
const (
	GammaMin = 0.1
	GammaMax = 1.0
)

// MaxContrast is the largest selector ContrastTable accepts.
const MaxContrast = 8

// ContrastTable builds the byte transfer table for selector. Selector 0 is
// the identity ramp; selector n scales channel values by n+2, n+3 and n+4
// for red, green and blue, wrapping at 256.
func ContrastTable(selector int) (*platform.TransferTable, error) {
	if selector < 0 || selector > MaxContrast {
		return nil, status.Errorf("setTransfer", status.IllegalArgument, "contrast selector %d out of range [0,%d]", selector, MaxContrast)
	}
	var t platform.TransferTable
	for i := 0; i < platform.TransferTableSize; i++ {
		if selector == 0 {
			t.Red[i], t.Green[i], t.Blue[i] = uint8(i), uint8(i), uint8(i)
			continue
		}
		t.Red[i] = uint8(i * (selector + 2))
		t.Green[i] = uint8(i * (selector + 3))
		t.Blue[i] = uint8(i * (selector + 4))
	}
	return &t, nil
}

// SetTransfer applies the contrast table for selector and waits for the
// change to settle.
func (e *Executor) SetTransfer(ctx context.Context, selector int) error {
	const op = "setTransfer"
	table, err := ContrastTable(selector)
	if err != nil {
		return err
	}
	if err := e.mutate(op, func() error {
		return e.p.SetTransferTable(e.h.ID(), table)
	}); err != nil {
		return err
	}
	return e.settle.Settle(ctx, GammaWrite)
}

// SetPalette restores the default palette on displays that support one.
func (e *Executor) SetPalette(ctx context.Context) error {
	const op = "setPalette"
	can, err := e.p.CanSetPalette(e.h.ID())
	if err != nil {
		return e.translate(op, err)
	}
	if !can {
		return status.Errorf(op, status.NoneAvailable, "display %d has no settable palette", e.h.ID())
	}
	return e.mutate(op, func() error {
		return e.p.SetPalette(e.h.ID(), nil)
	})
}

// GammaCurve returns the current formula coefficients of the display.
func (e *Executor) GammaCurve(ctx context.Context) (platform.GammaFormula, error) {
	f, err := e.p.GammaFormula(e.h.ID())
	if err != nil {
		return platform.GammaFormula{}, e.translate("getGammaCurve", err)
	}
	return f, nil
}

// SetGammaCurve applies per-channel gamma exponents. Equal exponents on all
// three channels are rejected as a no-op request.
func (e *Executor) SetGammaCurve(ctx context.Context, red, green, blue float64) error {
	const op = "setGammaCurve"
	if sameGamma(red, green) && sameGamma(green, blue) {
		return status.Errorf(op, status.IllegalArgument, "all channels have gamma %g", red)
	}
	for _, g := range []float64{red, green, blue} {
		if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
			return status.Errorf(op, status.RangeCheck, "gamma %g out of range", g)
		}
	}
	f := platform.GammaFormula{
		Red:   platform.GammaChannel{Min: GammaMin, Max: GammaMax, Gamma: red},
		Green: platform.GammaChannel{Min: GammaMin, Max: GammaMax, Gamma: green},
		Blue:  platform.GammaChannel{Min: GammaMin, Max: GammaMax, Gamma: blue},
	}
	if err := e.mutate(op, func() error {
		return e.p.SetGammaFormula(e.h.ID(), f)
	}); err != nil {
		return err
	}
	return e.settle.Settle(ctx, GammaWrite)
}

// sameGamma reports whether a and b are the same request value. NaN matches
// NaN so a uniform request is rejected before any range check.
func sameGamma(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
