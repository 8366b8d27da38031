package x11

import (
	"errors"
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/randr"
)

// ErrGammaRange is returned for formula coefficients the ramp cannot express.
var ErrGammaRange = errors.New("gamma coefficient out of range")

// MaxGamma bounds the exponent accepted by SetGammaFormula.
const MaxGamma = 10.0

// Channel is the formula form of one colour channel:
// out = Min + (Max-Min) * in^Gamma.
type Channel struct {
	Min   float64
	Max   float64
	Gamma float64
}

// Ramp is a CRTC gamma ramp.
type Ramp struct {
	Red   []uint16
	Green []uint16
	Blue  []uint16
}

// GammaRamp reads the gamma ramp of a CRTC.
func (c *Connection) GammaRamp(crtc randr.Crtc) (Ramp, error) {
	reply, err := randr.GetCrtcGamma(c.XUtil.Conn(), crtc).Reply()
	if err != nil {
		return Ramp{}, err
	}
	return Ramp{Red: reply.Red, Green: reply.Green, Blue: reply.Blue}, nil
}

// SetGammaRamp writes a gamma ramp. All three channels must have the CRTC's
// gamma size.
func (c *Connection) SetGammaRamp(crtc randr.Crtc, r Ramp) error {
	size, err := c.gammaSize(crtc)
	if err != nil {
		return err
	}
	if len(r.Red) != size || len(r.Green) != size || len(r.Blue) != size {
		return fmt.Errorf("ramp size %d/%d/%d, crtc wants %d: %w", len(r.Red), len(r.Green), len(r.Blue), size, ErrGammaRange)
	}
	return randr.SetCrtcGammaChecked(c.XUtil.Conn(), crtc, uint16(size), r.Red, r.Green, r.Blue).Check()
}

func (c *Connection) gammaSize(crtc randr.Crtc) (int, error) {
	reply, err := randr.GetCrtcGammaSize(c.XUtil.Conn(), crtc).Reply()
	if err != nil {
		return 0, err
	}
	if reply.Size == 0 {
		return 0, fmt.Errorf("crtc %d has no gamma ramp: %w", crtc, ErrGammaRange)
	}
	return int(reply.Size), nil
}

// GammaFormula estimates formula coefficients for each channel of a CRTC.
func (c *Connection) GammaFormula(crtc randr.Crtc) (red, green, blue Channel, err error) {
	ramp, err := c.GammaRamp(crtc)
	if err != nil {
		return Channel{}, Channel{}, Channel{}, err
	}
	return FitChannel(ramp.Red), FitChannel(ramp.Green), FitChannel(ramp.Blue), nil
}

// SetGammaFormula writes a ramp generated from the three channel formulas.
func (c *Connection) SetGammaFormula(crtc randr.Crtc, red, green, blue Channel) error {
	for _, ch := range []Channel{red, green, blue} {
		if err := ch.validate(); err != nil {
			return err
		}
	}
	size, err := c.gammaSize(crtc)
	if err != nil {
		return err
	}
	return c.SetGammaRamp(crtc, Ramp{
		Red:   red.Ramp(size),
		Green: green.Ramp(size),
		Blue:  blue.Ramp(size),
	})
}

// SetGammaTable writes 8-bit per-channel tables, resampled to the CRTC size.
func (c *Connection) SetGammaTable(crtc randr.Crtc, red, green, blue []uint8) error {
	size, err := c.gammaSize(crtc)
	if err != nil {
		return err
	}
	return c.SetGammaRamp(crtc, Ramp{
		Red:   resample(red, size),
		Green: resample(green, size),
		Blue:  resample(blue, size),
	})
}

func (ch Channel) validate() error {
	bad := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
	if bad(ch.Min) || bad(ch.Max) || bad(ch.Gamma) {
		return fmt.Errorf("non-finite coefficient: %w", ErrGammaRange)
	}
	if ch.Min < 0 || ch.Max > 1 || ch.Min >= ch.Max {
		return fmt.Errorf("bounds [%g,%g]: %w", ch.Min, ch.Max, ErrGammaRange)
	}
	if ch.Gamma <= 0 || ch.Gamma > MaxGamma {
		return fmt.Errorf("gamma %g: %w", ch.Gamma, ErrGammaRange)
	}
	return nil
}

// Ramp evaluates the formula at size evenly spaced points.
func (ch Channel) Ramp(size int) []uint16 {
	out := make([]uint16, size)
	if size == 1 {
		out[0] = uint16(math.Round(ch.Max * 65535))
		return out
	}
	for i := range out {
		x := float64(i) / float64(size-1)
		v := ch.Min + (ch.Max-ch.Min)*math.Pow(x, ch.Gamma)
		out[i] = uint16(math.Round(math.Max(0, math.Min(1, v)) * 65535))
	}
	return out
}

// FitChannel recovers formula coefficients from a ramp. The exponent is the
// average log-ratio over the interior samples.
func FitChannel(ramp []uint16) Channel {
	n := len(ramp)
	if n < 2 {
		return Channel{Min: 0, Max: 1, Gamma: 1}
	}
	lo := float64(ramp[0]) / 65535
	hi := float64(ramp[n-1]) / 65535
	if hi <= lo {
		return Channel{Min: lo, Max: hi, Gamma: 1}
	}

	var sum float64
	var count int
	for i := 1; i < n-1; i++ {
		x := float64(i) / float64(n-1)
		y := (float64(ramp[i])/65535 - lo) / (hi - lo)
		if y <= 0 || y >= 1 {
			continue
		}
		sum += math.Log(y) / math.Log(x)
		count++
	}
	g := 1.0
	if count > 0 {
		g = sum / float64(count)
	}
	return Channel{Min: lo, Max: hi, Gamma: g}
}

func resample(table []uint8, size int) []uint16 {
	out := make([]uint16, size)
	if len(table) == 0 {
		return out
	}
	for i := range out {
		j := 0
		if size > 1 {
			j = i * (len(table) - 1) / (size - 1)
		}
		out[i] = uint16(table[j]) * 257
	}
	return out
}
