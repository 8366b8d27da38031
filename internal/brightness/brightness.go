// Package brightness provides the system brightness service. Two variants
// exist: the GNOME settings daemon power plugin on the session bus, and
// direct RandR backlight properties. Probe picks whichever answers.
package brightness

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/sessionbus"
)

// gsd-power object coordinates.
const (
	PowerName  = "org.gnome.SettingsDaemon.Power"
	PowerPath  = dbus.ObjectPath("/org/gnome/SettingsDaemon/Power")
	PowerIface = "org.gnome.SettingsDaemon.Power.Screen"
)

// Variant names reported by Name.
const (
	VariantGSD       = "gsd-power"
	VariantBacklight = "randr-backlight"
)

// ErrUnavailable is returned by Probe when no backend answers.
var ErrUnavailable = errors.New("no brightness backend available")

// rawNoneAvailable is reported when the panel has no controllable backlight.
const rawNoneAvailable int32 = 1011

// GSD controls the internal panel through gsd-power. It ignores the display
// id because the daemon only drives the built-in backlight.
type GSD struct {
	bus sessionbus.Bus
}

var _ platform.BrightnessService = (*GSD)(nil)

// NewGSD returns a gsd-power client on bus.
func NewGSD(bus sessionbus.Bus) *GSD {
	return &GSD{bus: bus}
}

func (g *GSD) Name() string { return VariantGSD }

func (g *GSD) percent(op string) (int32, error) {
	v, err := g.bus.Get(PowerName, PowerPath, PowerIface, "Brightness")
	if err != nil {
		return 0, err
	}
	n, ok := sessionbus.Int32(v)
	if !ok {
		return 0, fmt.Errorf("brightness has type %s", v.Signature())
	}
	// The daemon reports -1 when the panel has no backlight.
	if n < 0 {
		return 0, &platform.StatusError{Op: op, Raw: rawNoneAvailable}
	}
	return n, nil
}

func (g *GSD) Brightness(platform.DisplayID) (float64, error) {
	n, err := g.percent("Brightness")
	if err != nil {
		return 0, err
	}
	return float64(n) / 100, nil
}

func (g *GSD) SetBrightness(_ platform.DisplayID, value float64) error {
	if _, err := g.percent("SetBrightness"); err != nil {
		return err
	}
	return g.bus.Set(PowerName, PowerPath, PowerIface, "Brightness", int32(value*100+0.5))
}

func (g *GSD) Status() (map[string]string, error) {
	props, err := g.bus.GetAll(PowerName, PowerPath, PowerIface)
	if err != nil {
		return nil, err
	}
	out := map[string]string{"variant": VariantGSD}
	for name, v := range props {
		out["power."+strings.ToLower(name)] = fmt.Sprint(v.Value())
	}
	return out, nil
}

// Backlight drives per-output RandR backlight properties.
type Backlight struct {
	ctl      platform.BacklightControl
	displays func() ([]platform.DisplayID, error)
}

var _ platform.BrightnessService = (*Backlight)(nil)

// NewBacklight returns a backend over ctl. displays lists the ids reported
// by Status.
func NewBacklight(ctl platform.BacklightControl, displays func() ([]platform.DisplayID, error)) *Backlight {
	return &Backlight{ctl: ctl, displays: displays}
}

func (b *Backlight) Name() string { return VariantBacklight }

func (b *Backlight) Brightness(id platform.DisplayID) (float64, error) {
	return b.ctl.Backlight(id)
}

func (b *Backlight) SetBrightness(id platform.DisplayID, value float64) error {
	return b.ctl.SetBacklight(id, value)
}

func (b *Backlight) Status() (map[string]string, error) {
	out := map[string]string{"variant": VariantBacklight}
	if b.displays == nil {
		return out, nil
	}
	ids, err := b.displays()
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		key := "display." + strconv.FormatUint(uint64(id), 10)
		if v, err := b.ctl.Backlight(id); err == nil {
			out[key] = strconv.FormatFloat(v, 'f', 2, 64)
		} else {
			out[key] = "none"
		}
	}
	return out, nil
}

// Probe returns the gsd-power backend when the daemon owns its name and
// reports a backlight, else the RandR backend when the main display has a
// backlight property. Either source may be nil.
func Probe(bus sessionbus.Bus, sys platform.System, logger *slog.Logger) (platform.BrightnessService, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if bus != nil {
		owned, err := bus.HasOwner(PowerName)
		switch {
		case err != nil:
			logger.Debug("gsd-power unavailable", "error", err)
		case owned:
			g := NewGSD(bus)
			_, err := g.Brightness(0)
			if err == nil {
				return g, nil
			}
			logger.Debug("gsd-power has no backlight", "error", err)
		}
	}
	if sys != nil {
		main, err := sys.MainDisplay()
		if err == nil {
			if _, err = sys.Backlight(main); err == nil {
				return NewBacklight(sys, sys.ActiveDisplays), nil
			}
		}
		logger.Debug("randr backlight unavailable", "error", err)
	}
	return nil, ErrUnavailable
}
