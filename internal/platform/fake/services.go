package fake

import (
	"fmt"
	"sync"

	"github.com/1broseidon/displayctl/internal/platform"
)

// Brightness is an in-memory platform.BrightnessService.
type Brightness struct {
	mu     sync.Mutex
	name   string
	levels map[platform.DisplayID]float64
	Err    error
	Sets   int
}

// NewBrightness returns a service reporting the given variant name.
func NewBrightness(name string) *Brightness {
	return &Brightness{name: name, levels: make(map[platform.DisplayID]float64)}
}

func (b *Brightness) Name() string { return b.name }

func (b *Brightness) Brightness(id platform.DisplayID) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return 0, b.Err
	}
	return b.levels[id], nil
}

func (b *Brightness) SetBrightness(id platform.DisplayID, value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.Sets++
	b.levels[id] = value
	return nil
}

func (b *Brightness) Status() (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[string]string{"variant": b.name}
	for id, v := range b.levels {
		out[fmt.Sprintf("display.%d", id)] = fmt.Sprintf("%.2f", v)
	}
	return out, nil
}

// TrueTone is an in-memory platform.TrueToneClient.
type TrueTone struct {
	mu        sync.Mutex
	available bool
	supported bool
	enabled   bool
	Writes    int
}

// NewTrueTone returns a client with the given capability flags.
func NewTrueTone(available, supported, enabled bool) *TrueTone {
	return &TrueTone{available: available, supported: supported, enabled: enabled}
}

func (t *TrueTone) Available() bool { return t.available }
func (t *TrueTone) Supported() bool { return t.supported }

func (t *TrueTone) Enabled() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled, nil
}

func (t *TrueTone) SetEnabled(enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Writes++
	t.enabled = enabled
	return nil
}

// WriteCount returns how many times SetEnabled was called.
func (t *TrueTone) WriteCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Writes
}

var (
	_ platform.BrightnessService = (*Brightness)(nil)
	_ platform.TrueToneClient    = (*TrueTone)(nil)
)
