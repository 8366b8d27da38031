package command

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/displayctl/internal/display"
	"github.com/1broseidon/displayctl/internal/platform"
	"github.com/1broseidon/displayctl/internal/platform/fake"
)

// overlapPlatform records how many display writes are in flight at once.
type overlapPlatform struct {
	*fake.Platform
	active  atomic.Int32
	peak    atomic.Int32
	entered atomic.Int32
}

func (p *overlapPlatform) enter() func() {
	n := p.active.Add(1)
	p.entered.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(200 * time.Microsecond)
	return func() { p.active.Add(-1) }
}

func (p *overlapPlatform) SetGammaFormula(id platform.DisplayID, f platform.GammaFormula) error {
	defer p.enter()()
	return p.Platform.SetGammaFormula(id, f)
}

func (p *overlapPlatform) MoveCursor(id platform.DisplayID, x, y int) error {
	defer p.enter()()
	return p.Platform.MoveCursor(id, x, y)
}

func (p *overlapPlatform) HideCursor(id platform.DisplayID) error {
	defer p.enter()()
	return p.Platform.HideCursor(id)
}

func TestMutations_SerializedPerHandle(t *testing.T) {
	base := newFixture(t, true)
	p := &overlapPlatform{Platform: base.p}
	h, err := display.New(p, 1)
	require.NoError(t, err)

	// Two executors on one handle share its lock.
	execs := []*Executor{
		New(h, base.reg, WithSettleDelay(NoSettle{})),
		New(h, base.reg, WithSettleDelay(NoSettle{})),
	}

	const workers = 16
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := execs[i%len(execs)]
			switch i % 3 {
			case 0:
				assert.NoError(t, e.SetGammaCurve(ctx, 1.0, 1.1+float64(i)/100, 1.3))
			case 1:
				assert.NoError(t, e.MoveCursorTo(ctx, i, i))
			default:
				assert.NoError(t, e.HideCursor(ctx))
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, workers, p.entered.Load())
	assert.EqualValues(t, 1, p.peak.Load(), "display writes overlapped")
}
