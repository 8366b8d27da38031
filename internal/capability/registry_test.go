package capability

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/displayctl/internal/status"
)

type brightnessStub struct{ level float64 }

func TestResolve_LoadsOnceAndCaches(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry()
	r.Register(Brightness, func(context.Context) (any, error) {
		calls.Add(1)
		return &brightnessStub{level: 0.5}, nil
	})

	first := r.Resolve(context.Background(), Brightness)
	second := r.Resolve(context.Background(), Brightness)

	require.Same(t, first, second)
	assert.Equal(t, Loaded, first.State)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, r.LoadCount(Brightness))
}

func TestResolve_ConcurrentSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := NewRegistry()
	r.Register(Brightness, func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return &brightnessStub{}, nil
	})

	const workers = 32
	mods := make([]*Module, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mods[i] = r.Resolve(context.Background(), Brightness)
		}(i)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for i := 1; i < workers; i++ {
		assert.Same(t, mods[0], mods[i])
	}
}

func TestResolve_FailedIsTerminal(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry()
	r.Register(LegacyMode, func(context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("extension missing")
	})

	m := r.Resolve(context.Background(), LegacyMode)
	require.Equal(t, Failed, m.State)
	require.ErrorContains(t, m.Err, "extension missing")

	again := r.Resolve(context.Background(), LegacyMode)
	assert.Same(t, m, again)
	assert.EqualValues(t, 1, calls.Load())

	_, err := As[*brightnessStub](m)
	assert.Equal(t, status.NoneAvailable, status.CodeOf(err))
}

func TestResolve_Unregistered(t *testing.T) {
	r := NewRegistry()
	m := r.Resolve(context.Background(), TrueTone)
	assert.Equal(t, Failed, m.State)
	assert.ErrorIs(t, m.Err, ErrNotRegistered)

	// A loader registered after the failed resolve does not revive the module.
	r.Register(TrueTone, func(context.Context) (any, error) { return 1, nil })
	assert.Same(t, m, r.Resolve(context.Background(), TrueTone))
}

func TestResolve_LoadTimeout(t *testing.T) {
	r := NewRegistry(WithLoadTimeout(20 * time.Millisecond))
	r.Register(Brightness, func(ctx context.Context) (any, error) {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return &brightnessStub{}, nil
	})

	m := r.Resolve(context.Background(), Brightness)
	assert.Equal(t, Failed, m.State)
	assert.ErrorIs(t, m.Err, ErrLoadTimeout)
}

func TestResolve_CallerDeadlineDoesNotFailLoad(t *testing.T) {
	r := NewRegistry(WithLoadTimeout(time.Second))
	r.Register(Brightness, func(ctx context.Context) (any, error) {
		select {
		case <-time.After(10 * time.Millisecond):
			return &brightnessStub{level: 0.7}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Millisecond)
	defer cancel()
	first := r.Resolve(ctx, Brightness)
	assert.Equal(t, Loaded, first.State)
	require.NoError(t, first.Err)

	later := r.Resolve(context.Background(), Brightness)
	assert.Same(t, first, later)
	assert.Equal(t, 1, r.LoadCount(Brightness))

	b, err := Get[*brightnessStub](context.Background(), r, Brightness)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, b.level, 1e-9)
}

func TestResolve_CancelledCallerStillLoads(t *testing.T) {
	r := NewRegistry()
	r.Register(TrueTone, func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &brightnessStub{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := r.Resolve(ctx, TrueTone)
	assert.Equal(t, Loaded, m.State)
}

func TestAs_TypedAccess(t *testing.T) {
	r := NewRegistry()
	r.Register(Brightness, func(context.Context) (any, error) {
		return &brightnessStub{level: 0.7}, nil
	})

	b, err := Get[*brightnessStub](context.Background(), r, Brightness)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, b.level, 1e-9)

	_, err = Get[string](context.Background(), r, Brightness)
	assert.Equal(t, status.NoneAvailable, status.CodeOf(err))

	_, err = As[string](nil)
	assert.Equal(t, status.NoneAvailable, status.CodeOf(err))
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register(TrueTone, func(context.Context) (any, error) { return 1, nil })
	r.Register(Brightness, func(context.Context) (any, error) { return nil, errors.New("no") })
	r.Resolve(context.Background(), Brightness)

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, Brightness, snap[0].Name)
	assert.Equal(t, Failed, snap[0].State)
	assert.Equal(t, TrueTone, snap[1].Name)
	assert.Equal(t, Unloaded, snap[1].State)
}
