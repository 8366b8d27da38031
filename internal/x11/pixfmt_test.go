package x11

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestConvertPixels(t *testing.T) {
	src := solid(5, 3, color.RGBA{R: 200, G: 40, B: 90, A: 255})

	out, err := ConvertPixels(src, "BGR")
	require.NoError(t, err)
	assert.Same(t, src, out)

	out, err = ConvertPixels(src, "l10r")
	require.NoError(t, err)
	wide, ok := out.(*image.RGBA64)
	require.True(t, ok)
	r, _, _, a := wide.At(4, 2).RGBA()
	assert.InDelta(t, 200, int(r>>8), 1)
	assert.EqualValues(t, 0xffff, a)

	for _, pf := range []string{"420f", "420v"} {
		out, err = ConvertPixels(src, pf)
		require.NoError(t, err, pf)
		ycc, ok := out.(*image.YCbCr)
		require.True(t, ok, pf)
		assert.Equal(t, image.YCbCrSubsampleRatio420, ycc.SubsampleRatio)
		assert.Equal(t, src.Bounds(), ycc.Bounds())
		r, g, b, _ := ycc.At(4, 2).RGBA()
		assert.InDelta(t, 200, int(r>>8), 4, pf)
		assert.InDelta(t, 40, int(g>>8), 4, pf)
		assert.InDelta(t, 90, int(b>>8), 4, pf)
	}

	_, err = ConvertPixels(src, "RGBA")
	assert.Error(t, err)
}

func TestVideoRangeStaysInBounds(t *testing.T) {
	for v := 0; v < 256; v++ {
		assert.InDelta(t, v, int(videoLuma(uint8(v))), 2)
		assert.InDelta(t, v, int(videoChroma(uint8(v))), 2)
	}
}

func TestOverlayCursor(t *testing.T) {
	img := solid(10, 10, color.RGBA{A: 255})
	cursor := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range cursor.Pix {
		cursor.Pix[i] = 0xff
	}
	// Capture of root rect (100,100)-(110,110); cursor at root (104,105).
	overlayCursor(img, image.Rect(100, 100, 110, 110), &CursorImage{X: 104, Y: 105, Image: cursor})

	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(4, 5))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(5, 6))
	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(3, 5))
}

func TestStream_DeliversAndStops(t *testing.T) {
	frames := []*image.RGBA{
		solid(2, 2, color.RGBA{R: 1, A: 255}),
		solid(2, 2, color.RGBA{R: 1, A: 255}),
		solid(2, 2, color.RGBA{R: 9, A: 255}),
	}
	events := make(chan StreamEvent, 4096)
	s := (*Connection)(nil).NewStream(StreamConfig{
		Rect:        image.Rect(0, 0, 2, 2),
		Interval:    time.Millisecond,
		PixelFormat: "BGR",
	}, func(ev StreamEvent, _ image.Image) {
		select {
		case events <- ev:
		default:
		}
	})

	n := 0
	s.capture = func(image.Rectangle) (*image.RGBA, error) {
		f := frames[min(n, len(frames)-1)]
		n++
		return f, nil
	}

	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	assert.Equal(t, EventFrame, <-events)
	assert.Equal(t, EventUnchanged, <-events)
	assert.Equal(t, EventFrame, <-events)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	var last StreamEvent
	for len(events) > 0 {
		last = <-events
	}
	assert.Equal(t, EventStopped, last)
}

func TestStream_StopBeforeStartNeverPolls(t *testing.T) {
	var grabs int
	s := (*Connection)(nil).NewStream(StreamConfig{
		Rect:        image.Rect(0, 0, 2, 2),
		Interval:    time.Millisecond,
		PixelFormat: "BGR",
	}, func(StreamEvent, image.Image) {})
	s.capture = func(image.Rectangle) (*image.RGBA, error) {
		grabs++
		return solid(2, 2, color.RGBA{A: 255}), nil
	}

	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Start(), errStreamStopped)
	assert.Zero(t, grabs)
}
