package x11

import (
	"fmt"
	"image"
	"image/color"
)

// ConvertPixels re-samples an RGBA capture into the storage layout named by
// a stream pixel format tag:
//
//	BGR   8-bit packed RGB (returned as is)
//	l10r  10 bits per channel, widened to 16-bit storage
//	420f  4:2:0 YCbCr, full range
//	420v  4:2:0 YCbCr, levels quantized to video range
func ConvertPixels(src *image.RGBA, format string) (image.Image, error) {
	switch format {
	case "BGR":
		return src, nil
	case "l10r":
		return toTenBit(src), nil
	case "420f":
		return toYCbCr420(src, false), nil
	case "420v":
		return toYCbCr420(src, true), nil
	}
	return nil, fmt.Errorf("unknown pixel format %q", format)
}

func toTenBit(src *image.RGBA) *image.RGBA64 {
	b := src.Bounds()
	dst := image.NewRGBA64(b)
	widen := func(v uint8) uint16 {
		ten := uint16(v)<<2 | uint16(v)>>6
		return ten<<6 | ten>>4
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			dst.SetRGBA64(x, y, color.RGBA64{R: widen(c.R), G: widen(c.G), B: widen(c.B), A: 0xffff})
		}
	}
	return dst
}

// toYCbCr420 averages chroma over each 2x2 block. Video range samples are
// expanded back to full range after quantization so the image decodes with
// correct colours.
func toYCbCr420(src *image.RGBA, video bool) *image.YCbCr {
	b := src.Bounds()
	dst := image.NewYCbCr(b, image.YCbCrSubsampleRatio420)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			yy, _, _ := color.RGBToYCbCr(c.R, c.G, c.B)
			if video {
				yy = videoLuma(yy)
			}
			dst.Y[dst.YOffset(x, y)] = yy
		}
	}

	for cy := b.Min.Y; cy < b.Max.Y; cy += 2 {
		for cx := b.Min.X; cx < b.Max.X; cx += 2 {
			var sumCb, sumCr, n int
			for dy := 0; dy < 2 && cy+dy < b.Max.Y; dy++ {
				for dx := 0; dx < 2 && cx+dx < b.Max.X; dx++ {
					c := src.RGBAAt(cx+dx, cy+dy)
					_, cb, cr := color.RGBToYCbCr(c.R, c.G, c.B)
					sumCb += int(cb)
					sumCr += int(cr)
					n++
				}
			}
			cb, cr := uint8(sumCb/n), uint8(sumCr/n)
			if video {
				cb, cr = videoChroma(cb), videoChroma(cr)
			}
			off := dst.COffset(cx, cy)
			dst.Cb[off] = cb
			dst.Cr[off] = cr
		}
	}
	return dst
}

// videoLuma maps full range luma onto the 16..235 scale and back.
func videoLuma(v uint8) uint8 {
	q := 16 + (int(v)*219+127)/255
	return clamp8((q - 16) * 255 / 219)
}

// videoChroma maps full range chroma onto the 16..240 scale and back.
func videoChroma(v uint8) uint8 {
	q := 16 + (int(v)*224+127)/255
	return clamp8((q - 16) * 255 / 224)
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
