package glance

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// Percentile clip for the contrast stretch. Using quantiles instead of the
// strict min/max keeps a handful of outlier pixels from neutralizing the
// whole stretch.
const (
	contrastLowQuantile  = 0.01
	contrastHighQuantile = 0.99
)

// enhance applies the optional contrast stretch and saturation boost, in
// that order, returning a buffer of the same shape.
func enhance(img *RawImage, opts DitherOptions) *RawImage {
	if opts.EnhanceContrast {
		img = stretchContrast(img)
	}
	if opts.SaturationBoost > 1.0 {
		img = boostSaturation(img, opts.SaturationBoost)
	}
	return img
}

// stretchContrast linearly remaps all channels so the clipped luma range
// expands toward [0,255]. Quantization to six colors crushes shadow and
// highlight detail; widening the range first preserves more of it.
func stretchContrast(img *RawImage) *RawImage {
	n := img.Width * img.Height
	if n == 0 {
		return img
	}
	lumas := make([]float64, 0, n)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			off := img.offset(x, y)
			lumas = append(lumas, luma(img.Pix[off], img.Pix[off+1], img.Pix[off+2]))
		}
	}
	sort.Float64s(lumas)
	lo := stat.Quantile(contrastLowQuantile, stat.Empirical, lumas, nil)
	hi := stat.Quantile(contrastHighQuantile, stat.Empirical, lumas, nil)
	if hi-lo < 1.0 {
		return img
	}

	scale := 255.0 / (hi - lo)
	out := NewRawImage(img.Width, img.Height, img.Channels)
	copy(out.Pix, img.Pix)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			off := img.offset(x, y)
			for c := 0; c < 3; c++ {
				out.Pix[off+c] = clampByte((float64(img.Pix[off+c]) - lo) * scale)
			}
		}
	}
	return out
}

// JFIF luma weights.
func luma(r, g, b byte) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// boostSaturation multiplies each pixel's HSL saturation by factor,
// clamping back into gamut. factor == 1 is a no-op upstream.
func boostSaturation(img *RawImage, factor float64) *RawImage {
	out := NewRawImage(img.Width, img.Height, img.Channels)
	copy(out.Pix, img.Pix)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			off := img.offset(x, y)
			c := colorful.Color{
				R: float64(img.Pix[off]) / 255.0,
				G: float64(img.Pix[off+1]) / 255.0,
				B: float64(img.Pix[off+2]) / 255.0,
			}
			h, s, l := c.Hsl()
			s = math.Min(1.0, s*factor)
			boosted := colorful.Hsl(h, s, l).Clamped()
			out.Pix[off] = clampByte(boosted.R * 255.0)
			out.Pix[off+1] = clampByte(boosted.G * 255.0)
			out.Pix[off+2] = clampByte(boosted.B * 255.0)
		}
	}
	return out
}
