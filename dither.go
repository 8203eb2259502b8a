package glance

import (
	"fmt"
	"image"
	"image/color"
)

// Algorithm selects the error-diffusion kernel.
type Algorithm int

const (
	DitherNone Algorithm = iota
	DitherFloydSteinberg
	DitherAtkinson
)

func (a Algorithm) String() string {
	switch a {
	case DitherFloydSteinberg:
		return "floyd-steinberg"
	case DitherAtkinson:
		return "atkinson"
	default:
		return "none"
	}
}

// ParseAlgorithm converts a flag value to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "none":
		return DitherNone, nil
	case "floyd-steinberg", "fs":
		return DitherFloydSteinberg, nil
	case "atkinson":
		return DitherAtkinson, nil
	default:
		return DitherNone, fmt.Errorf("unknown dither algorithm: %q", s)
	}
}

// DitherOptions tunes the quantization stage.
type DitherOptions struct {
	Algorithm       Algorithm
	SaturationBoost float64 // >= 1, 1 = no-op
	EnhanceContrast bool
}

// DefaultDitherOptions matches the server defaults: Floyd-Steinberg with
// contrast stretch and no extra saturation.
func DefaultDitherOptions() DitherOptions {
	return DitherOptions{
		Algorithm:       DitherFloydSteinberg,
		SaturationBoost: 1.0,
		EnhanceContrast: true,
	}
}

func (o DitherOptions) validate() error {
	if o.SaturationBoost < 1.0 {
		return &InvalidGeometryError{Field: "saturationBoost", Value: o.SaturationBoost}
	}
	return nil
}

type kernelTap struct {
	dx, dy int
	weight float64
}

// Floyd-Steinberg spreads the full error across four neighbors.
var floydSteinbergKernel = []kernelTap{
	{dx: 1, dy: 0, weight: 7.0 / 16.0},
	{dx: -1, dy: 1, weight: 3.0 / 16.0},
	{dx: 0, dy: 1, weight: 5.0 / 16.0},
	{dx: 1, dy: 1, weight: 1.0 / 16.0},
}

// Atkinson spreads only 6/8 of the error; the remainder is discarded, which
// trades some tonal accuracy for a cleaner pattern.
var atkinsonKernel = []kernelTap{
	{dx: 1, dy: 0, weight: 1.0 / 8.0},
	{dx: 2, dy: 0, weight: 1.0 / 8.0},
	{dx: -1, dy: 1, weight: 1.0 / 8.0},
	{dx: 0, dy: 1, weight: 1.0 / 8.0},
	{dx: 1, dy: 1, weight: 1.0 / 8.0},
	{dx: 0, dy: 2, weight: 1.0 / 8.0},
}

func (a Algorithm) kernel() []kernelTap {
	switch a {
	case DitherFloydSteinberg:
		return floydSteinbergKernel
	case DitherAtkinson:
		return atkinsonKernel
	default:
		return nil
	}
}

// OutputBuffer is the pipeline's sole artifact: a palette-closed RGB buffer
// plus the per-pixel transmit codes. Immutable once produced.
type OutputBuffer struct {
	Width  int
	Height int
	Pix    []byte // RGB, len = Width*Height*3, every triplet ∈ Spectra6
	codes  []uint8
}

// Image copies the buffer into an opaque image.RGBA for preview or storage.
func (b *OutputBuffer) Image() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			off := (y*b.Width + x) * 3
			out.SetRGBA(x, y, color.RGBA{
				R: b.Pix[off],
				G: b.Pix[off+1],
				B: b.Pix[off+2],
				A: 255,
			})
		}
	}
	return out
}

// TransmitIndexAt returns the panel code for the pixel at (x, y).
func (b *OutputBuffer) TransmitIndexAt(x, y int) uint8 {
	return b.codes[y*b.Width+x]
}

// PackTransmitIndexes packs the transmit codes two pixels per byte, high
// nibble first, matching the panel's half-byte frame buffer. An odd trailing
// pixel is padded with white.
func (b *OutputBuffer) PackTransmitIndexes() []byte {
	n := b.Width * b.Height
	packed := make([]byte, (n+1)/2)
	for i := 0; i < n; i += 2 {
		hi := b.codes[i] << 4
		lo := uint8(1) // white
		if i+1 < n {
			lo = b.codes[i+1]
		}
		packed[i/2] = hi | lo&0x0F
	}
	return packed
}

// ditherImage quantizes a 3-channel buffer against the palette. The working
// state is a float64 copy of the image owned by this call; diffusion targets
// are clamped to [0,255] immediately and taps falling outside the raster are
// dropped. The scan is raster order, so output is byte-identical across runs.
func ditherImage(img *RawImage, pal *Palette, algo Algorithm) (*OutputBuffer, error) {
	if img.Channels != 3 {
		return nil, &UnsupportedChannelError{Channels: img.Channels}
	}

	w, h := img.Width, img.Height
	work := make([]float64, w*h*3)
	for i, v := range img.Pix {
		work[i] = float64(v)
	}

	out := &OutputBuffer{
		Width:  w,
		Height: h,
		Pix:    make([]byte, w*h*3),
		codes:  make([]uint8, w*h),
	}
	taps := algo.kernel()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 3
			r := clampByte(work[off])
			g := clampByte(work[off+1])
			b := clampByte(work[off+2])

			selected := pal.FindClosest(r, g, b)
			out.Pix[off] = selected.RGB[0]
			out.Pix[off+1] = selected.RGB[1]
			out.Pix[off+2] = selected.RGB[2]
			out.codes[y*w+x] = selected.TransmitIndex

			if taps == nil {
				continue
			}
			errR := work[off] - float64(selected.RGB[0])
			errG := work[off+1] - float64(selected.RGB[1])
			errB := work[off+2] - float64(selected.RGB[2])
			for _, tap := range taps {
				nx, ny := x+tap.dx, y+tap.dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				noff := (ny*w + nx) * 3
				work[noff] = clampFloat(work[noff] + errR*tap.weight)
				work[noff+1] = clampFloat(work[noff+1] + errG*tap.weight)
				work[noff+2] = clampFloat(work[noff+2] + errB*tap.weight)
			}
		}
	}
	return out, nil
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
