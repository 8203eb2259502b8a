// Package glance renders photographs for the 6-color Spectra e-paper panel.
//
// The pipeline is: decode → geometry (rotate, crop/zoom, contain fit) →
// enhance (contrast, saturation) → error-diffusion dither against the fixed
// Spectra 6 palette. The result is a palette-closed RGB buffer plus the
// half-byte transmit codes the panel firmware expects.
package glance

import (
	"image"
	"image/color"
	"image/draw"
)

// RawImage is an interleaved 8-bit pixel buffer. Channels is 3 (RGB) or 4
// (RGBA); 4-channel buffers are flattened against white before any other
// processing.
type RawImage struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte // len = Width*Height*Channels
}

// NewRawImage allocates a zeroed buffer of the given size.
func NewRawImage(w, h, channels int) *RawImage {
	return &RawImage{
		Width:    w,
		Height:   h,
		Channels: channels,
		Pix:      make([]byte, w*h*channels),
	}
}

func (img *RawImage) offset(x, y int) int {
	return (y*img.Width + x) * img.Channels
}

func (img *RawImage) validate() error {
	if img.Channels != 3 && img.Channels != 4 {
		return &UnsupportedChannelError{Channels: img.Channels}
	}
	return nil
}

// fromImage copies any image.Image into a 4-channel RawImage, premultiplied
// alpha undone by going through NRGBA.
func fromImage(src image.Image) *RawImage {
	bounds := src.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	out := &RawImage{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: 4,
		Pix:      nrgba.Pix,
	}
	return out
}

// toRGBA copies a 3-channel RawImage into an opaque image.RGBA.
func (img *RawImage) toRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			off := img.offset(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: img.Pix[off],
				G: img.Pix[off+1],
				B: img.Pix[off+2],
				A: 255,
			})
		}
	}
	return out
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}
