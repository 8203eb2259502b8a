package glance

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Rotation selects how the source raster is turned before cropping.
// RotationAuto follows the embedded EXIF orientation when the input carries
// one and falls back to no rotation otherwise. Explicit values rotate the
// raster clockwise.
type Rotation int

const (
	RotationAuto Rotation = iota
	Rotation0
	Rotation90
	Rotation180
	Rotation270
)

func (r Rotation) String() string {
	switch r {
	case RotationAuto:
		return "auto"
	case Rotation90:
		return "90"
	case Rotation180:
		return "180"
	case Rotation270:
		return "270"
	default:
		return "0"
	}
}

// ParseRotation converts a flag value to a Rotation.
func ParseRotation(s string) (Rotation, error) {
	switch s {
	case "auto":
		return RotationAuto, nil
	case "0":
		return Rotation0, nil
	case "90":
		return Rotation90, nil
	case "180":
		return Rotation180, nil
	case "270":
		return Rotation270, nil
	default:
		return Rotation0, fmt.Errorf("unknown rotation: %q", s)
	}
}

// GeometrySpec describes the user-requested framing. CropX and CropY are
// percentages of the pannable range opened up by Zoom; with Zoom == 1 the
// visible window is the whole image and crop has no effect.
type GeometrySpec struct {
	Rotation Rotation
	CropX    float64 // [0,100]
	CropY    float64 // [0,100]
	Zoom     float64 // >= 1
}

// DefaultGeometry keeps the image upright and uncropped.
func DefaultGeometry() GeometrySpec {
	return GeometrySpec{Rotation: RotationAuto, Zoom: 1.0}
}

func (g GeometrySpec) validate() error {
	if g.CropX < 0 || g.CropX > 100 {
		return &InvalidGeometryError{Field: "cropX", Value: g.CropX}
	}
	if g.CropY < 0 || g.CropY > 100 {
		return &InvalidGeometryError{Field: "cropY", Value: g.CropY}
	}
	if g.Zoom < 1.0 {
		return &InvalidGeometryError{Field: "zoom", Value: g.Zoom}
	}
	return nil
}

// preprocess normalizes a decoded image to an exact targetW×targetH RGB
// buffer: flatten alpha, rotate, extract the crop/zoom window, contain-fit
// with white padding. orientation is the EXIF tag (1..8) used when the spec
// asks for RotationAuto.
func preprocess(img *RawImage, spec GeometrySpec, orientation int, targetW, targetH int) (*RawImage, error) {
	if targetW <= 0 {
		return nil, &InvalidGeometryError{Field: "targetWidth", Value: float64(targetW)}
	}
	if targetH <= 0 {
		return nil, &InvalidGeometryError{Field: "targetHeight", Value: float64(targetH)}
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if err := img.validate(); err != nil {
		return nil, err
	}

	if img.Channels == 4 {
		img = flattenAlpha(img)
	}

	if spec.Rotation == RotationAuto {
		img = applyOrientation(img, orientation)
	} else {
		img = rotateQuarters(img, quarterTurns(spec.Rotation))
	}

	img = cropZoom(img, spec.CropX, spec.CropY, spec.Zoom)
	return containFit(img, targetW, targetH), nil
}

// flattenAlpha blends a 4-channel buffer against an opaque white background.
func flattenAlpha(img *RawImage) *RawImage {
	out := NewRawImage(img.Width, img.Height, 3)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			src := img.offset(x, y)
			dst := out.offset(x, y)
			a := float64(img.Pix[src+3]) / 255.0
			for c := 0; c < 3; c++ {
				v := a*float64(img.Pix[src+c]) + (1.0-a)*255.0
				out.Pix[dst+c] = clampByte(v)
			}
		}
	}
	return out
}

func quarterTurns(r Rotation) int {
	switch r {
	case Rotation90:
		return 1
	case Rotation180:
		return 2
	case Rotation270:
		return 3
	default:
		return 0
	}
}

// applyOrientation maps an EXIF orientation tag (1..8) to the flip/rotate
// sequence that brings the raster upright. Unknown tags leave the image
// untouched.
func applyOrientation(img *RawImage, orientation int) *RawImage {
	switch orientation {
	case 2:
		return flipHorizontal(img)
	case 3:
		return rotateQuarters(img, 2)
	case 4:
		return flipVertical(img)
	case 5:
		return rotateQuarters(flipVertical(img), 1)
	case 6:
		return rotateQuarters(img, 1)
	case 7:
		return rotateQuarters(flipHorizontal(img), 1)
	case 8:
		return rotateQuarters(img, 3)
	default:
		return img
	}
}

// rotateQuarters rotates clockwise by turns*90 degrees.
func rotateQuarters(img *RawImage, turns int) *RawImage {
	switch ((turns % 4) + 4) % 4 {
	case 1:
		return rotate90(img)
	case 2:
		return rotate180(img)
	case 3:
		return rotate270(img)
	default:
		return img
	}
}

func rotate90(img *RawImage) *RawImage {
	out := NewRawImage(img.Height, img.Width, img.Channels)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			src := img.offset(y, img.Height-1-x)
			dst := out.offset(x, y)
			copy(out.Pix[dst:dst+img.Channels], img.Pix[src:src+img.Channels])
		}
	}
	return out
}

func rotate180(img *RawImage) *RawImage {
	out := NewRawImage(img.Width, img.Height, img.Channels)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			src := img.offset(img.Width-1-x, img.Height-1-y)
			dst := out.offset(x, y)
			copy(out.Pix[dst:dst+img.Channels], img.Pix[src:src+img.Channels])
		}
	}
	return out
}

func rotate270(img *RawImage) *RawImage {
	out := NewRawImage(img.Height, img.Width, img.Channels)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			src := img.offset(img.Width-1-y, x)
			dst := out.offset(x, y)
			copy(out.Pix[dst:dst+img.Channels], img.Pix[src:src+img.Channels])
		}
	}
	return out
}

func flipHorizontal(img *RawImage) *RawImage {
	out := NewRawImage(img.Width, img.Height, img.Channels)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			src := img.offset(img.Width-1-x, y)
			dst := out.offset(x, y)
			copy(out.Pix[dst:dst+img.Channels], img.Pix[src:src+img.Channels])
		}
	}
	return out
}

func flipVertical(img *RawImage) *RawImage {
	out := NewRawImage(img.Width, img.Height, img.Channels)
	for y := 0; y < img.Height; y++ {
		src := img.offset(0, img.Height-1-y)
		dst := out.offset(0, y)
		copy(out.Pix[dst:dst+img.Width*img.Channels], img.Pix[src:src+img.Width*img.Channels])
	}
	return out
}

// cropZoom extracts the visible window. Zoom shrinks the window to
// round(dim/zoom) and the crop percentages pan it across the remaining
// range; zoom == 1 leaves no panning room, so the whole image passes
// through.
func cropZoom(img *RawImage, cropX, cropY, zoom float64) *RawImage {
	visibleW := int(math.Round(float64(img.Width) / zoom))
	visibleH := int(math.Round(float64(img.Height) / zoom))
	visibleW = max(1, min(visibleW, img.Width))
	visibleH = max(1, min(visibleH, img.Height))
	if visibleW == img.Width && visibleH == img.Height {
		return img
	}

	maxOffX := img.Width - visibleW
	maxOffY := img.Height - visibleH
	extractX := int(math.Round(cropX / 100.0 * float64(maxOffX)))
	extractY := int(math.Round(cropY / 100.0 * float64(maxOffY)))

	out := NewRawImage(visibleW, visibleH, img.Channels)
	rowLen := visibleW * img.Channels
	for y := 0; y < visibleH; y++ {
		src := img.offset(extractX, extractY+y)
		dst := out.offset(0, y)
		copy(out.Pix[dst:dst+rowLen], img.Pix[src:src+rowLen])
	}
	return out
}

// containFit scales the image to fit entirely inside targetW×targetH,
// preserving aspect ratio, and pads the rest with white. CatmullRom keeps
// edges crisp ahead of quantization.
func containFit(img *RawImage, targetW, targetH int) *RawImage {
	scale := min(
		float64(targetW)/float64(img.Width),
		float64(targetH)/float64(img.Height),
	)
	fitW := min(max(int(math.Round(float64(img.Width)*scale)), 1), targetW)
	fitH := min(max(int(math.Round(float64(img.Height)*scale)), 1), targetH)
	offX := (targetW - fitW) / 2
	offY := (targetH - fitH) / 2

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	for i := range dst.Pix {
		dst.Pix[i] = 255
	}
	src := img.toRGBA()
	xdraw.CatmullRom.Scale(dst, image.Rect(offX, offY, offX+fitW, offY+fitH), src, src.Bounds(), xdraw.Src, nil)

	out := NewRawImage(targetW, targetH, 3)
	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			srcOff := dst.PixOffset(x, y)
			dstOff := out.offset(x, y)
			out.Pix[dstOff] = dst.Pix[srcOff]
			out.Pix[dstOff+1] = dst.Pix[srcOff+1]
			out.Pix[dstOff+2] = dst.Pix[srcOff+2]
		}
	}
	return out
}
