package glance

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Render runs the full pipeline on encoded image bytes: decode, geometry
// normalization, enhancement, and palette dithering. The output is exactly
// targetW×targetH with every pixel one of the six panel colors.
//
// All failures are caller input problems and surface immediately; there is
// no fallback image and no retry.
func Render(data []byte, spec GeometrySpec, opts DitherOptions, targetW, targetH int) (*OutputBuffer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	orientation := 1
	if format == "jpeg" {
		orientation = jpegOrientation(data)
	}

	return renderDecoded(fromImage(img), spec, opts, orientation, targetW, targetH)
}

// RenderRaw runs the pipeline on an already-decoded buffer. No orientation
// metadata is available on this path, so RotationAuto behaves as Rotation0.
func RenderRaw(img *RawImage, spec GeometrySpec, opts DitherOptions, targetW, targetH int) (*OutputBuffer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return renderDecoded(img, spec, opts, 1, targetW, targetH)
}

func renderDecoded(img *RawImage, spec GeometrySpec, opts DitherOptions, orientation, targetW, targetH int) (*OutputBuffer, error) {
	prepared, err := preprocess(img, spec, orientation, targetW, targetH)
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}

	enhanced := enhance(prepared, opts)

	out, err := ditherImage(enhanced, Spectra6, opts.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("dither: %w", err)
	}
	return out, nil
}
