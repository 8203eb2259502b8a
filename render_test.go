package glance

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func testPhoto(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestRenderEndToEnd(t *testing.T) {
	data := encodePNG(t, testPhoto(80, 60))

	out, err := Render(data, DefaultGeometry(), DefaultDitherOptions(), 120, 90)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Width != 120 || out.Height != 90 {
		t.Fatalf("output = %dx%d, want 120x90", out.Width, out.Height)
	}
	if len(out.Pix) != 120*90*3 {
		t.Fatalf("buffer length = %d, want %d", len(out.Pix), 120*90*3)
	}

	set := paletteSet()
	for i := 0; i < len(out.Pix); i += 3 {
		if !set[[3]byte{out.Pix[i], out.Pix[i+1], out.Pix[i+2]}] {
			t.Fatalf("pixel %d not palette-closed", i/3)
		}
	}

	again, err := Render(data, DefaultGeometry(), DefaultDitherOptions(), 120, 90)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Pix, again.Pix) {
		t.Error("Render is not deterministic")
	}
}

func TestRenderSizeInvariantAcrossAspects(t *testing.T) {
	for _, dims := range [][2]int{{10, 200}, {300, 30}, {64, 64}} {
		data := encodePNG(t, testPhoto(dims[0], dims[1]))
		out, err := Render(data, DefaultGeometry(), DefaultDitherOptions(), 96, 128)
		if err != nil {
			t.Fatalf("%v: %v", dims, err)
		}
		if len(out.Pix) != 96*128*3 {
			t.Errorf("%v: buffer length %d, want %d", dims, len(out.Pix), 96*128*3)
		}
	}
}

func TestRenderDecodeError(t *testing.T) {
	_, err := Render([]byte("definitely not an image"), DefaultGeometry(), DefaultDitherOptions(), 100, 100)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("got %v, want ErrDecode", err)
	}
}

func TestRenderInvalidSaturation(t *testing.T) {
	data := encodePNG(t, testPhoto(8, 8))
	opts := DefaultDitherOptions()
	opts.SaturationBoost = 0.5
	_, err := Render(data, DefaultGeometry(), opts, 100, 100)
	var geomErr *InvalidGeometryError
	if !errors.As(err, &geomErr) || geomErr.Field != "saturationBoost" {
		t.Errorf("got %v, want InvalidGeometryError on saturationBoost", err)
	}
}

func TestRenderInvalidTarget(t *testing.T) {
	data := encodePNG(t, testPhoto(8, 8))
	_, err := Render(data, DefaultGeometry(), DefaultDitherOptions(), 0, 100)
	var geomErr *InvalidGeometryError
	if !errors.As(err, &geomErr) {
		t.Errorf("got %v, want InvalidGeometryError", err)
	}
}

func TestRenderPadsWithWhitePalette(t *testing.T) {
	// A wide source in a square target leaves letterbox bands; they must be
	// the palette's white after dithering.
	data := encodePNG(t, testPhoto(100, 20))
	out, err := Render(data, DefaultGeometry(), DefaultDitherOptions(), 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	off := (2*100 + 50) * 3 // (50, 2), deep in the top band
	if out.Pix[off] != 255 || out.Pix[off+1] != 255 || out.Pix[off+2] != 255 {
		t.Errorf("padding = (%d,%d,%d), want white", out.Pix[off], out.Pix[off+1], out.Pix[off+2])
	}
}

func TestRenderRawAutoEqualsZeroRotation(t *testing.T) {
	src := noiseImage(40, 30)

	auto, err := RenderRaw(src, GeometrySpec{Rotation: RotationAuto, Zoom: 1}, DefaultDitherOptions(), 40, 30)
	if err != nil {
		t.Fatal(err)
	}
	fixed, err := RenderRaw(src, GeometrySpec{Rotation: Rotation0, Zoom: 1}, DefaultDitherOptions(), 40, 30)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(auto.Pix, fixed.Pix) {
		t.Error("RotationAuto without metadata should equal Rotation0")
	}
}
