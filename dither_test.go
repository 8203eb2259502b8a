package glance

import (
	"bytes"
	"testing"
)

func paletteSet() map[[3]byte]bool {
	set := map[[3]byte]bool{}
	for _, c := range Spectra6.Colors() {
		set[[3]byte{c.RGB[0], c.RGB[1], c.RGB[2]}] = true
	}
	return set
}

// noiseImage produces a deterministic pseudo-random RGB buffer.
func noiseImage(w, h int) *RawImage {
	img := NewRawImage(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.offset(x, y)
			img.Pix[off] = byte((x * 17) ^ (y * 31))
			img.Pix[off+1] = byte((x * 43) + (y * 13))
			img.Pix[off+2] = byte((x * 7) ^ (y * 11))
		}
	}
	return img
}

func gradientImage(w, h int) *RawImage {
	img := NewRawImage(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte(x * 255 / (w - 1))
			off := img.offset(x, y)
			img.Pix[off] = v
			img.Pix[off+1] = v
			img.Pix[off+2] = v
		}
	}
	return img
}

func solidImage(w, h int, r, g, b byte) *RawImage {
	img := NewRawImage(w, h, 3)
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
	}
	return img
}

func TestDitherPaletteClosure(t *testing.T) {
	set := paletteSet()
	for _, algo := range []Algorithm{DitherNone, DitherFloydSteinberg, DitherAtkinson} {
		out, err := ditherImage(noiseImage(48, 32), Spectra6, algo)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		if len(out.Pix) != 48*32*3 {
			t.Fatalf("%s: output length %d, want %d", algo, len(out.Pix), 48*32*3)
		}
		for i := 0; i < len(out.Pix); i += 3 {
			triplet := [3]byte{out.Pix[i], out.Pix[i+1], out.Pix[i+2]}
			if !set[triplet] {
				t.Fatalf("%s: pixel %d = %v not in palette", algo, i/3, triplet)
			}
		}
	}
}

func TestDitherDeterminism(t *testing.T) {
	src := noiseImage(64, 64)
	first, err := ditherImage(src, Spectra6, DitherFloydSteinberg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, err := ditherImage(src, Spectra6, DitherFloydSteinberg)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first.Pix, again.Pix) {
			t.Fatal("identical input produced different output")
		}
	}
}

func TestDitherPureColorIdempotence(t *testing.T) {
	for _, c := range Spectra6.Colors() {
		for _, algo := range []Algorithm{DitherNone, DitherFloydSteinberg, DitherAtkinson} {
			out, err := ditherImage(solidImage(16, 16, c.RGB[0], c.RGB[1], c.RGB[2]), Spectra6, algo)
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < len(out.Pix); i += 3 {
				if out.Pix[i] != c.RGB[0] || out.Pix[i+1] != c.RGB[1] || out.Pix[i+2] != c.RGB[2] {
					t.Fatalf("solid %s under %s changed at pixel %d", c.Name, algo, i/3)
				}
			}
		}
	}
}

func TestDitherGradientDiffuses(t *testing.T) {
	out, err := ditherImage(gradientImage(256, 16), Spectra6, DitherFloydSteinberg)
	if err != nil {
		t.Fatal(err)
	}
	distinct := map[[3]byte]bool{}
	for i := 0; i < len(out.Pix); i += 3 {
		distinct[[3]byte{out.Pix[i], out.Pix[i+1], out.Pix[i+2]}] = true
	}
	if len(distinct) < 2 {
		t.Errorf("gradient dithered to %d distinct colors, expected diffusion to produce more", len(distinct))
	}
}

func TestDitherNoneThresholds(t *testing.T) {
	// A uniform dark gray sits below the black/white decision boundary; with
	// no error diffusion every pixel must make the same choice.
	out, err := ditherImage(solidImage(32, 32, 40, 40, 40), Spectra6, DitherNone)
	if err != nil {
		t.Fatal(err)
	}
	distinct := map[[3]byte]bool{}
	for i := 0; i < len(out.Pix); i += 3 {
		distinct[[3]byte{out.Pix[i], out.Pix[i+1], out.Pix[i+2]}] = true
	}
	if len(distinct) != 1 {
		t.Errorf("uniform block under None produced %d colors, want 1", len(distinct))
	}
	if out.Pix[0] != 0 || out.Pix[1] != 0 || out.Pix[2] != 0 {
		t.Errorf("dark gray mapped to (%d,%d,%d), want black", out.Pix[0], out.Pix[1], out.Pix[2])
	}
}

func TestFloydSteinbergAndAtkinsonDiffer(t *testing.T) {
	src := noiseImage(64, 64)
	fs, err := ditherImage(src, Spectra6, DitherFloydSteinberg)
	if err != nil {
		t.Fatal(err)
	}
	at, err := ditherImage(src, Spectra6, DitherAtkinson)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(fs.Pix, at.Pix) {
		t.Error("Floyd-Steinberg and Atkinson produced identical buffers")
	}
}

func TestDitherRejectsNonRGB(t *testing.T) {
	img := NewRawImage(4, 4, 4)
	if _, err := ditherImage(img, Spectra6, DitherNone); err == nil {
		t.Error("expected error for 4-channel input")
	}
}

func TestPackTransmitIndexes(t *testing.T) {
	out, err := ditherImage(solidImage(4, 1, 255, 0, 0), Spectra6, DitherNone)
	if err != nil {
		t.Fatal(err)
	}
	packed := out.PackTransmitIndexes()
	if len(packed) != 2 {
		t.Fatalf("packed length = %d, want 2", len(packed))
	}
	// Red transmits as 3; two pixels per byte, high nibble first.
	for i, b := range packed {
		if b != 0x33 {
			t.Errorf("packed[%d] = %#x, want 0x33", i, b)
		}
	}

	odd, err := ditherImage(solidImage(3, 1, 0, 0, 0), Spectra6, DitherNone)
	if err != nil {
		t.Fatal(err)
	}
	packedOdd := odd.PackTransmitIndexes()
	if len(packedOdd) != 2 {
		t.Fatalf("odd packed length = %d, want 2", len(packedOdd))
	}
	// Trailing pixel pads with white (1) in the low nibble.
	if packedOdd[1] != 0x01 {
		t.Errorf("odd tail byte = %#x, want 0x01", packedOdd[1])
	}
}

func TestTransmitIndexAt(t *testing.T) {
	out, err := ditherImage(solidImage(2, 2, 0, 0, 255), Spectra6, DitherNone)
	if err != nil {
		t.Fatal(err)
	}
	if idx := out.TransmitIndexAt(1, 1); idx != 5 {
		t.Errorf("blue transmit index = %d, want 5", idx)
	}
}
