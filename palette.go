package glance

import "github.com/lucasb-eyer/go-colorful"

// PaletteColor is one of the six colors the Spectra panel can display.
// TransmitIndex is the half-byte code the panel firmware expects; the codes
// are not contiguous (4 is reserved by the controller).
type PaletteColor struct {
	Name          string
	RGB           [3]uint8
	Lab           [3]float64
	TransmitIndex uint8
}

// Colorful returns the palette entry as a go-colorful color in [0,1] space.
func (c PaletteColor) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.RGB[0]) / 255.0,
		G: float64(c.RGB[1]) / 255.0,
		B: float64(c.RGB[2]) / 255.0,
	}
}

// Palette holds the fixed color set with Lab values precomputed at
// construction. It is immutable afterwards and safe to share across
// concurrent renders.
type Palette struct {
	colors []PaletteColor
}

// Spectra6 is the panel's palette. Declaration order is transmit-code order
// and doubles as the deterministic tie-break order in FindClosest.
var Spectra6 = newSpectra6()

func newSpectra6() *Palette {
	p := &Palette{
		colors: []PaletteColor{
			{Name: "black", RGB: [3]uint8{0, 0, 0}, TransmitIndex: 0},
			{Name: "white", RGB: [3]uint8{255, 255, 255}, TransmitIndex: 1},
			{Name: "yellow", RGB: [3]uint8{255, 255, 0}, TransmitIndex: 2},
			{Name: "red", RGB: [3]uint8{255, 0, 0}, TransmitIndex: 3},
			{Name: "blue", RGB: [3]uint8{0, 0, 255}, TransmitIndex: 5},
			{Name: "green", RGB: [3]uint8{0, 255, 0}, TransmitIndex: 6},
		},
	}
	for i := range p.colors {
		c := &p.colors[i]
		l, a, b := RGBToLab(c.RGB[0], c.RGB[1], c.RGB[2])
		c.Lab = [3]float64{l, a, b}
	}
	return p
}

// Colors returns the palette entries in declaration order.
func (p *Palette) Colors() []PaletteColor {
	return p.colors
}

// FindClosest maps an RGB pixel to its perceptually nearest palette entry
// using CIEDE2000 in Lab space. Ties keep the earliest entry.
func (p *Palette) FindClosest(r, g, b uint8) PaletteColor {
	l, aStar, bStar := RGBToLab(r, g, b)
	return p.findClosestLab(l, aStar, bStar)
}

func (p *Palette) findClosestLab(l, a, b float64) PaletteColor {
	best := p.colors[0]
	bestD := DeltaE2000(l, a, b, best.Lab[0], best.Lab[1], best.Lab[2])
	for _, c := range p.colors[1:] {
		d := DeltaE2000(l, a, b, c.Lab[0], c.Lab[1], c.Lab[2])
		if d < bestD {
			bestD = d
			best = c
		}
	}
	return best
}
