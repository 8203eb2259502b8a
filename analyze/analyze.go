// Package analyze estimates how faithfully a photograph will survive the
// six-color Spectra panel, before committing to a render. It reduces the
// image to its dominant colors and reports each one's perceptual distance
// to the nearest palette entry.
package analyze

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	glance "github.com/CHaerem/Glance-sub004"
)

// ColorMatch pairs a source color with its nearest panel color.
type ColorMatch struct {
	Color   colorful.Color
	Weight  float64
	Nearest glance.PaletteColor
	DeltaE  float64
}

// Report summarizes panel fit for one image.
type Report struct {
	// Dominant colors by pixel share, strongest first.
	Dominant []ColorMatch
	// Cluster centers of a pixel subsample, largest cluster first.
	Clusters []ColorMatch
	// Weighted ΔE2000 statistics over the dominant colors. High values mean
	// the image leans on tones the panel cannot reproduce.
	MeanDeltaE float64
	MaxDeltaE  float64
	// SuggestedSaturation is a render-time boost for washed-out images,
	// 1.0 when none is needed.
	SuggestedSaturation float64
}

const (
	dominantCandidates = 8
	clusterCount       = 6
	maxSamples         = 12000
)

// Fit analyzes an image against the Spectra 6 palette.
func Fit(img image.Image) (*Report, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("analyze: empty image")
	}

	report := &Report{SuggestedSaturation: 1.0}

	for _, c := range dominantcolor.FindWeight(img, dominantCandidates) {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		report.Dominant = append(report.Dominant, matchColor(col.Clamped(), w))
	}
	if len(report.Dominant) == 0 {
		return nil, fmt.Errorf("analyze: no dominant colors found")
	}

	cl, err := clusterColors(img)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	report.Clusters = cl

	deltas := make([]float64, len(report.Dominant))
	weights := make([]float64, len(report.Dominant))
	for i, m := range report.Dominant {
		deltas[i] = m.DeltaE
		weights[i] = m.Weight
		if m.DeltaE > report.MaxDeltaE {
			report.MaxDeltaE = m.DeltaE
		}
	}
	report.MeanDeltaE = stat.Mean(deltas, weights)

	report.SuggestedSaturation = suggestSaturation(report.Clusters)
	return report, nil
}

// clusterColors runs kmeans over a subsample of the image, the same way the
// palette extractor subsamples: step chosen so at most maxSamples pixels are
// observed.
func clusterColors(img image.Image) ([]ColorMatch, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil, fmt.Errorf("no opaque pixels to sample")
	}

	k := min(clusterCount, len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	total := float64(len(dataset))
	out := make([]ColorMatch, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		out = append(out, matchColor(col, float64(len(c.Observations))/total))
	}
	return out, nil
}

func matchColor(col colorful.Color, weight float64) ColorMatch {
	r, g, b := col.RGB255()
	nearest := glance.Spectra6.FindClosest(r, g, b)
	l, aStar, bStar := glance.RGBToLab(r, g, b)
	return ColorMatch{
		Color:   col,
		Weight:  weight,
		Nearest: nearest,
		DeltaE:  glance.DeltaE2000(l, aStar, bStar, nearest.Lab[0], nearest.Lab[1], nearest.Lab[2]),
	}
}

// suggestSaturation recommends a boost when the image's cluster centers are
// mostly desaturated; muted photos map badly onto the saturated panel
// primaries without it.
func suggestSaturation(matches []ColorMatch) float64 {
	if len(matches) == 0 {
		return 1.0
	}
	sum, weight := 0.0, 0.0
	for _, m := range matches {
		_, s, l := m.Color.Hsl()
		// Near-black and near-white clusters carry no chroma signal.
		if l < 0.08 || l > 0.92 {
			continue
		}
		sum += s * m.Weight
		weight += m.Weight
	}
	if weight == 0 {
		return 1.0
	}
	switch mean := sum / weight; {
	case mean < 0.20:
		return 1.5
	case mean < 0.35:
		return 1.25
	default:
		return 1.0
	}
}
