package glance

import "math"

// D65 reference white in XYZ, 2° observer.
const (
	refWhiteX = 0.95047
	refWhiteY = 1.00000
	refWhiteZ = 1.08883
)

// RGBToLab converts an 8-bit sRGB triplet to CIE L*a*b* under D65.
// Pure black maps to L≈0 and pure white to L≈100.
func RGBToLab(r, g, b uint8) (float64, float64, float64) {
	rl := srgbToLinear(float64(r) / 255.0)
	gl := srgbToLinear(float64(g) / 255.0)
	bl := srgbToLinear(float64(b) / 255.0)

	// Linear RGB → XYZ, sRGB primaries, D65 white.
	x := 0.4124564*rl + 0.3575761*gl + 0.1804375*bl
	y := 0.2126729*rl + 0.7151522*gl + 0.0721750*bl
	z := 0.0193339*rl + 0.1191920*gl + 0.9503041*bl

	fx := labF(x / refWhiteX)
	fy := labF(y / refWhiteY)
	fz := labF(z / refWhiteZ)

	lum := 116.0*fy - 16.0
	aStar := 500.0 * (fx - fy)
	bStar := 200.0 * (fy - fz)
	return lum, aStar, bStar
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	const (
		epsilon = 216.0 / 24389.0
		kappa   = 24389.0 / 27.0
	)
	if t > epsilon {
		return math.Cbrt(t)
	}
	return (kappa*t + 16.0) / 116.0
}

// DeltaE2000 computes the CIEDE2000 color difference between two L*a*b*
// triplets. It is symmetric, non-negative, and zero only for identical
// inputs. kL = kC = kH = 1.
func DeltaE2000(l1, a1, b1, l2, a2, b2 float64) float64 {
	c1 := math.Hypot(a1, b1)
	c2 := math.Hypot(a2, b2)
	cBar := (c1 + c2) / 2.0

	// G-factor a* correction for low-chroma colors.
	g := 0.5 * (1.0 - math.Sqrt(pow7(cBar)/(pow7(cBar)+pow7(25.0))))
	a1p := (1.0 + g) * a1
	a2p := (1.0 + g) * a2
	c1p := math.Hypot(a1p, b1)
	c2p := math.Hypot(a2p, b2)
	h1p := hueAngleDeg(a1p, b1)
	h2p := hueAngleDeg(a2p, b2)

	dLp := l2 - l1
	dCp := c2p - c1p

	var dhp float64
	if c1p*c2p != 0 {
		dhp = h2p - h1p
		if dhp > 180.0 {
			dhp -= 360.0
		} else if dhp < -180.0 {
			dhp += 360.0
		}
	}
	dHp := 2.0 * math.Sqrt(c1p*c2p) * math.Sin(degToRad(dhp)/2.0)

	lBar := (l1 + l2) / 2.0
	cBarP := (c1p + c2p) / 2.0

	var hBarP float64
	switch {
	case c1p*c2p == 0:
		hBarP = h1p + h2p
	case math.Abs(h1p-h2p) <= 180.0:
		hBarP = (h1p + h2p) / 2.0
	case h1p+h2p < 360.0:
		hBarP = (h1p + h2p + 360.0) / 2.0
	default:
		hBarP = (h1p + h2p - 360.0) / 2.0
	}

	t := 1.0 -
		0.17*math.Cos(degToRad(hBarP-30.0)) +
		0.24*math.Cos(degToRad(2.0*hBarP)) +
		0.32*math.Cos(degToRad(3.0*hBarP+6.0)) -
		0.20*math.Cos(degToRad(4.0*hBarP-63.0))

	lTerm := (lBar - 50.0) * (lBar - 50.0)
	sL := 1.0 + 0.015*lTerm/math.Sqrt(20.0+lTerm)
	sC := 1.0 + 0.045*cBarP
	sH := 1.0 + 0.015*cBarP*t

	// Hue-rotation term, active near the blue region (h ≈ 275°).
	dTheta := 30.0 * math.Exp(-((hBarP-275.0)/25.0)*((hBarP-275.0)/25.0))
	rC := 2.0 * math.Sqrt(pow7(cBarP)/(pow7(cBarP)+pow7(25.0)))
	rT := -math.Sin(degToRad(2.0*dTheta)) * rC

	lRatio := dLp / sL
	cRatio := dCp / sC
	hRatio := dHp / sH
	return math.Sqrt(lRatio*lRatio + cRatio*cRatio + hRatio*hRatio + rT*cRatio*hRatio)
}

func pow7(v float64) float64 {
	v2 := v * v
	return v2 * v2 * v2 * v
}

// hueAngleDeg returns the hue angle in degrees within [0, 360).
func hueAngleDeg(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := math.Atan2(b, a) * 180.0 / math.Pi
	if h < 0 {
		h += 360.0
	}
	return h
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180.0
}
