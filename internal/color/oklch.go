package color

import "math"

// RGB is a gamma-encoded sRGB color with channels nominally in [0, 1].
// Out-of-range values are legal as intermediate results.
type RGB struct {
	R, G, B float64
}

// LinearRGB is an sRGB color in linear light.
type LinearRGB struct {
	R, G, B float64
}

// Oklab is a color in Oklab: L nominally in [0, 1], a and b unbounded.
type Oklab struct {
	L, A, B float64
}

// Oklch is the polar form of Oklab. H is in degrees, [0, 360).
type Oklch struct {
	L, C, H float64
}

// achromaticEpsilon is the threshold below which both opponent axes snap to zero.
const achromaticEpsilon = 1e-5

// Linear gamma-decodes c. Channels are clipped to [0, 1].
func (c RGB) Linear() LinearRGB {
	return LinearRGB{R: GammaDecode(c.R), G: GammaDecode(c.G), B: GammaDecode(c.B)}
}

// Encode gamma-encodes c. Channels are clipped to [0, 1].
func (c LinearRGB) Encode() RGB {
	return RGB{R: GammaEncode(c.R), G: GammaEncode(c.G), B: GammaEncode(c.B)}
}

// InGamut reports whether every channel lies in [0, 1] within tol.
func (c LinearRGB) InGamut(tol float64) bool {
	return c.R >= -tol && c.R <= 1+tol &&
		c.G >= -tol && c.G <= 1+tol &&
		c.B >= -tol && c.B <= 1+tol
}

// LinearRGBToOklab converts linear light to Oklab. Gray inputs come out with
// a and b exactly zero.
func LinearRGBToOklab(c LinearRGB) Oklab {
	lms := LinearRGBToLMS.Mul([3]float64{c.R, c.G, c.B})

	// Cube root (preserving sign)
	cbrt := [3]float64{math.Cbrt(lms[0]), math.Cbrt(lms[1]), math.Cbrt(lms[2])}

	lab := CbrtLMSToOklab.Mul(cbrt)
	if math.Abs(lab[1]) < achromaticEpsilon && math.Abs(lab[2]) < achromaticEpsilon {
		lab[1], lab[2] = 0, 0
	}
	return Oklab{L: lab[0], A: lab[1], B: lab[2]}
}

// OklabToLinearRGB converts Oklab to linear light without any clipping, so
// callers can observe out-of-gamut excursions.
func OklabToLinearRGB(c Oklab) LinearRGB {
	cbrt := OklabToCbrtLMS.Mul([3]float64{c.L, c.A, c.B})
	lms := [3]float64{cbrt[0] * cbrt[0] * cbrt[0], cbrt[1] * cbrt[1] * cbrt[1], cbrt[2] * cbrt[2] * cbrt[2]}
	rgb := LMSToLinearRGB.Mul(lms)
	return LinearRGB{R: rgb[0], G: rgb[1], B: rgb[2]}
}

// RGBToOklab converts gamma-encoded sRGB to Oklab.
func RGBToOklab(c RGB) Oklab {
	return LinearRGBToOklab(c.Linear())
}

// OklabToRGB converts Oklab to gamma-encoded sRGB, clipping to the sRGB cube.
func OklabToRGB(c Oklab) RGB {
	return OklabToLinearRGB(c).Encode()
}

// LCh returns the polar form of c.
func (c Oklab) LCh() Oklch {
	return Oklch{
		L: c.L,
		C: math.Sqrt(c.A*c.A + c.B*c.B),
		H: NormalizeHue(math.Atan2(c.B, c.A) * (180.0 / math.Pi)),
	}
}

// Lab returns the rectangular form of c.
func (c Oklch) Lab() Oklab {
	hRad := NormalizeHue(c.H) * (math.Pi / 180.0)
	return Oklab{L: c.L, A: c.C * math.Cos(hRad), B: c.C * math.Sin(hRad)}
}

// RGBToOklch converts gamma-encoded sRGB to Oklch.
// L is lightness [0, 1], chroma is colorfulness [0, ~0.37], hue is in degrees [0, 360).
func RGBToOklch(c RGB) Oklch {
	return RGBToOklab(c).LCh()
}

// OklchToRGB converts Oklch to gamma-encoded sRGB, clipping to the sRGB cube.
func OklchToRGB(c Oklch) RGB {
	return OklabToRGB(c.Lab())
}

// NormalizeHue maps an angle in degrees onto [0, 360).
func NormalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	// -tiny + 360 can round up to exactly 360.
	if h >= 360 {
		h = 0
	}
	return h
}

// RGBsToOklab converts a batch of sRGB colors to Oklab.
func RGBsToOklab(in []RGB) []Oklab {
	out := make([]Oklab, len(in))
	for i, c := range in {
		out[i] = RGBToOklab(c)
	}
	return out
}

// OklabsToRGB converts a batch of Oklab colors to sRGB.
func OklabsToRGB(in []Oklab) []RGB {
	out := make([]RGB, len(in))
	for i, c := range in {
		out[i] = OklabToRGB(c)
	}
	return out
}

// RGBsToOklch converts a batch of sRGB colors to Oklch.
func RGBsToOklch(in []RGB) []Oklch {
	out := make([]Oklch, len(in))
	for i, c := range in {
		out[i] = RGBToOklch(c)
	}
	return out
}

// OklchsToRGB converts a batch of Oklch colors to sRGB.
func OklchsToRGB(in []Oklch) []RGB {
	out := make([]RGB, len(in))
	for i, c := range in {
		out[i] = OklchToRGB(c)
	}
	return out
}
