package color

import "math"

// Matrix3 is a row-major 3x3 matrix applied to column vectors.
type Matrix3 [3][3]float64

// Mul returns m·v.
func (m Matrix3) Mul(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// The four Oklab matrices from https://bottosson.github.io/posts/oklab/.
// Never written after initialization.
var (
	// LinearRGBToLMS maps linear sRGB to cone responses.
	LinearRGBToLMS = Matrix3{
		{0.4122214708, 0.5363325363, 0.0514459929},
		{0.2119034982, 0.6806995451, 0.1073969566},
		{0.0883024619, 0.2817188376, 0.6299787005},
	}

	// CbrtLMSToOklab maps cube-rooted cone responses to Oklab.
	CbrtLMSToOklab = Matrix3{
		{+0.2104542553, +0.7936177850, -0.0040720468},
		{+1.9779984951, -2.4285922050, +0.4505937099},
		{+0.0259040371, +0.7827717662, -0.8086757660},
	}

	// OklabToCbrtLMS is the inverse of CbrtLMSToOklab.
	OklabToCbrtLMS = Matrix3{
		{+1.0, +0.3963377774, +0.2158037573},
		{+1.0, -0.1055613458, -0.0638541728},
		{+1.0, -0.0894841775, -1.2914855480},
	}

	// LMSToLinearRGB is the inverse of LinearRGBToLMS.
	LMSToLinearRGB = Matrix3{
		{+4.0767416621, -3.3077115913, +0.2309699292},
		{-1.2684380046, +2.6097574011, -0.3413193965},
		{-0.0041960863, -0.7034186147, +1.7076147010},
	}
)

// GammaDecode converts a gamma-encoded sRGB channel to linear light.
// Input is clipped to [0, 1] first.
func GammaDecode(v float64) float64 {
	v = clamp01(v)
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// GammaEncode converts a linear channel back to gamma-encoded sRGB.
// Input is clipped to [0, 1] first.
func GammaEncode(v float64) float64 {
	v = clamp01(v)
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
